// Package notification реализует чтение ленты уведомлений пользователя.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

type Repository interface {
	ListNotifications(ctx context.Context, userUID string, limit, offset int, unreadOnly bool) ([]*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userUID string) (int, error)
	MarkNotificationRead(ctx context.Context, id int, userUID string) (int64, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Feed — страница уведомлений вместе со счётчиком непрочитанных.
type Feed struct {
	Items       []*models.Notification `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

// List возвращает страницу уведомлений пользователя, новые первыми.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int, unreadOnly bool) (*Feed, error) {
	const op = "services.notification.List"

	items, err := s.repo.ListNotifications(ctx, userUID, limit, offset, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	unread, err := s.repo.CountUnreadNotifications(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return &Feed{Items: items, UnreadCount: unread}, nil
}

// MarkRead отмечает уведомление прочитанным. Чужое или несуществующее
// уведомление неотличимы для вызывающего: в обоих случаях not found.
func (s *Service) MarkRead(ctx context.Context, userUID string, id int) error {
	const op = "services.notification.MarkRead"

	rowsAffected, err := s.repo.MarkNotificationRead(ctx, id, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return errs.New(errs.ErrNotFound, "notification not found")
	}
	return nil
}
