// Package notifier сохраняет уведомления и публикует их в очередь доставки.
package notifier

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// Repository определяет методы хранилища, нужные для уведомлений.
type Repository interface {
	// CreateNotification сохраняет уведомление и возвращает его ID.
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
	// GetUserByUID возвращает пользователя по uid.
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// Service реализует асинхронную доставку уведомлений: запись в таблицу
// плюс публикация в RabbitMQ. Любая ошибка логируется и гасится —
// доставка уведомлений никогда не ломает основную операцию.
type Service struct {
	repo Repository
	ch   *amqp.Channel
	log  *slog.Logger
}

// New создает новый экземпляр Service. Канал ch может быть nil —
// тогда публикация в очередь пропускается и остаётся только запись в таблицу.
func New(repo Repository, ch *amqp.Channel, log *slog.Logger) *Service {
	return &Service{repo: repo, ch: ch, log: log}
}

// Notify записывает уведомление пользователю и публикует сообщение
// для доставки по почте.
func (s *Service) Notify(ctx context.Context, userUID, eventType, title, message string, payload map[string]any) {
	_, err := s.repo.CreateNotification(ctx, models.Notification{
		UserUID: userUID,
		Type:    eventType,
		Title:   title,
		Message: message,
		Payload: payload,
	})
	if err != nil {
		s.log.Error("failed to save notification",
			slog.String("user_uid", userUID), slog.String("type", eventType), sl.Err(err))
	}

	if s.ch == nil {
		return
	}

	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		s.log.Error("failed to resolve notification recipient",
			slog.String("user_uid", userUID), sl.Err(err))
		return
	}

	msg := models.NotificationMessage{
		UserUID: userUID,
		Email:   user.Email,
		Type:    eventType,
		Title:   title,
		Message: message,
	}
	if err := rabbitmq.PublishMessage(s.ch, rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyUser, msg); err != nil {
		s.log.Error("failed to publish notification",
			slog.String("user_uid", userUID), slog.String("type", eventType), sl.Err(err))
	}
}
