// Package premium читает premium-статус пользователя как внешний факт.
// Ядро не продаёт и не продлевает premium, оно только сообщает статус
// и лениво гасит просроченный флаг при первом чтении.
package premium

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// Repository определяет методы хранилища для premium-статуса.
type Repository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	ClearPremium(ctx context.Context, uid string) error
}

// Service реализует чтение premium-статуса.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Status — ответ о premium-статусе пользователя.
type Status struct {
	IsPremium     bool       `json:"is_premium"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining"`
}

// Status возвращает premium-статус пользователя. Просроченный флаг
// сбрасывается в хранилище при первом чтении после истечения.
func (s *Service) Status(ctx context.Context, userUID string) (*Status, error) {
	user, err := s.repo.GetUserByUID(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "user not found")
		}
		return nil, err
	}

	now := time.Now()
	if user.IsPremium && !user.PremiumActive(now) {
		if err := s.repo.ClearPremium(ctx, userUID); err != nil {
			s.log.Error("failed to clear expired premium", slog.String("user_uid", userUID), sl.Err(err))
		} else {
			s.log.Info("premium expired and cleared", slog.String("user_uid", userUID))
		}
		return &Status{IsPremium: false}, nil
	}
	if !user.IsPremium {
		return &Status{IsPremium: false}, nil
	}

	status := &Status{IsPremium: true, ExpiresAt: user.PremiumExpiresAt}
	if user.PremiumExpiresAt != nil {
		status.DaysRemaining = int(math.Ceil(user.PremiumExpiresAt.Sub(now).Hours() / 24))
	}
	return status, nil
}
