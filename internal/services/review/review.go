// Package review реализует отзывы арендаторов о поставщиках. Отзыв
// привязывается к подписке: оценить можно только поставщика, у которого
// арендатор действительно питался, и только один раз на подписку.
package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// Repository определяет методы хранилища для работы с отзывами.
type Repository interface {
	GetSubscriptionByID(ctx context.Context, id int) (*models.Subscription, error)
	GetProviderByID(ctx context.Context, id int) (*models.Provider, error)
	CreateReview(ctx context.Context, rev models.Review) (int, error)
	ListReviewsByProvider(ctx context.Context, providerID, limit, offset int) ([]*models.Review, error)
	GetProviderRating(ctx context.Context, providerID int) (models.ProviderRating, error)
}

// Service реализует бизнес-логику отзывов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ProviderReviews — страница отзывов поставщика вместе с его агрегированным
// рейтингом.
type ProviderReviews struct {
	Rating  models.ProviderRating `json:"rating"`
	Reviews []*models.Review      `json:"reviews"`
}

// Create сохраняет отзыв арендатора о поставщике по его подписке.
// Подписка в статусе pending оценке не подлежит: опыта питания ещё не было.
func (s *Service) Create(ctx context.Context, id models.Identity, req models.DummyReview) (*models.Review, error) {
	if id.Role != models.RoleTenant {
		return nil, errs.New(errs.ErrNotAuthorized, "only tenants can leave reviews")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, errs.New(errs.ErrValidation, "rating must be between 1 and 5")
	}

	sub, err := s.repo.GetSubscriptionByID(ctx, req.SubscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "subscription not found")
		}
		return nil, err
	}
	if sub.TenantUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "not a party of this subscription")
	}
	if sub.Status == models.SubscriptionPending {
		return nil, errs.New(errs.ErrInvalidState, "subscription has not started yet")
	}

	rev := models.Review{
		SubscriptionID: sub.ID,
		TenantID:       sub.TenantID,
		ProviderID:     sub.ProviderID,
		TenantUserUID:  sub.TenantUserUID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}

	newID, err := s.repo.CreateReview(ctx, rev)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, errs.New(errs.ErrInvalidState, "review already submitted for this subscription")
		}
		return nil, err
	}
	rev.ID = newID

	s.log.Info("review created",
		slog.Int("id", newID),
		slog.Int("provider_id", rev.ProviderID),
		slog.Int("rating", rev.Rating))

	return &rev, nil
}

// ListByProvider возвращает отзывы о поставщике и его рейтинг. Доступно без
// авторизации: рейтинг — часть публичной карточки поставщика.
func (s *Service) ListByProvider(ctx context.Context, providerID, limit, offset int) (*ProviderReviews, error) {
	if _, err := s.repo.GetProviderByID(ctx, providerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "provider not found")
		}
		return nil, err
	}

	rating, err := s.repo.GetProviderRating(ctx, providerID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListReviewsByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ProviderReviews{Rating: rating, Reviews: reviews}, nil
}
