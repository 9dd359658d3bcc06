// Package subscription реализует жизненный цикл подписки на питание:
// создание после принятого знакомства, расчёт цены и сроков, смену статусов
// и приостановку. Создание подписки занимает слот поставщика, отмена —
// освобождает его.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// Repository определяет методы хранилища для работы с подписками.
type Repository interface {
	GetTenantByUserUID(ctx context.Context, userUID string) (*models.Tenant, error)
	GetProviderByID(ctx context.Context, id int) (*models.Provider, error)
	FindRequest(ctx context.Context, tenantID, providerID int, status string) (*models.ConnectionRequest, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	CountSubscriptionsCreatedOn(ctx context.Context, day time.Time) (int, error)
	GetSubscriptionByID(ctx context.Context, id int) (*models.Subscription, error)
	ListSubscriptionsByTenant(ctx context.Context, tenantUserUID, statusFilter string) ([]*models.Subscription, error)
	ListSubscriptionsByProvider(ctx context.Context, providerUserUID, statusFilter string) ([]*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int64, error)
	CancelSubscription(ctx context.Context, id, providerID int) error
	AppendPause(ctx context.Context, id int, entry models.PauseEntry) error
}

// Cache описывает методы для инвалидации кешированных записей поставщиков.
type Cache interface {
	Invalidate(key string) error
}

// Service реализует бизнес-логику подписок.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// dateLayout — формат дат во входных DTO.
const dateLayout = "02-01-2006"

// createAttempts — сколько раз повторять вставку при коллизии номера подписки.
const createAttempts = 3

// endDate возвращает дату окончания плана: день, неделя или календарный месяц.
func endDate(plan string, start time.Time) time.Time {
	switch plan {
	case models.PlanDaily:
		return start.AddDate(0, 0, 1)
	case models.PlanWeekly:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// Create создает подписку арендатора у поставщика. Предусловия: подтверждённый
// KYC обеих сторон и принятая заявка на знакомство. Слот поставщика
// резервируется атомарно вместе со вставкой; при исчерпании вместимости
// операция откатывается целиком.
func (s *Service) Create(ctx context.Context, id models.Identity, req models.DummySubscription) (*models.Subscription, error) {
	if id.Role != models.RoleTenant {
		return nil, errs.New(errs.ErrNotAuthorized, "only tenants can create subscriptions")
	}

	tenant, err := s.repo.GetTenantByUserUID(ctx, id.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrPreconditionFailed, "tenant profile is not set up")
		}
		return nil, err
	}

	provider, err := s.repo.GetProviderByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "provider not found")
		}
		return nil, err
	}

	if tenant.KycStatus != models.KycVerified || provider.KycStatus != models.KycVerified {
		return nil, errs.New(errs.ErrPreconditionFailed, "kyc verification required for both parties")
	}

	if _, err := s.repo.FindRequest(ctx, tenant.ID, provider.ID, models.RequestAccepted); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrPreconditionFailed, "no accepted connection with this provider")
		}
		return nil, err
	}

	if req.Meals.Count() == 0 {
		return nil, errs.New(errs.ErrValidation, "at least one meal must be selected")
	}
	dailyPrice := req.PricePerMeal.DailyTotal(req.Meals)
	if dailyPrice <= 0 {
		return nil, errs.New(errs.ErrValidation, "selected meals must have a positive price")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, errs.New(errs.ErrValidation, "invalid start date, expected DD-MM-YYYY")
	}

	end := endDate(req.Plan, startDate)
	days := int(math.Ceil(end.Sub(startDate).Hours() / 24))

	now := time.Now()

	sub := models.Subscription{
		TenantID:            tenant.ID,
		ProviderID:          provider.ID,
		TenantUserUID:       tenant.UserUID,
		ProviderUserUID:     provider.UserUID,
		Plan:                req.Plan,
		Meals:               req.Meals,
		StartDate:           startDate,
		EndDate:             end,
		PricePerMeal:        req.PricePerMeal,
		TotalMealsPerDay:    req.Meals.Count(),
		DailyPrice:          dailyPrice,
		TotalPrice:          dailyPrice * days,
		Status:              models.SubscriptionPending,
		PaymentMode:         req.PaymentMode,
		SpecialInstructions: req.SpecialInstructions,
		DeliveryTime:        req.DeliveryTime,
	}

	// Номер собирается из дневного счётчика, поэтому одновременные создания
	// могут выбрать одно значение. Коллизия ловится уникальным индексом,
	// счётчик перечитывается и вставка повторяется.
	var newID int
	for attempt := 0; attempt < createAttempts; attempt++ {
		count, err := s.repo.CountSubscriptionsCreatedOn(ctx, now)
		if err != nil {
			return nil, err
		}
		sub.Number = fmt.Sprintf("SUB-%s-%04d", now.Format("20060102"), count+1)

		newID, err = s.repo.CreateSubscription(ctx, sub)
		if err != nil {
			if errors.Is(err, repository.ErrCapacityExceeded) {
				return nil, errs.New(errs.ErrPreconditionFailed, "provider has no free slots")
			}
			if errors.Is(err, repository.ErrDuplicateSubscriptionNumber) && attempt < createAttempts-1 {
				s.log.Warn("subscription number collision, retrying",
					slog.String("number", sub.Number))
				continue
			}
			return nil, err
		}
		break
	}
	sub.ID = newID
	sub.CreatedAt = now

	s.invalidateProvider(provider.ID)
	s.log.Info("subscription created",
		slog.Int("id", newID),
		slog.String("number", sub.Number),
		slog.Int("provider_id", provider.ID))

	return &sub, nil
}

// GetByID возвращает подписку её стороне или администратору.
func (s *Service) GetByID(ctx context.Context, id models.Identity, subID int) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "subscription not found")
		}
		return nil, err
	}
	if id.Role != models.RoleAdmin &&
		sub.TenantUserUID != id.UserUID && sub.ProviderUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "not a party of this subscription")
	}
	return sub, nil
}

// ListMine возвращает подписки стороны с необязательным фильтром по статусу.
func (s *Service) ListMine(ctx context.Context, id models.Identity, statusFilter string) ([]*models.Subscription, error) {
	switch statusFilter {
	case "", models.SubscriptionPending, models.SubscriptionActive,
		models.SubscriptionPaused, models.SubscriptionCompleted, models.SubscriptionCancelled:
	default:
		return nil, errs.New(errs.ErrValidation, "unknown status filter")
	}
	switch id.Role {
	case models.RoleTenant:
		return s.repo.ListSubscriptionsByTenant(ctx, id.UserUID, statusFilter)
	case models.RoleProvider:
		return s.repo.ListSubscriptionsByProvider(ctx, id.UserUID, statusFilter)
	default:
		return nil, errs.New(errs.ErrNotAuthorized, "role has no subscriptions")
	}
}

// UpdateStatus переводит подписку в новый статус. Терминальные статусы
// (cancelled, completed) дальнейших переходов не допускают. Завершение и
// активация выполняются только явным запросом стороны, автоматических
// переходов по датам нет. Приостановка через этот маршрут не пишет интервал
// в журнал — для этого есть Pause. Отмена освобождает слот поставщика.
func (s *Service) UpdateStatus(ctx context.Context, id models.Identity, subID int, req models.DummyStatusUpdate) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "subscription not found")
		}
		return nil, err
	}
	if id.Role != models.RoleAdmin &&
		sub.TenantUserUID != id.UserUID && sub.ProviderUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "not a party of this subscription")
	}
	if sub.Terminal() {
		return nil, errs.New(errs.ErrInvalidState, "subscription is already "+sub.Status)
	}

	switch req.Status {
	case models.SubscriptionActive:
		if sub.Status != models.SubscriptionPending && sub.Status != models.SubscriptionPaused {
			return nil, errs.New(errs.ErrInvalidState, "cannot activate a subscription that is "+sub.Status)
		}
	case models.SubscriptionPaused:
		if sub.Status != models.SubscriptionActive {
			return nil, errs.New(errs.ErrInvalidState, "only an active subscription can be paused")
		}
	case models.SubscriptionCompleted:
		if sub.Status != models.SubscriptionActive {
			return nil, errs.New(errs.ErrInvalidState, "only an active subscription can be completed")
		}
	case models.SubscriptionCancelled:
		if err := s.repo.CancelSubscription(ctx, subID, sub.ProviderID); err != nil {
			return nil, err
		}
		sub.Status = models.SubscriptionCancelled
		s.invalidateProvider(sub.ProviderID)
		s.log.Info("subscription cancelled", slog.Int("id", subID))
		return sub, nil
	default:
		return nil, errs.New(errs.ErrValidation, "unknown target status")
	}

	rowsAffected, err := s.repo.UpdateSubscriptionStatus(ctx, subID, req.Status)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, errs.New(errs.ErrNotFound, "subscription not found")
	}
	sub.Status = req.Status

	s.log.Info("subscription status updated",
		slog.Int("id", subID), slog.String("status", req.Status))
	return sub, nil
}

// Pause приостанавливает активную подписку на интервал дат и дописывает
// запись в журнал приостановок.
func (s *Service) Pause(ctx context.Context, id models.Identity, subID int, req models.DummyPause) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "subscription not found")
		}
		return nil, err
	}
	if id.Role != models.RoleAdmin && sub.TenantUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "only the tenant can pause the subscription")
	}
	if sub.Status != models.SubscriptionActive {
		return nil, errs.New(errs.ErrInvalidState, "only an active subscription can be paused")
	}

	pausedFrom, err := time.Parse(dateLayout, req.PausedFrom)
	if err != nil {
		return nil, errs.New(errs.ErrValidation, "invalid paused_from date, expected DD-MM-YYYY")
	}
	pausedTo, err := time.Parse(dateLayout, req.PausedTo)
	if err != nil {
		return nil, errs.New(errs.ErrValidation, "invalid paused_to date, expected DD-MM-YYYY")
	}
	if !pausedFrom.Before(pausedTo) {
		return nil, errs.New(errs.ErrValidation, "paused_from must be earlier than paused_to")
	}

	entry := models.PauseEntry{PausedFrom: pausedFrom, PausedTo: pausedTo, Reason: req.Reason}
	if err := s.repo.AppendPause(ctx, subID, entry); err != nil {
		return nil, err
	}
	sub.Status = models.SubscriptionPaused
	sub.PauseHistory = append(sub.PauseHistory, entry)

	s.log.Info("subscription paused",
		slog.Int("id", subID),
		slog.Time("from", pausedFrom),
		slog.Time("to", pausedTo))
	return sub, nil
}

func (s *Service) invalidateProvider(providerID int) {
	key := fmt.Sprintf("provider:%d", providerID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate provider cache", slog.String("key", key), slog.Any("err", err))
	}
}
