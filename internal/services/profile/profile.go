// Package profile собирает публичные представления профилей с учётом правил
// видимости контактов: карточки и детали поставщиков, детали арендатора.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/services/visibility"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// Repository определяет методы хранилища для чтения профилей.
type Repository interface {
	GetProviderByID(ctx context.Context, id int) (*models.Provider, error)
	ListProviders(ctx context.Context, limit, offset int) ([]*models.Provider, error)
	GetTenantByID(ctx context.Context, id int) (*models.Tenant, error)
	GetTenantByUserUID(ctx context.Context, userUID string) (*models.Tenant, error)
	GetProviderByUserUID(ctx context.Context, userUID string) (*models.Provider, error)
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	FindRequest(ctx context.Context, tenantID, providerID int, status string) (*models.ConnectionRequest, error)
}

// Cache описывает методы для кэширования профилей поставщиков.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service реализует чтение профилей.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// cacheTTL — срок жизни кэшированных записей поставщиков.
const cacheTTL = time.Hour

// ProviderCard — публичная карточка поставщика в списке, без контактов.
type ProviderCard struct {
	ID                 int    `json:"id"`
	DisplayName        string `json:"display_name"`
	Bio                string `json:"bio,omitempty"`
	Area               string `json:"area"`
	City               string `json:"city"`
	KycStatus          string `json:"kyc_status"`
	MaxTenants         int    `json:"max_tenants"`
	CurrentTenants     int    `json:"current_tenants"`
	TotalSubscriptions int    `json:"total_subscriptions"`
	IsAvailable        bool   `json:"is_available"`
}

// ProviderProfile — детальное представление поставщика. Контактные поля
// присутствуют только когда наблюдателю открыт доступ.
type ProviderProfile struct {
	ProviderCard
	Address              string `json:"address,omitempty"`
	Pincode              string `json:"pincode,omitempty"`
	Phone                string `json:"phone,omitempty"`
	Email                string `json:"email,omitempty"`
	ContactVisible       bool   `json:"contact_visible"`
	ConnectionStatus     string `json:"connection_status"`
	CanRequestConnection bool   `json:"can_request_connection"`
}

// TenantProfile — представление арендатора для поставщика или администратора.
// Телефон присутствует только когда наблюдателю разрешено его видеть.
type TenantProfile struct {
	ID             int    `json:"id"`
	DisplayName    string `json:"display_name"`
	KycStatus      string `json:"kyc_status"`
	MonthlyBudget  int    `json:"monthly_budget"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	ContactVisible bool   `json:"contact_visible"`
}

func card(p *models.Provider) ProviderCard {
	return ProviderCard{
		ID:                 p.ID,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		Area:               p.Area,
		City:               p.City,
		KycStatus:          p.KycStatus,
		MaxTenants:         p.MaxTenants,
		CurrentTenants:     p.CurrentTenants,
		TotalSubscriptions: p.TotalSubscriptions,
		IsAvailable:        p.IsAvailable,
	}
}

// ListProviders возвращает страницу карточек активных поставщиков,
// используя кеш или репозиторий.
func (s *Service) ListProviders(ctx context.Context, limit, offset int) ([]ProviderCard, error) {
	var cards []ProviderCard
	cacheKey := fmt.Sprintf("providers:%d:%d", limit, offset)
	found, err := s.cache.Get(cacheKey, &cards)
	if err != nil {
		s.log.Warn("failed to read providers from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cards, nil
	}

	providers, err := s.repo.ListProviders(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	cards = make([]ProviderCard, 0, len(providers))
	for _, p := range providers {
		cards = append(cards, card(p))
	}

	if err := s.cache.Set(cacheKey, cards, cacheTTL); err != nil {
		s.log.Warn("failed to cache providers", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return cards, nil
}

// getProvider читает поставщика через кеш по ключу provider:<id>.
// Кеш инвалидируется при изменении занятых слотов.
func (s *Service) getProvider(ctx context.Context, id int) (*models.Provider, error) {
	var provider *models.Provider
	cacheKey := fmt.Sprintf("provider:%d", id)
	found, err := s.cache.Get(cacheKey, &provider)
	if err != nil {
		s.log.Warn("failed to read provider from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return provider, nil
	}

	provider, err = s.repo.GetProviderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, provider, cacheTTL); err != nil {
		s.log.Warn("failed to cache provider", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return provider, nil
}

// ProviderDetail возвращает профиль поставщика для наблюдателя viewer
// (nil — анонимный запрос). Контакты открываются по правилам видимости,
// статус знакомства и право подать заявку вычисляются для арендаторов.
func (s *Service) ProviderDetail(ctx context.Context, viewer *models.Identity, id int) (*ProviderProfile, error) {
	provider, err := s.getProvider(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "provider not found")
		}
		return nil, err
	}

	profile := &ProviderProfile{
		ProviderCard:         card(provider),
		ConnectionStatus:     "none",
		CanRequestConnection: viewer != nil && viewer.Role == models.RoleTenant,
	}

	connected := false
	if viewer != nil && viewer.Role == models.RoleTenant {
		tenant, err := s.repo.GetTenantByUserUID(ctx, viewer.UserUID)
		switch {
		case err == nil:
			last, err := s.repo.FindRequest(ctx, tenant.ID, provider.ID, "")
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			if last != nil {
				profile.ConnectionStatus = last.Status
				connected = last.Status == models.RequestAccepted
				if last.Status == models.RequestPending || connected {
					profile.CanRequestConnection = false
				}
			}
		case errors.Is(err, repository.ErrNotFound):
			profile.CanRequestConnection = false
		default:
			return nil, err
		}
	}

	access := visibility.ProviderAccess(visibility.NewContext(viewer, time.Now()), provider.UserUID, connected)
	profile.ContactVisible = access.Contact
	if access.Contact {
		user, err := s.repo.GetUserByUID(ctx, provider.UserUID)
		if err != nil {
			return nil, err
		}
		profile.Address = provider.Address
		profile.Pincode = provider.Pincode
		profile.Email = user.Email
		if access.Phone {
			profile.Phone = user.Phone
		}
	}
	return profile, nil
}

// TenantDetail возвращает профиль арендатора. Телефон арендатора закрыт
// для поставщиков даже при принятом знакомстве.
func (s *Service) TenantDetail(ctx context.Context, viewer *models.Identity, id int) (*TenantProfile, error) {
	tenant, err := s.repo.GetTenantByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "tenant not found")
		}
		return nil, err
	}

	connected := false
	if viewer != nil && viewer.Role == models.RoleProvider {
		provider, err := s.repo.GetProviderByUserUID(ctx, viewer.UserUID)
		if err == nil {
			if _, err := s.repo.FindRequest(ctx, tenant.ID, provider.ID, models.RequestAccepted); err == nil {
				connected = true
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	profile := &TenantProfile{
		ID:            tenant.ID,
		DisplayName:   tenant.DisplayName,
		KycStatus:     tenant.KycStatus,
		MonthlyBudget: tenant.MonthlyBudget,
	}

	access := visibility.TenantAccess(visibility.NewContext(viewer, time.Now()), tenant.UserUID, connected)
	profile.ContactVisible = access.Contact
	if access.Contact {
		user, err := s.repo.GetUserByUID(ctx, tenant.UserUID)
		if err != nil {
			return nil, err
		}
		profile.Email = user.Email
		if access.Phone {
			profile.Phone = user.Phone
		}
	}
	return profile, nil
}
