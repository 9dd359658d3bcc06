// Package connection реализует жизненный цикл заявок на знакомство:
// арендатор отправляет заявку поставщику, поставщик принимает или отклоняет её,
// по истечении семи дней без ответа заявка протухает.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// Repository определяет методы хранилища для работы с заявками.
type Repository interface {
	GetTenantByUserUID(ctx context.Context, userUID string) (*models.Tenant, error)
	GetProviderByID(ctx context.Context, id int) (*models.Provider, error)
	CreateRequest(ctx context.Context, req models.ConnectionRequest) (int, error)
	GetRequestByID(ctx context.Context, id int) (*models.ConnectionRequest, error)
	RespondRequest(ctx context.Context, id int, status, providerMessage string,
		sampleFoodApproved, contactShared bool, respondedAt time.Time) (int64, error)
	ListRequestsByTenant(ctx context.Context, tenantUserUID string) ([]*models.ConnectionRequest, error)
	ListRequestsByProvider(ctx context.Context, providerUserUID string) ([]*models.ConnectionRequest, error)
	ListAdminUIDs(ctx context.Context) ([]string, error)
}

// Notifier отправляет уведомления о событиях заявки.
type Notifier interface {
	Notify(ctx context.Context, userUID, eventType, title, message string, payload map[string]any)
}

// Service реализует бизнес-логику заявок на знакомство.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// Send создает заявку арендатора на знакомство с поставщиком.
// Снимок KYC-статусов обеих сторон фиксируется на момент создания
// и позже не перепроверяется. Проверка вместимости здесь консультативная:
// слот резервируется только при создании подписки.
func (s *Service) Send(ctx context.Context, id models.Identity, req models.DummyConnectionRequest) (*models.ConnectionRequest, error) {
	if id.Role != models.RoleTenant {
		return nil, errs.New(errs.ErrNotAuthorized, "only tenants can send connection requests")
	}

	tenant, err := s.repo.GetTenantByUserUID(ctx, id.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrPreconditionFailed, "tenant profile is not set up")
		}
		return nil, err
	}
	if tenant.KycStatus != models.KycVerified {
		return nil, errs.New(errs.ErrPreconditionFailed, "tenant kyc is not verified")
	}

	provider, err := s.repo.GetProviderByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "provider not found")
		}
		return nil, err
	}
	if !provider.IsActive || !provider.IsAvailable {
		return nil, errs.New(errs.ErrPreconditionFailed, "provider is not accepting requests")
	}
	if !provider.HasCapacity() {
		return nil, errs.New(errs.ErrPreconditionFailed, "provider has no free slots")
	}

	now := time.Now()
	request := models.ConnectionRequest{
		TenantID:            tenant.ID,
		ProviderID:          provider.ID,
		TenantUserUID:       tenant.UserUID,
		ProviderUserUID:     provider.UserUID,
		RequestedBy:         models.RoleTenant,
		Message:             req.Message,
		SampleFoodRequest:   req.SampleFoodRequest,
		Status:              models.RequestPending,
		TenantKycVerified:   tenant.KycStatus == models.KycVerified,
		ProviderKycVerified: provider.KycStatus == models.KycVerified,
		ExpiresAt:           now.Add(models.RequestTTL),
	}

	newID, err := s.repo.CreateRequest(ctx, request)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePendingRequest) {
			return nil, errs.New(errs.ErrPreconditionFailed, "a pending request to this provider already exists")
		}
		return nil, err
	}
	request.ID = newID
	request.CreatedAt = now

	s.log.Info("connection request created",
		slog.Int("request_id", newID),
		slog.Int("tenant_id", tenant.ID),
		slog.Int("provider_id", provider.ID))

	payload := map[string]any{"request_id": newID, "tenant_id": tenant.ID}
	s.notifier.Notify(ctx, provider.UserUID, models.EventConnectionRequest,
		"New connection request",
		fmt.Sprintf("%s wants to connect with you", tenant.DisplayName), payload)

	adminUIDs, err := s.repo.ListAdminUIDs(ctx)
	if err != nil {
		s.log.Error("failed to list admins for notification", sl.Err(err))
	}
	for _, adminUID := range adminUIDs {
		s.notifier.Notify(ctx, adminUID, models.EventAdminConnectionRequest,
			"Connection request created",
			fmt.Sprintf("request %d: tenant %d -> provider %d", newID, tenant.ID, provider.ID), payload)
	}

	return &request, nil
}

// Respond записывает ответ поставщика на pending-заявку. Принятие заявки
// открывает арендатору контакты поставщика (contact_shared). Повторный ответ
// отклоняется: обновление затрагивает только pending-строку.
func (s *Service) Respond(ctx context.Context, id models.Identity, requestID int, resp models.DummyConnectionResponse) (*models.ConnectionRequest, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "connection request not found")
		}
		return nil, err
	}

	if id.Role != models.RoleProvider || request.ProviderUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "only the requested provider can respond")
	}
	if request.Status != models.RequestPending {
		return nil, errs.New(errs.ErrInvalidState, "request is already "+request.Status)
	}
	now := time.Now()
	if now.After(request.ExpiresAt) {
		return nil, errs.New(errs.ErrInvalidState, "request has expired")
	}

	contactShared := resp.Status == models.RequestAccepted
	sampleFoodApproved := request.SampleFoodRequest &&
		resp.SampleFoodApproved != nil && *resp.SampleFoodApproved

	rowsAffected, err := s.repo.RespondRequest(ctx, requestID, resp.Status, resp.Message,
		sampleFoodApproved, contactShared, now)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, errs.New(errs.ErrInvalidState, "request was already responded to")
	}

	s.log.Info("connection request responded",
		slog.Int("request_id", requestID), slog.String("status", resp.Status))

	payload := map[string]any{"request_id": requestID, "provider_id": request.ProviderID}
	if contactShared {
		s.notifier.Notify(ctx, request.TenantUserUID, models.EventRequestAccepted,
			"Connection request accepted",
			"the provider accepted your request, contact details are now visible", payload)
	} else {
		s.notifier.Notify(ctx, request.TenantUserUID, models.EventRequestRejected,
			"Connection request rejected",
			"the provider rejected your request", payload)
	}

	request.Status = resp.Status
	request.ProviderMessage = resp.Message
	request.SampleFoodApproved = sampleFoodApproved
	request.ContactShared = contactShared
	request.RespondedAt = &now
	return request, nil
}

// GetByID возвращает заявку её стороне или администратору.
func (s *Service) GetByID(ctx context.Context, id models.Identity, requestID int) (*models.ConnectionRequest, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.ErrNotFound, "connection request not found")
		}
		return nil, err
	}
	if id.Role != models.RoleAdmin &&
		request.TenantUserUID != id.UserUID && request.ProviderUserUID != id.UserUID {
		return nil, errs.New(errs.ErrNotAuthorized, "not a party of this request")
	}
	return request, nil
}

// ListMine возвращает заявки стороны в зависимости от её роли.
func (s *Service) ListMine(ctx context.Context, id models.Identity) ([]*models.ConnectionRequest, error) {
	switch id.Role {
	case models.RoleTenant:
		return s.repo.ListRequestsByTenant(ctx, id.UserUID)
	case models.RoleProvider:
		return s.repo.ListRequestsByProvider(ctx, id.UserUID)
	default:
		return nil, errs.New(errs.ErrNotAuthorized, "role has no connection inbox")
	}
}
