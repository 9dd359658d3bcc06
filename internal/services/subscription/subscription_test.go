package subscription

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetTenantByUserUID(ctx context.Context, userUID string) (*models.Tenant, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *RepoMock) GetProviderByID(ctx context.Context, id int) (*models.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Provider), args.Error(1)
}

func (m *RepoMock) FindRequest(ctx context.Context, tenantID, providerID int, status string) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, tenantID, providerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CountSubscriptionsCreatedOn(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetSubscriptionByID(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) ListSubscriptionsByTenant(ctx context.Context, tenantUserUID, statusFilter string) ([]*models.Subscription, error) {
	args := m.Called(ctx, tenantUserUID, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *RepoMock) ListSubscriptionsByProvider(ctx context.Context, providerUserUID, statusFilter string) ([]*models.Subscription, error) {
	args := m.Called(ctx, providerUserUID, statusFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *RepoMock) UpdateSubscriptionStatus(ctx context.Context, id int, status string) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CancelSubscription(ctx context.Context, id, providerID int) error {
	args := m.Called(ctx, id, providerID)
	return args.Error(0)
}

func (m *RepoMock) AppendPause(ctx context.Context, id int, entry models.PauseEntry) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testTenant() *models.Tenant {
	return &models.Tenant{ID: 1, UserUID: "tenant-uid", KycStatus: models.KycVerified}
}

func testProvider() *models.Provider {
	return &models.Provider{
		ID: 2, UserUID: "provider-uid", KycStatus: models.KycVerified,
		MaxTenants: 5, CurrentTenants: 1, IsActive: true, IsAvailable: true,
	}
}

func acceptedRequest() *models.ConnectionRequest {
	return &models.ConnectionRequest{ID: 10, TenantID: 1, ProviderID: 2, Status: models.RequestAccepted}
}

func newCacheMock() *CacheMock {
	cache := new(CacheMock)
	cache.On("Invalidate", mock.Anything).Return(nil).Maybe()
	return cache
}

func TestCreate_Pricing(t *testing.T) {
	identity := models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}

	tests := []struct {
		name           string
		req            models.DummySubscription
		wantDailyPrice int
		wantTotalPrice int
		wantEndDate    time.Time
	}{
		{
			name: "weekly lunch and dinner",
			req: models.DummySubscription{
				ProviderID:   2,
				Plan:         models.PlanWeekly,
				Meals:        models.MealSet{Lunch: true, Dinner: true},
				StartDate:    "01-03-2026",
				PricePerMeal: models.MealPrices{Breakfast: 40, Lunch: 60, Dinner: 50},
				PaymentMode:  models.PaymentWeekly,
			},
			wantDailyPrice: 110,
			wantTotalPrice: 770,
			wantEndDate:    time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "daily breakfast only",
			req: models.DummySubscription{
				ProviderID:   2,
				Plan:         models.PlanDaily,
				Meals:        models.MealSet{Breakfast: true},
				StartDate:    "01-03-2026",
				PricePerMeal: models.MealPrices{Breakfast: 40},
				PaymentMode:  models.PaymentAdvance,
			},
			wantDailyPrice: 40,
			wantTotalPrice: 40,
			wantEndDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly all meals over a 31-day month",
			req: models.DummySubscription{
				ProviderID:   2,
				Plan:         models.PlanMonthly,
				Meals:        models.MealSet{Breakfast: true, Lunch: true, Dinner: true},
				StartDate:    "01-03-2026",
				PricePerMeal: models.MealPrices{Breakfast: 40, Lunch: 60, Dinner: 50},
				PaymentMode:  models.PaymentMonthly,
			},
			wantDailyPrice: 150,
			wantTotalPrice: 150 * 31,
			wantEndDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
			repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
			repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
			repo.On("CountSubscriptionsCreatedOn", mock.Anything, mock.Anything).Return(2, nil)
			repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(42, nil)

			svc := New(repo, newCacheMock(), discardLogger())
			got, err := svc.Create(context.Background(), identity, tt.req)
			require.NoError(t, err)

			assert.Equal(t, 42, got.ID)
			assert.Equal(t, tt.wantDailyPrice, got.DailyPrice)
			assert.Equal(t, tt.wantTotalPrice, got.TotalPrice)
			assert.True(t, tt.wantEndDate.Equal(got.EndDate), "end date: want %s, got %s", tt.wantEndDate, got.EndDate)
			assert.Equal(t, models.SubscriptionPending, got.Status)
			assert.Equal(t, "SUB-"+time.Now().Format("20060102")+"-0003", got.Number)
			repo.AssertExpectations(t)
		})
	}
}

func TestCreate_NumberCollisionRetry(t *testing.T) {
	identity := models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}
	req := models.DummySubscription{
		ProviderID:   2,
		Plan:         models.PlanWeekly,
		Meals:        models.MealSet{Lunch: true},
		StartDate:    "01-03-2026",
		PricePerMeal: models.MealPrices{Lunch: 60},
		PaymentMode:  models.PaymentWeekly,
	}

	t.Run("collision resolved on second attempt", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
		repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
		repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
		// Первый счётчик совпал с параллельной вставкой, второй уже видит её.
		repo.On("CountSubscriptionsCreatedOn", mock.Anything, mock.Anything).Return(0, nil).Once()
		repo.On("CountSubscriptionsCreatedOn", mock.Anything, mock.Anything).Return(1, nil).Once()
		repo.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(0, repository.ErrDuplicateSubscriptionNumber).Once()
		repo.On("CreateSubscription", mock.Anything, mock.Anything).Return(42, nil).Once()

		svc := New(repo, newCacheMock(), discardLogger())
		got, err := svc.Create(context.Background(), identity, req)
		require.NoError(t, err)

		assert.Equal(t, 42, got.ID)
		assert.Equal(t, "SUB-"+time.Now().Format("20060102")+"-0002", got.Number)
		repo.AssertExpectations(t)
	})

	t.Run("collision on every attempt surfaces the error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
		repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
		repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
		repo.On("CountSubscriptionsCreatedOn", mock.Anything, mock.Anything).Return(0, nil).Times(createAttempts)
		repo.On("CreateSubscription", mock.Anything, mock.Anything).
			Return(0, repository.ErrDuplicateSubscriptionNumber).Times(createAttempts)

		svc := New(repo, newCacheMock(), discardLogger())
		got, err := svc.Create(context.Background(), identity, req)

		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrDuplicateSubscriptionNumber)
		assert.Nil(t, got)
		repo.AssertExpectations(t)
	})
}

func TestCreate_Preconditions(t *testing.T) {
	identity := models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}
	validReq := models.DummySubscription{
		ProviderID:   2,
		Plan:         models.PlanWeekly,
		Meals:        models.MealSet{Lunch: true},
		StartDate:    "01-03-2026",
		PricePerMeal: models.MealPrices{Lunch: 60},
		PaymentMode:  models.PaymentWeekly,
	}

	tests := []struct {
		name     string
		identity models.Identity
		req      models.DummySubscription
		setup    func(repo *RepoMock)
		wantKind error
	}{
		{
			name:     "provider role cannot create",
			identity: models.Identity{UserUID: "provider-uid", Role: models.RoleProvider},
			req:      validReq,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrNotAuthorized,
		},
		{
			name:     "tenant kyc not verified",
			identity: identity,
			req:      validReq,
			setup: func(repo *RepoMock) {
				unverified := testTenant()
				unverified.KycStatus = models.KycSubmitted
				repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(unverified, nil)
				repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
			},
			wantKind: errs.ErrPreconditionFailed,
		},
		{
			name:     "no accepted connection",
			identity: identity,
			req:      validReq,
			setup: func(repo *RepoMock) {
				repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
				repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
				repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).
					Return(nil, repository.ErrNotFound)
			},
			wantKind: errs.ErrPreconditionFailed,
		},
		{
			name:     "no meals selected",
			identity: identity,
			req: models.DummySubscription{
				ProviderID: 2, Plan: models.PlanWeekly, StartDate: "01-03-2026",
				PricePerMeal: models.MealPrices{Lunch: 60}, PaymentMode: models.PaymentWeekly,
			},
			setup: func(repo *RepoMock) {
				repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
				repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
				repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
			},
			wantKind: errs.ErrValidation,
		},
		{
			name:     "bad start date",
			identity: identity,
			req: models.DummySubscription{
				ProviderID: 2, Plan: models.PlanWeekly, Meals: models.MealSet{Lunch: true},
				StartDate: "2026-03-01", PricePerMeal: models.MealPrices{Lunch: 60},
				PaymentMode: models.PaymentWeekly,
			},
			setup: func(repo *RepoMock) {
				repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
				repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
				repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
			},
			wantKind: errs.ErrValidation,
		},
		{
			name:     "capacity exhausted",
			identity: identity,
			req:      validReq,
			setup: func(repo *RepoMock) {
				repo.On("GetTenantByUserUID", mock.Anything, "tenant-uid").Return(testTenant(), nil)
				repo.On("GetProviderByID", mock.Anything, 2).Return(testProvider(), nil)
				repo.On("FindRequest", mock.Anything, 1, 2, models.RequestAccepted).Return(acceptedRequest(), nil)
				repo.On("CountSubscriptionsCreatedOn", mock.Anything, mock.Anything).Return(0, nil)
				repo.On("CreateSubscription", mock.Anything, mock.Anything).
					Return(0, repository.ErrCapacityExceeded)
			},
			wantKind: errs.ErrPreconditionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)

			svc := New(repo, newCacheMock(), discardLogger())
			got, err := svc.Create(context.Background(), tt.identity, tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Nil(t, got)
			repo.AssertExpectations(t)
		})
	}
}

func testSubscription(status string) *models.Subscription {
	return &models.Subscription{
		ID: 42, Number: "SUB-20260301-0001",
		TenantID: 1, ProviderID: 2,
		TenantUserUID: "tenant-uid", ProviderUserUID: "provider-uid",
		Plan: models.PlanWeekly, Status: status,
	}
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		identity models.Identity
		current  string
		target   string
		setup    func(repo *RepoMock)
		wantKind error
	}{
		{
			name:     "provider activates pending",
			identity: models.Identity{UserUID: "provider-uid", Role: models.RoleProvider},
			current:  models.SubscriptionPending,
			target:   models.SubscriptionActive,
			setup: func(repo *RepoMock) {
				repo.On("UpdateSubscriptionStatus", mock.Anything, 42, models.SubscriptionActive).
					Return(int64(1), nil)
			},
		},
		{
			name:     "tenant resumes paused",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionPaused,
			target:   models.SubscriptionActive,
			setup: func(repo *RepoMock) {
				repo.On("UpdateSubscriptionStatus", mock.Anything, 42, models.SubscriptionActive).
					Return(int64(1), nil)
			},
		},
		{
			name:     "tenant pauses active without a journal entry",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionActive,
			target:   models.SubscriptionPaused,
			setup: func(repo *RepoMock) {
				repo.On("UpdateSubscriptionStatus", mock.Anything, 42, models.SubscriptionPaused).
					Return(int64(1), nil)
			},
		},
		{
			name:     "pausing a pending subscription is rejected",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionPending,
			target:   models.SubscriptionPaused,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrInvalidState,
		},
		{
			name:     "completing a pending subscription is rejected",
			identity: models.Identity{UserUID: "provider-uid", Role: models.RoleProvider},
			current:  models.SubscriptionPending,
			target:   models.SubscriptionCompleted,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrInvalidState,
		},
		{
			name:     "cancel releases the slot",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionActive,
			target:   models.SubscriptionCancelled,
			setup: func(repo *RepoMock) {
				repo.On("CancelSubscription", mock.Anything, 42, 2).Return(nil)
			},
		},
		{
			name:     "cancelled is terminal",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionCancelled,
			target:   models.SubscriptionActive,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrInvalidState,
		},
		{
			name:     "completed is terminal",
			identity: models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant},
			current:  models.SubscriptionCompleted,
			target:   models.SubscriptionCancelled,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrInvalidState,
		},
		{
			name:     "stranger is rejected",
			identity: models.Identity{UserUID: "stranger-uid", Role: models.RoleTenant},
			current:  models.SubscriptionActive,
			target:   models.SubscriptionCancelled,
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetSubscriptionByID", mock.Anything, 42).Return(testSubscription(tt.current), nil)
			tt.setup(repo)

			svc := New(repo, newCacheMock(), discardLogger())
			got, err := svc.UpdateStatus(context.Background(), tt.identity, 42,
				models.DummyStatusUpdate{Status: tt.target})

			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, got.Status)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestPause(t *testing.T) {
	identity := models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}

	tests := []struct {
		name     string
		identity models.Identity
		current  string
		req      models.DummyPause
		setup    func(repo *RepoMock)
		wantKind error
	}{
		{
			name:     "successful pause",
			identity: identity,
			current:  models.SubscriptionActive,
			req:      models.DummyPause{PausedFrom: "10-03-2026", PausedTo: "15-03-2026", Reason: "trip home"},
			setup: func(repo *RepoMock) {
				repo.On("AppendPause", mock.Anything, 42, mock.MatchedBy(func(e models.PauseEntry) bool {
					return e.PausedFrom.Before(e.PausedTo) && e.Reason == "trip home"
				})).Return(nil)
			},
		},
		{
			name:     "inverted interval",
			identity: identity,
			current:  models.SubscriptionActive,
			req:      models.DummyPause{PausedFrom: "15-03-2026", PausedTo: "10-03-2026"},
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrValidation,
		},
		{
			name:     "zero-length interval",
			identity: identity,
			current:  models.SubscriptionActive,
			req:      models.DummyPause{PausedFrom: "10-03-2026", PausedTo: "10-03-2026"},
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrValidation,
		},
		{
			name:     "pause requires active status",
			identity: identity,
			current:  models.SubscriptionPending,
			req:      models.DummyPause{PausedFrom: "10-03-2026", PausedTo: "15-03-2026"},
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrInvalidState,
		},
		{
			name:     "provider cannot pause",
			identity: models.Identity{UserUID: "provider-uid", Role: models.RoleProvider},
			current:  models.SubscriptionActive,
			req:      models.DummyPause{PausedFrom: "10-03-2026", PausedTo: "15-03-2026"},
			setup:    func(_ *RepoMock) {},
			wantKind: errs.ErrNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetSubscriptionByID", mock.Anything, 42).Return(testSubscription(tt.current), nil)
			tt.setup(repo)

			svc := New(repo, newCacheMock(), discardLogger())
			got, err := svc.Pause(context.Background(), tt.identity, 42, tt.req)

			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.SubscriptionPaused, got.Status)
				require.Len(t, got.PauseHistory, 1)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestListMine(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListSubscriptionsByTenant", mock.Anything, "tenant-uid", models.SubscriptionActive).
		Return([]*models.Subscription{testSubscription(models.SubscriptionActive)}, nil)

	svc := New(repo, newCacheMock(), discardLogger())

	got, err := svc.ListMine(context.Background(),
		models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}, models.SubscriptionActive)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListMine(context.Background(),
		models.Identity{UserUID: "tenant-uid", Role: models.RoleTenant}, "bogus")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
