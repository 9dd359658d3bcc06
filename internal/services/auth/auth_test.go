package auth

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
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/password"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CreateTenant(ctx context.Context, t models.Tenant) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateProvider(ctx context.Context, p models.Provider) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newMaker() jwt.Maker {
	return jwt.NewJWTMaker("test-secret", time.Hour)
}

func tenantRegister() models.DummyRegister {
	return models.DummyRegister{
		Email:         "tenant@example.com",
		Password:      "secret-password",
		Name:          "Ravi Kumar",
		Phone:         "+91-9000000001",
		Role:          models.RoleTenant,
		DisplayName:   "Ravi",
		MonthlyBudget: 4000,
	}
}

func providerRegister() models.DummyRegister {
	return models.DummyRegister{
		Email:       "cook@example.com",
		Password:    "secret-password",
		Name:        "Anita Sharma",
		Phone:       "+91-9000000002",
		Role:        models.RoleProvider,
		DisplayName: "Anita's Kitchen",
		Bio:         "Home-style North Indian food",
		Address:     "12 MG Road",
		Area:        "Koramangala",
		City:        "Bengaluru",
		Pincode:     "560034",
		MaxTenants:  10,
	}
}

func TestRegister_Tenant(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "tenant@example.com" &&
			u.Role == models.RoleTenant &&
			u.PasswordHash != "" && u.PasswordHash != "secret-password"
	})).Return("uid-1", nil).Once()
	repo.On("CreateTenant", mock.Anything, mock.MatchedBy(func(tn models.Tenant) bool {
		return tn.UserUID == "uid-1" &&
			tn.KycStatus == models.KycPending &&
			tn.MonthlyBudget == 4000
	})).Return(1, nil).Once()

	svc := New(repo, newMaker(), discardLogger())
	uid, err := svc.Register(context.Background(), tenantRegister())
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repo.AssertExpectations(t)
}

func TestRegister_Provider(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return("uid-2", nil).Once()
	repo.On("CreateProvider", mock.Anything, mock.MatchedBy(func(p models.Provider) bool {
		return p.UserUID == "uid-2" &&
			p.KycStatus == models.KycPending &&
			p.MaxTenants == 10 &&
			p.IsActive && p.IsAvailable
	})).Return(2, nil).Once()

	svc := New(repo, newMaker(), discardLogger())
	uid, err := svc.Register(context.Background(), providerRegister())
	require.NoError(t, err)
	assert.Equal(t, "uid-2", uid)
	repo.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.DummyRegister)
	}{
		{
			name: "арендатор без бюджета",
			mutate: func(r *models.DummyRegister) {
				*r = tenantRegister()
				r.MonthlyBudget = 0
			},
		},
		{
			name: "поставщик без вместимости",
			mutate: func(r *models.DummyRegister) {
				*r = providerRegister()
				r.MaxTenants = 0
			},
		},
		{
			name: "недопустимая роль",
			mutate: func(r *models.DummyRegister) {
				*r = tenantRegister()
				r.Role = models.RoleAdmin
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req models.DummyRegister
			tt.mutate(&req)

			repo := new(RepoMock)
			svc := New(repo, newMaker(), discardLogger())
			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, errs.ErrValidation)
			repo.AssertNotCalled(t, "CreateUser")
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateUser", mock.Anything, mock.Anything).
		Return("", repository.ErrDuplicateEmail).Once()

	svc := New(repo, newMaker(), discardLogger())
	_, err := svc.Register(context.Background(), tenantRegister())
	assert.ErrorIs(t, err, errs.ErrPreconditionFailed)
}

func TestLogin(t *testing.T) {
	hash, err := password.GetHash("secret-password")
	require.NoError(t, err)
	user := &models.User{
		UID:          "uid-1",
		Email:        "tenant@example.com",
		PasswordHash: hash,
		Role:         models.RoleTenant,
	}

	t.Run("верные данные", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "tenant@example.com").Return(user, nil).Once()

		svc := New(repo, newMaker(), discardLogger())
		session, err := svc.Login(context.Background(), models.DummyLogin{
			Email:    "tenant@example.com",
			Password: "secret-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		assert.Equal(t, "uid-1", session.UserUID)
		assert.Equal(t, models.RoleTenant, session.Role)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "tenant@example.com").Return(user, nil).Once()

		svc := New(repo, newMaker(), discardLogger())
		_, err := svc.Login(context.Background(), models.DummyLogin{
			Email:    "tenant@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	})

	t.Run("неизвестный e-mail выглядит как неверный пароль", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.ErrNotFound).Once()

		svc := New(repo, newMaker(), discardLogger())
		_, err := svc.Login(context.Background(), models.DummyLogin{
			Email:    "ghost@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	})
}

func TestLoginTokenRoundTrip(t *testing.T) {
	hash, err := password.GetHash("secret-password")
	require.NoError(t, err)
	repo := new(RepoMock)
	repo.On("GetUserByEmail", mock.Anything, "tenant@example.com").Return(&models.User{
		UID:          "uid-1",
		PasswordHash: hash,
		Role:         models.RoleTenant,
	}, nil).Once()

	maker := newMaker()
	svc := New(repo, maker, discardLogger())
	session, err := svc.Login(context.Background(), models.DummyLogin{
		Email:    "tenant@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	claims, err := maker.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserUID)
	assert.Equal(t, models.RoleTenant, claims.Role)
}
