package middlewarectx_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

type UsersMock struct {
	mock.Mock
}

func (m *UsersMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestAuthMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	validToken, err := maker.GenerateToken("uid-1", models.RoleTenant)
	require.NoError(t, err)

	user := &models.User{UID: "uid-1", Role: models.RoleTenant, IsPremium: true}

	tests := []struct {
		name           string
		authHeader     string
		setupUsers     func(*UsersMock)
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			setupUsers:     func(_ *UsersMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			setupUsers:     func(_ *UsersMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			setupUsers:     func(_ *UsersMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "token for deleted user",
			authHeader: "Bearer " + validToken,
			setupUsers: func(u *UsersMock) {
				u.On("GetUserByUID", mock.Anything, "uid-1").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + validToken,
			setupUsers: func(u *UsersMock) {
				u.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UsersMock)
			tt.setupUsers(users)

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				identity := middlewarectx.IdentityFromContext(r.Context())
				require.NotNil(t, identity)
				assert.Equal(t, "uid-1", identity.UserUID)
				assert.Equal(t, models.RoleTenant, identity.Role)
				assert.True(t, identity.IsPremium)
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.AuthMiddleware(maker, users, newNoopLogger())(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			users.AssertExpectations(t)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	validToken, err := maker.GenerateToken("uid-1", models.RoleTenant)
	require.NoError(t, err)

	t.Run("без заголовка запрос проходит анонимно", func(t *testing.T) {
		users := new(UsersMock)
		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Nil(t, middlewarectx.IdentityFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})
		mw := middlewarectx.OptionalAuthMiddleware(maker, users, newNoopLogger())(nextHandler)

		req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("испорченный токен отклоняется, а не понижается до анонимного", func(t *testing.T) {
		users := new(UsersMock)
		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mw := middlewarectx.OptionalAuthMiddleware(maker, users, newNoopLogger())(nextHandler)

		req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("валидный токен кладёт identity в контекст", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByUID", mock.Anything, "uid-1").
			Return(&models.User{UID: "uid-1", Role: models.RoleTenant}, nil).Once()

		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := middlewarectx.IdentityFromContext(r.Context())
			require.NotNil(t, identity)
			assert.Equal(t, "uid-1", identity.UserUID)
			w.WriteHeader(http.StatusOK)
		})
		mw := middlewarectx.OptionalAuthMiddleware(maker, users, newNoopLogger())(nextHandler)

		req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		users.AssertExpectations(t)
	})
}
