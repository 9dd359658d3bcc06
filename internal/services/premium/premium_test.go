package premium

import (
	"context"
	"errors"
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

func (m *RepoMock) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ClearPremium(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestStatus_ActivePremium(t *testing.T) {
	expires := time.Now().Add(10*24*time.Hour + time.Hour)
	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", IsPremium: true, PremiumExpiresAt: &expires}, nil)

	svc := New(repo, discardLogger())
	got, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.True(t, got.IsPremium)
	assert.Equal(t, 11, got.DaysRemaining) // неполные сутки округляются вверх
	require.NotNil(t, got.ExpiresAt)
}

func TestStatus_LifetimePremium(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", IsPremium: true}, nil)

	svc := New(repo, discardLogger())
	got, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.True(t, got.IsPremium)
	assert.Nil(t, got.ExpiresAt)
	assert.Zero(t, got.DaysRemaining)
}

func TestStatus_ExpiredPremiumIsCleared(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", IsPremium: true, PremiumExpiresAt: &expired}, nil)
	repo.On("ClearPremium", mock.Anything, "uid-1").Return(nil)

	svc := New(repo, discardLogger())
	got, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)

	assert.False(t, got.IsPremium)
	repo.AssertExpectations(t)
}

func TestStatus_ClearFailureStillReportsExpired(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "uid-1").
		Return(&models.User{UID: "uid-1", IsPremium: true, PremiumExpiresAt: &expired}, nil)
	repo.On("ClearPremium", mock.Anything, "uid-1").Return(errors.New("db down"))

	svc := New(repo, discardLogger())
	got, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.False(t, got.IsPremium)
}

func TestStatus_UnknownUser(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByUID", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	svc := New(repo, discardLogger())
	_, err := svc.Status(context.Background(), "ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
