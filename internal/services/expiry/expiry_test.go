package expiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ExpireStaleRequests(ctx context.Context, now time.Time) ([]*models.ConnectionRequest, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConnectionRequest), args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Notify(ctx context.Context, userUID, eventType, title, message string, payload map[string]any) {
	m.Called(ctx, userUID, eventType, title, message, payload)
}

func discardLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSweep(t *testing.T) {
	staleRequest := &models.ConnectionRequest{
		ID:            7,
		TenantID:      1,
		ProviderID:    2,
		TenantUserUID: "tenant-uid",
		Status:        models.RequestExpired,
	}

	tests := []struct {
		name       string
		setupMocks func(*RepoMock, *NotifierMock)
	}{
		{
			name: "уведомляет арендатора по каждой просроченной заявке",
			setupMocks: func(r *RepoMock, n *NotifierMock) {
				r.On("ExpireStaleRequests", mock.Anything, mock.AnythingOfType("time.Time")).
					Return([]*models.ConnectionRequest{staleRequest}, nil).Once()
				n.On("Notify", mock.Anything, "tenant-uid", models.EventRequestExpired,
					mock.AnythingOfType("string"), mock.AnythingOfType("string"),
					mock.Anything).Once()
			},
		},
		{
			name: "нет просроченных заявок",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("ExpireStaleRequests", mock.Anything, mock.AnythingOfType("time.Time")).
					Return([]*models.ConnectionRequest{}, nil).Once()
			},
		},
		{
			name: "ошибка хранилища не роняет цикл",
			setupMocks: func(r *RepoMock, _ *NotifierMock) {
				r.On("ExpireStaleRequests", mock.Anything, mock.AnythingOfType("time.Time")).
					Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			notifier := new(NotifierMock)
			tt.setupMocks(repo, notifier)

			svc := New(repo, notifier, discardLogger())
			assert.NotPanics(t, func() {
				svc.Sweep(context.Background())
			})

			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ExpireStaleRequests", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]*models.ConnectionRequest{}, nil)
	notifier := new(NotifierMock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc := New(repo, notifier, discardLogger())
		svc.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
