package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/errs"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListNotifications(ctx context.Context, userUID string, limit, offset int, unreadOnly bool) ([]*models.Notification, error) {
	args := m.Called(ctx, userUID, limit, offset, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *RepoMock) CountUnreadNotifications(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) MarkNotificationRead(ctx context.Context, id int, userUID string) (int64, error) {
	args := m.Called(ctx, id, userUID)
	return args.Get(0).(int64), args.Error(1)
}

func discardLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestList(t *testing.T) {
	item := &models.Notification{ID: 1, UserUID: "uid-1", Type: models.EventRequestAccepted}

	tests := []struct {
		name       string
		setupMocks func(*RepoMock)
		wantItems  int
		wantUnread int
		wantErr    bool
	}{
		{
			name: "страница с непрочитанными",
			setupMocks: func(r *RepoMock) {
				r.On("ListNotifications", mock.Anything, "uid-1", 20, 0, false).
					Return([]*models.Notification{item}, nil).Once()
				r.On("CountUnreadNotifications", mock.Anything, "uid-1").Return(3, nil).Once()
			},
			wantItems:  1,
			wantUnread: 3,
		},
		{
			name: "пустая лента отдаёт пустой срез, а не nil",
			setupMocks: func(r *RepoMock) {
				r.On("ListNotifications", mock.Anything, "uid-1", 20, 0, false).
					Return(nil, nil).Once()
				r.On("CountUnreadNotifications", mock.Anything, "uid-1").Return(0, nil).Once()
			},
			wantItems:  0,
			wantUnread: 0,
		},
		{
			name: "ошибка хранилища",
			setupMocks: func(r *RepoMock) {
				r.On("ListNotifications", mock.Anything, "uid-1", 20, 0, false).
					Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, discardLogger())
			feed, err := svc.List(context.Background(), "uid-1", 20, 0, false)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, feed.Items)
			assert.Len(t, feed.Items, tt.wantItems)
			assert.Equal(t, tt.wantUnread, feed.UnreadCount)
			repo.AssertExpectations(t)
		})
	}
}

func TestMarkRead(t *testing.T) {
	t.Run("своё уведомление", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkNotificationRead", mock.Anything, 5, "uid-1").Return(int64(1), nil).Once()

		svc := New(repo, discardLogger())
		err := svc.MarkRead(context.Background(), "uid-1", 5)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("чужое уведомление выглядит как отсутствующее", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkNotificationRead", mock.Anything, 5, "uid-2").Return(int64(0), nil).Once()

		svc := New(repo, discardLogger())
		err := svc.MarkRead(context.Background(), "uid-2", 5)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
