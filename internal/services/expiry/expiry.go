package expiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

type Repository interface {
	ExpireStaleRequests(ctx context.Context, now time.Time) ([]*models.ConnectionRequest, error)
}

type Notifier interface {
	Notify(ctx context.Context, userUID, eventType, title, message string, payload map[string]any)
}

// Service периодически переводит просроченные pending-заявки в статус expired
// и уведомляет арендаторов, чьи заявки остались без ответа.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Run запускает цикл очистки. Первый проход выполняется сразу,
// дальше — по тикеру, пока контекст не отменят.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход очистки просроченных заявок.
func (s *Service) Sweep(ctx context.Context) {
	s.log.Info("starting sweep of stale connection requests")
	expired, err := s.repo.ExpireStaleRequests(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to expire stale requests", sl.Err(err))
		return
	}
	if len(expired) == 0 {
		s.log.Info("no stale connection requests found")
		return
	}
	s.log.Info("expired stale connection requests", "count", len(expired))
	for _, req := range expired {
		s.notifier.Notify(ctx, req.TenantUserUID, models.EventRequestExpired,
			"Connection request expired",
			"Your connection request was not answered in time and has expired",
			map[string]any{"request_id": req.ID, "provider_id": req.ProviderID})
	}
}
