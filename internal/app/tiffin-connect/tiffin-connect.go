package tiffinconnect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/tiffin-connect/internal/cache"
	"github.com/magabrotheeeer/tiffin-connect/internal/config"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tiffin-connect/internal/migrations"
	authservice "github.com/magabrotheeeer/tiffin-connect/internal/services/auth"
	connectionservice "github.com/magabrotheeeer/tiffin-connect/internal/services/connection"
	notificationservice "github.com/magabrotheeeer/tiffin-connect/internal/services/notification"
	notifierservice "github.com/magabrotheeeer/tiffin-connect/internal/services/notifier"
	premiumservice "github.com/magabrotheeeer/tiffin-connect/internal/services/premium"
	profileservice "github.com/magabrotheeeer/tiffin-connect/internal/services/profile"
	reviewservice "github.com/magabrotheeeer/tiffin-connect/internal/services/review"
	subscriptionservice "github.com/magabrotheeeer/tiffin-connect/internal/services/subscription"
	"github.com/magabrotheeeer/tiffin-connect/internal/storage/repository"
)

// App объединяет HTTP-сервер маркетплейса и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New собирает приложение: хранилище, миграции, кэш, очередь
// уведомлений, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	notifier := notifierservice.New(db, ch, logger)

	authService := authservice.New(db, jwtMaker, logger)
	connectionService := connectionservice.New(db, notifier, logger)
	subscriptionService := subscriptionservice.New(db, cacheRedis, logger)
	profileService := profileservice.New(db, cacheRedis, logger)
	notificationService := notificationservice.New(db, logger)
	premiumService := premiumservice.New(db, logger)
	reviewService := reviewservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Connection:   connectionService,
		Subscription: subscriptionService,
		Profile:      profileService,
		Notification: notificationService,
		Premium:      premiumService,
		Review:       reviewService,
	}, jwtMaker, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", cerr))
		}
		return err
	}
}
