// Package tiffinconnect предоставляет маршруты для основного приложения.
package tiffinconnect

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/connection/myrequests"
	connectionread "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/connection/read"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/connection/respond"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/connection/send"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/notification/markread"
	premiumstatus "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/premium/status"
	providerlist "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/provider/list"
	providerread "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/provider/read"
	reviewcreate "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/review/create"
	reviewlist "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/review/list"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/subscription/create"
	subscriptionlist "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/subscription/pause"
	subscriptionread "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/subscription/updatestatus"
	tenantread "github.com/magabrotheeeer/tiffin-connect/internal/http/handlers/tenant/read"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/tiffin-connect/internal/services/auth"
	connectionservice "github.com/magabrotheeeer/tiffin-connect/internal/services/connection"
	notificationservice "github.com/magabrotheeeer/tiffin-connect/internal/services/notification"
	premiumservice "github.com/magabrotheeeer/tiffin-connect/internal/services/premium"
	profileservice "github.com/magabrotheeeer/tiffin-connect/internal/services/profile"
	reviewservice "github.com/magabrotheeeer/tiffin-connect/internal/services/review"
	subscriptionservice "github.com/magabrotheeeer/tiffin-connect/internal/services/subscription"
)

// Services собирает сервисы ядра, нужные для регистрации маршрутов.
type Services struct {
	Auth         *authservice.Service
	Connection   *connectionservice.Service
	Subscription *subscriptionservice.Service
	Profile      *profileservice.Service
	Notification *notificationservice.Service
	Premium      *premiumservice.Service
	Review       *reviewservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, jwtMaker jwt.Maker, users middlewarectx.UserProvider) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Каталог поставщиков доступен без входа, но аутентифицированный
		// наблюдатель видит больше (контакты по premium-доступу).
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalAuthMiddleware(jwtMaker, users, logger))
			r.Get("/providers", providerlist.New(logger, svc.Profile).ServeHTTP)
			r.Get("/providers/{id}", providerread.New(logger, svc.Profile).ServeHTTP)
			r.Get("/providers/{id}/reviews", reviewlist.New(logger, svc.Review).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(jwtMaker, users, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, 20, 40))
			r.Post("/connections/requests", send.New(logger, svc.Connection).ServeHTTP)
			r.Post("/connections/requests/{id}/respond", respond.New(logger, svc.Connection).ServeHTTP)
			r.Get("/connections/requests/{id}", connectionread.New(logger, svc.Connection).ServeHTTP)
			r.Get("/connections/my-requests", myrequests.New(logger, svc.Connection).ServeHTTP)
			r.Post("/subscriptions", create.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscriptions", subscriptionlist.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/subscriptions/{id}", subscriptionread.New(logger, svc.Subscription).ServeHTTP)
			r.Patch("/subscriptions/{id}/status", updatestatus.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/subscriptions/{id}/pause", pause.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/reviews", reviewcreate.New(logger, svc.Review).ServeHTTP)
			r.Get("/tenants/{id}", tenantread.New(logger, svc.Profile).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, svc.Notification).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, svc.Notification).ServeHTTP)
			r.Get("/premium/status", premiumstatus.New(logger, svc.Premium).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
