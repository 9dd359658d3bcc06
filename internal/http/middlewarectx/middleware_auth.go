// Package middlewarectx содержит HTTP middleware для проверки JWT токенов
// и ограничения частоты запросов.
//
// AuthMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization, загружает учётную запись из хранилища и кладёт в контекст
// models.Identity с uid, ролью и premium-фактами для правил видимости.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/response"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ, под которым models.Identity лежит в контексте запроса.
const IdentityKey Key = "identity"

// UserProvider загружает учётную запись для обогащения Identity premium-фактами.
type UserProvider interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
}

// IdentityFromContext возвращает Identity запроса или nil для анонимного вызова.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, ok := ctx.Value(IdentityKey).(*models.Identity)
	if !ok {
		return nil
	}
	return id
}

// AuthMiddleware возвращает HTTP middleware, которое требует валидный JWT.
//
// Если токен валиден, кладёт Identity в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func AuthMiddleware(maker jwt.Maker, users UserProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			identity, ok := resolveIdentity(w, r, maker, users, log)
			if !ok {
				return
			}
			if identity == nil {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware пропускает запросы без заголовка Authorization как
// анонимные, но отклоняет запросы с некорректным токеном. Используется на
// публичных страницах, где авторизация лишь расширяет видимость контактов.
func OptionalAuthMiddleware(maker jwt.Maker, users UserProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.OptionalAuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			identity, ok := resolveIdentity(w, r, maker, users, log)
			if !ok {
				return
			}
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentity разбирает заголовок Authorization. Возвращает (nil, true)
// при отсутствии заголовка и (nil, false), если ответ уже записан.
func resolveIdentity(w http.ResponseWriter, r *http.Request,
	maker jwt.Maker, users UserProvider, log *slog.Logger) (*models.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, true
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("invalid authorization header format")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing or invalid authorization header"))
		return nil, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := maker.ParseToken(tokenStr)
	if err != nil {
		log.Error("invalid or expired token", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return nil, false
	}

	user, err := users.GetUserByUID(r.Context(), claims.UserUID)
	if err != nil {
		log.Error("failed to load user for token", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return nil, false
	}

	return &models.Identity{
		UserUID:          user.UID,
		Role:             user.Role,
		IsPremium:        user.IsPremium,
		PremiumExpiresAt: user.PremiumExpiresAt,
	}, true
}
