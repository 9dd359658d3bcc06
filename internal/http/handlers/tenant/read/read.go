// Package read реализует HTTP-обработчик страницы арендатора.
//
// Телефон арендатора никогда не показывается поставщикам — даже связанным
// или premium; правила видимости применяет бизнес-логика.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/response"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
	"github.com/magabrotheeeer/tiffin-connect/internal/services/profile"
)

// Handler обрабатывает запросы страницы арендатора.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики страницы арендатора.
type Service interface {
	TenantDetail(ctx context.Context, viewer *models.Identity, id int) (*profile.TenantProfile, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страница арендатора
// @Description Возвращает профиль арендатора с контактами по правилам видимости.
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID арендатора"
// @Success 200 {object} map[string]any "Профиль арендатора"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Арендатор не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /tenants/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tenant.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	viewer := middlewarectx.IdentityFromContext(r.Context())
	if viewer == nil {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.TenantDetail(r.Context(), viewer, id)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to read tenant profile", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("read tenant profile", "tenant_id", res.ID)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tenant": res,
	}))
}
