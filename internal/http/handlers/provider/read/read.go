// Package read реализует HTTP-обработчик страницы поставщика.
//
// Страница публична: анонимный вызов получает карточку без контактов,
// авторизованный — столько, сколько разрешают правила видимости.
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

// Handler обрабатывает запросы страницы поставщика.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики страницы поставщика.
type Service interface {
	ProviderDetail(ctx context.Context, viewer *models.Identity, id int) (*profile.ProviderProfile, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страница поставщика
// @Description Возвращает профиль поставщика. Контакты видны владельцу, администратору, связанному арендатору и premium-пользователям.
// @Tags Providers
// @Produce json
// @Param id path int true "ID поставщика"
// @Success 200 {object} map[string]any "Профиль поставщика"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Поставщик не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /providers/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.provider.read"
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

	res, err := h.service.ProviderDetail(r.Context(), viewer, id)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to read provider profile", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("read provider profile", "provider_id", res.ID)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"provider": res,
	}))
}
