// Package read реализует HTTP-обработчик получения заявки по ID.
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
)

// Handler обрабатывает запросы на получение заявки по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения заявки.
type Service interface {
	GetByID(ctx context.Context, id models.Identity, requestID int) (*models.ConnectionRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить заявку по ID
// @Description Возвращает заявку её стороне или администратору.
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Success 200 {object} map[string]any "Заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Заявка принадлежит другим сторонам"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /connections/requests/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.connection.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requestID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.GetByID(r.Context(), *identity, requestID)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to read connection request", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("read connection request", "request_id", res.ID)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": res,
	}))
}
