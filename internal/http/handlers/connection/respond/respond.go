// Package respond реализует HTTP-обработчик ответа поставщика на заявку.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/response"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// Handler обрабатывает ответы на заявки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики ответа на заявку.
type Service interface {
	Respond(ctx context.Context, id models.Identity, requestID int, resp models.DummyConnectionResponse) (*models.ConnectionRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Ответить на заявку
// @Description Принимает или отклоняет pending-заявку. Повторный ответ невозможен.
// @Tags Connections
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Param request body models.DummyConnectionResponse true "Решение по заявке"
// @Success 200 {object} map[string]any "Ответ сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Отвечать может только поставщик заявки"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже в финальном статусе"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /connections/requests/{id}/respond [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.connection.respond"
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

	var req models.DummyConnectionResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Respond(r.Context(), *identity, requestID, req)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to respond to connection request", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("connection request answered", "request_id", res.ID, "status", res.Status)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": res,
	}))
}
