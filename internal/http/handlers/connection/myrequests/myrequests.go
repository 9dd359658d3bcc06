// Package myrequests реализует HTTP-обработчик списка заявок текущего пользователя.
package myrequests

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tiffin-connect/internal/http/response"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/models"
)

// Handler обрабатывает запросы списка заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка заявок.
type Service interface {
	ListMine(ctx context.Context, id models.Identity) ([]*models.ConnectionRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мои заявки на знакомство
// @Description Возвращает заявки текущего пользователя: отправленные для арендатора, входящие для поставщика.
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Роль не имеет заявок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /connections/my-requests [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.connection.myrequests"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity := middlewarectx.IdentityFromContext(r.Context())
	if identity == nil {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.ListMine(r.Context(), *identity)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to list connection requests", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("listed connection requests", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"requests": res,
		"count":    len(res),
	}))
}
