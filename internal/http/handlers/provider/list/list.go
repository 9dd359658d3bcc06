// Package list реализует HTTP-обработчик публичного каталога поставщиков.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/tiffin-connect/internal/http/response"
	"github.com/magabrotheeeer/tiffin-connect/internal/lib/sl"
	"github.com/magabrotheeeer/tiffin-connect/internal/services/profile"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler обрабатывает запросы каталога поставщиков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	ListProviders(ctx context.Context, limit, offset int) ([]profile.ProviderCard, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог поставщиков
// @Description Возвращает страницу карточек активных поставщиков без контактных данных.
// @Tags Providers
// @Produce json
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список поставщиков"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /providers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.provider.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pageParams(r)

	res, err := h.service.ListProviders(r.Context(), limit, offset)
	if err != nil {
		status, body := response.FromError(err)
		log.Error("failed to list providers", sl.Err(err))
		w.WriteHeader(status)
		render.JSON(w, r, body)
		return
	}

	log.Info("listed providers", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"providers": res,
		"count":     len(res),
	}))
}

// pageParams разбирает limit и offset из query-строки, ограничивая размер страницы.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
