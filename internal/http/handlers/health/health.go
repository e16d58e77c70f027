// Package health отдаёт состояние сервиса для проб оркестратора.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

const pingTimeout = 2 * time.Second

// Pinger проверяет соединение с зависимостью.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обработчик /healthz.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создаёт обработчик /healthz.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{log: log, db: db}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /healthz [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("database ping failed", slog.String("op", "handlers.health"), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, response.Response{Status: response.StatusOK})
}
