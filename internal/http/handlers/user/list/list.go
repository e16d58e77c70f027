package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/http/pagination"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает выборку пользователей.
type Service interface {
	List(ctx context.Context, page models.PageRequest) ([]models.PublicProfile, int, error)
}

// Handler обработчик списка пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка пользователей.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает публичные профили без фамилии и истории платежей.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param page_size query int false "Размер страницы (не больше 100)" default(10)
// @Success 200 {object} response.Response{data=models.Page[models.PublicProfile]} "Страница пользователей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Некорректный номер страницы"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := pagination.Parse(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	users, total, err := h.service.List(r.Context(), page)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(pagination.Build(r, page, total, users)))
}
