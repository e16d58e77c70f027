package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/pagination"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает выборку уроков.
type Service interface {
	List(ctx context.Context, id access.Identity, page models.PageRequest) ([]models.Lesson, int, error)
}

// Handler обработчик списка уроков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка уроков.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список уроков
// @Description Обычный пользователь видит только свои уроки, модератор и администратор видят все.
// @Tags Lessons
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param page_size query int false "Размер страницы (не больше 100)" default(10)
// @Success 200 {object} response.Response{data=models.Page[models.Lesson]} "Страница уроков"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Некорректный номер страницы"
// @Router /lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, ok := middlewarectx.IdentityFrom(r.Context())
	if !ok {
		log.Error("identity not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgUnauthenticated))
		return
	}

	page, err := pagination.Parse(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	lessons, total, err := h.service.List(r.Context(), id, page)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(pagination.Build(r, page, total, lessons)))
}
