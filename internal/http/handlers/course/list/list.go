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

// Service описывает выборку курсов.
type Service interface {
	List(ctx context.Context, id access.Identity, page models.PageRequest) ([]models.Course, int, error)
}

// Handler обработчик списка курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка курсов.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список курсов
// @Description Возвращает страницу курсов с уроками. Обычный пользователь видит только свои курсы.
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param page_size query int false "Размер страницы (не больше 100)" default(10)
// @Success 200 {object} response.Response{data=models.Page[models.Course]} "Страница курсов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Некорректный номер страницы"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

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

	courses, total, err := h.service.List(r.Context(), id, page)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(pagination.Build(r, page, total, courses)))
}
