package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/request"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает получение курса.
type Service interface {
	Get(ctx context.Context, id access.Identity, courseID int64) (*models.Course, error)
}

// Handler обработчик карточки курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик карточки курса.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить курс по ID
// @Description Возвращает курс с уроками. Ответ кешируется.
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.Course} "Курс"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

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

	courseID, err := request.ParamID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidID))
		return
	}

	course, err := h.service.Get(r.Context(), id, courseID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(course))
}
