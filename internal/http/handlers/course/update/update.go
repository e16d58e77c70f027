package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/request"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/lib/validate"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает обновление курса.
type Service interface {
	Update(ctx context.Context, id access.Identity, courseID int64, patch models.CoursePatch) (*models.Course, error)
}

// Handler обработчик PUT и PATCH курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	partial  bool
}

// New создаёт обработчик полного обновления (PUT).
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// NewPartial создаёт обработчик частичного обновления (PATCH).
func NewPartial(log *slog.Logger, service Service) *Handler {
	h := New(log, service)
	h.partial = true
	return h
}

// ServeHTTP godoc
// @Summary Обновить курс по ID
// @Description PUT заменяет все поля курса, PATCH меняет только переданные. Доступно владельцу, модератору и администратору.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Param request body models.CourseRequest true "Данные курса"
// @Success 200 {object} response.Response{data=models.Course} "Курс обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /courses/{id} [put]
// @Router /courses/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.update"

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

	var patch models.CoursePatch
	if h.partial {
		if err = render.DecodeJSON(r.Body, &patch); err != nil {
			response.RenderDecodeError(w, r, log, err)
			return
		}
		err = h.validate.Struct(patch)
	} else {
		var req models.CourseRequest
		if err = render.DecodeJSON(r.Body, &req); err != nil {
			response.RenderDecodeError(w, r, log, err)
			return
		}
		err = h.validate.Struct(req)
		patch = req.AsPatch()
	}
	if err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	course, err := h.service.Update(r.Context(), id, courseID, patch)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("course updated", slog.Int64("course_id", courseID))
	render.JSON(w, r, response.StatusOKWithData(course))
}
