package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/validate"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает создание курса.
type Service interface {
	Create(ctx context.Context, id access.Identity, req models.CourseRequest) (*models.Course, error)
}

// Handler обработчик создания курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик создания курса.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать курс
// @Description Создаёт курс, владельцем становится автор запроса. Доступно только администратору.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CourseRequest true "Данные курса"
// @Success 201 {object} response.Response{data=models.Course} "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

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

	var req models.CourseRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	course, err := h.service.Create(r.Context(), id, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("course created", slog.Int64("course_id", course.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(course))
}
