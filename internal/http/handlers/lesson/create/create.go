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

// Service описывает создание урока.
type Service interface {
	Create(ctx context.Context, id access.Identity, req models.LessonRequest) (*models.Lesson, error)
}

// Handler обработчик создания урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик создания урока.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать урок
// @Description Создаёт урок в существующем курсе. Ссылка на видео должна вести на YouTube. Только для администратора.
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.LessonRequest true "Данные урока"
// @Success 201 {object} response.Response{data=models.Lesson} "Урок создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /lessons [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.create"

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

	var req models.LessonRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	lesson, err := h.service.Create(r.Context(), id, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("lesson created", slog.Int64("lesson_id", lesson.ID), slog.Int64("course_id", lesson.CourseID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(lesson))
}
