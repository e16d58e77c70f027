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

// Service описывает обновление урока.
type Service interface {
	Update(ctx context.Context, id access.Identity, lessonID int64, patch models.LessonPatch) (*models.Lesson, error)
}

// Handler обработчик PUT и PATCH урока.
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
// @Summary Обновить урок по ID
// @Description PUT заменяет все поля урока, PATCH меняет только переданные. При смене курса урок переносится.
// @Description Подписчики курса получают письмо не чаще раза в окно уведомлений.
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID урока"
// @Param request body models.LessonRequest true "Данные урока"
// @Success 200 {object} response.Response{data=models.Lesson} "Урок обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Урок или курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /lessons/{id} [put]
// @Router /lessons/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.update"

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

	lessonID, err := request.ParamID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidID))
		return
	}

	var patch models.LessonPatch
	if h.partial {
		if err = render.DecodeJSON(r.Body, &patch); err != nil {
			response.RenderDecodeError(w, r, log, err)
			return
		}
		err = h.validate.Struct(patch)
	} else {
		var req models.LessonRequest
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

	lesson, err := h.service.Update(r.Context(), id, lessonID, patch)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("lesson updated", slog.Int64("lesson_id", lessonID))
	render.JSON(w, r, response.StatusOKWithData(lesson))
}
