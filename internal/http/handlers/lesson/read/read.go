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

// Service описывает получение урока.
type Service interface {
	Get(ctx context.Context, id access.Identity, lessonID int64) (*models.Lesson, error)
}

// Handler обработчик получения урока.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик получения урока.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить урок по ID
// @Tags Lessons
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID урока"
// @Success 200 {object} response.Response{data=models.Lesson} "Урок"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Router /lessons/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.read"

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

	lesson, err := h.service.Get(r.Context(), id, lessonID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(lesson))
}
