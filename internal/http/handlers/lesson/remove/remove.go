package remove

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
)

// Service описывает удаление урока.
type Service interface {
	Delete(ctx context.Context, id access.Identity, lessonID int64) error
}

// Handler обработчик удаления урока.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик удаления урока.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить урок по ID
// @Description Удаляет урок и сбрасывает кеш его курса. Только для администратора.
// @Tags Lessons
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID урока"
// @Success 204 "Урок удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Router /lessons/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.remove"

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

	if err = h.service.Delete(r.Context(), id, lessonID); err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("lesson deleted", slog.Int64("lesson_id", lessonID))
	w.WriteHeader(http.StatusNoContent)
}
