package subscribe

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/request"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает переключение подписки.
type Service interface {
	Toggle(ctx context.Context, userID, courseID int64) (models.ToggleResult, error)
}

// Handler обработчик подписки на обновления курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик подписки.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подписаться или отписаться от курса
// @Description Если подписки нет, она создаётся. Если есть, удаляется.
// @Tags Courses
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID курса"
// @Success 200 {object} response.Response{data=models.ToggleResult} "Новое состояние подписки"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Router /courses/{id}/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.subscribe"

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

	res, err := h.service.Toggle(r.Context(), id.UserID, courseID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("subscription toggled",
		slog.Int64("course_id", courseID),
		slog.Bool("is_subscribed", res.IsSubscribed),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}
