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
)

// Service описывает получение профиля.
type Service interface {
	Profile(ctx context.Context, id access.Identity, userID int64) (any, error)
}

// Handler обработчик профиля пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик профиля.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Свой профиль возвращается полностью вместе с платежами, чужой в публичном виде.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response{data=models.OwnerProfile} "Профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read"

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

	userID, err := request.ParamID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidID))
		return
	}

	profile, err := h.service.Profile(r.Context(), id, userID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(profile))
}
