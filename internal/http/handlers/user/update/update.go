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

// Service описывает изменение профиля.
type Service interface {
	Update(ctx context.Context, id access.Identity, userID int64, patch models.UserPatchRequest) (models.OwnerProfile, error)
}

// Handler обработчик PUT и PATCH профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	partial  bool
}

// New создаёт обработчик полного обновления профиля.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// NewPartial создаёт обработчик частичного обновления профиля.
func NewPartial(log *slog.Logger, service Service) *Handler {
	h := New(log, service)
	h.partial = true
	return h
}

// ServeHTTP godoc
// @Summary Обновить профиль
// @Description Менять можно только свой профиль. Email и пароль здесь не меняются.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body models.UserUpdateRequest true "Поля профиля"
// @Success 200 {object} response.Response{data=models.OwnerProfile} "Профиль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужой профиль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/{id} [put]
// @Router /users/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

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

	var patch models.UserPatchRequest
	if h.partial {
		if err = render.DecodeJSON(r.Body, &patch); err != nil {
			response.RenderDecodeError(w, r, log, err)
			return
		}
		err = h.validate.Struct(patch)
	} else {
		var req models.UserUpdateRequest
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

	profile, err := h.service.Update(r.Context(), id, userID, patch)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("profile updated", slog.Int64("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(profile))
}
