package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/lib/validate"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает обновление access токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Handler обработчик обновления токена.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик обновления токена.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление access токена
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RefreshRequest true "Refresh токен"
// @Success 200 {object} response.Response{data=models.TokenPair} "Новый access токен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/token/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RefreshRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(pair))
}
