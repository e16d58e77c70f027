package login

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

// Service описывает выдачу пары токенов.
type Service interface {
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
}

// Handler обработчик получения токенов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик получения токенов.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль активного пользователя и возвращает access и refresh токены
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.LoginRequest true "Учётные данные"
// @Success 200 {object} response.Response{data=models.TokenPair} "Пара токенов"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учётные данные или пользователь неактивен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("tokens issued")
	render.JSON(w, r, response.StatusOKWithData(pair))
}
