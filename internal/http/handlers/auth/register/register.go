package register

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

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
}

// Handler обработчик регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик регистрации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация нового пользователя
// @Description Создает активного пользователя по email и паролю. Email используется как логин.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.RegisterRequest true "Данные нового пользователя"
// @Success 201 {object} response.Response{data=models.OwnerProfile} "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при регистрации"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(user.OwnerView(nil)))
}
