package checkout

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

// Service описывает создание сессии оплаты.
type Service interface {
	Checkout(ctx context.Context, id access.Identity, req models.CheckoutRequest) (*models.CheckoutResult, error)
}

// Handler обработчик оплаты курса или урока.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт обработчик оплаты.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Оплатить курс или урок
// @Description Создаёт платёж в статусе pending и сессию Stripe Checkout.
// @Description Нужно указать ровно одно из course_id и lesson_id.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CheckoutRequest true "Цель и сумма платежа"
// @Success 201 {object} response.Response{data=models.CheckoutResult} "Ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс или урок не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

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

	var req models.CheckoutRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.RenderDecodeError(w, r, log, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.RenderValidationError(w, r, log, err)
		return
	}

	res, err := h.service.Checkout(r.Context(), id, req)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	log.Info("checkout session created",
		slog.Int64("payment_id", res.Payment.ID),
		slog.String("session_id", res.Payment.StripeSessionID),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
