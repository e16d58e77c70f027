package status

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

// Service описывает сверку статуса платежа.
type Service interface {
	Status(ctx context.Context, id access.Identity, paymentID int64) (*models.PaymentStatusResult, error)
}

// Handler обработчик статуса платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик статуса платежа.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус платежа
// @Description Запрашивает сессию оплаты у Stripe и обновляет статус платежа.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID платежа"
// @Success 200 {object} response.Response{data=models.PaymentStatusResult} "Состояние сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 422 {object} response.ErrorResponse "У платежа нет сессии оплаты"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /payments/{id}/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"

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

	paymentID, err := request.ParamID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidID))
		return
	}

	res, err := h.service.Status(r.Context(), id, paymentID)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
