package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/http/request"
	"github.com/magabrotheeeer/online-learning/internal/http/response"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Service описывает выборку платежей.
type Service interface {
	List(ctx context.Context, id access.Identity, f models.PaymentFilter) ([]models.Payment, error)
}

// Handler обработчик списка платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт обработчик списка платежей.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Пользователь видит свои платежи, администратор все.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param course query int false "ID курса"
// @Param lesson query int false "ID урока"
// @Param payment_method query string false "Способ оплаты" Enums(cash, transfer)
// @Param ordering query string false "Сортировка по дате оплаты" Enums(paid_at, -paid_at) default(-paid_at)
// @Success 200 {object} response.Response{data=[]models.Payment} "Платежи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Некорректный фильтр"
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

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

	f, err := parseFilter(r)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}

	payments, err := h.service.List(r.Context(), id, f)
	if err != nil {
		response.RenderError(w, r, log, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	render.JSON(w, r, response.StatusOKWithData(payments))
}

func parseFilter(r *http.Request) (models.PaymentFilter, error) {
	q := r.URL.Query()
	f := models.PaymentFilter{Ordering: models.OrderPaidAtDesc}

	var err error
	if f.CourseID, err = request.QueryID(r, "course"); err != nil {
		return f, errdefs.Validation("course", "must be an integer")
	}
	if f.LessonID, err = request.QueryID(r, "lesson"); err != nil {
		return f, errdefs.Validation("lesson", "must be an integer")
	}

	switch m := q.Get("payment_method"); m {
	case "", models.PaymentMethodCash, models.PaymentMethodTransfer:
		f.PaymentMethod = m
	default:
		return f, errdefs.Validation("payment_method", "must be one of cash, transfer")
	}

	switch o := q.Get("ordering"); o {
	case "":
	case models.OrderPaidAtAsc, models.OrderPaidAtDesc:
		f.Ordering = o
	default:
		return f, errdefs.Validation("ordering", "must be one of paid_at, -paid_at")
	}
	return f, nil
}
