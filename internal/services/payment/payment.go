// Package payment содержит бизнес-логику оплаты курсов и уроков через
// Stripe Checkout и сверку статуса платежа с состоянием сессии.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/metrics"
	"github.com/magabrotheeeer/online-learning/internal/models"
	"github.com/magabrotheeeer/online-learning/internal/paymentprovider"
)

// Repository определяет методы хранилища, нужные сервису платежей.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	SetPaymentCheckout(ctx context.Context, p *models.Payment) error
	SetPaymentStatus(ctx context.Context, id int64, status string) error
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error)
}

// Provider платёжный провайдер.
type Provider interface {
	CreateCheckout(ctx context.Context, p paymentprovider.CheckoutParams) (*paymentprovider.Checkout, error)
	RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

// Options адреса возврата после оплаты и валюта по умолчанию.
type Options struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

// Service реализует создание и сверку платежей.
type Service struct {
	repo     Repository
	provider Provider
	opts     Options
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, provider Provider, opts Options, log *slog.Logger) *Service {
	if opts.Currency == "" {
		opts.Currency = models.DefaultCurrency
	}
	return &Service{
		repo:     repo,
		provider: provider,
		opts:     opts,
		log:      log,
	}
}

// Checkout создаёт ожидающий платёж и сессию оплаты у провайдера.
// При ошибке провайдера платёж остаётся в статусе pending без ссылки на оплату.
func (s *Service) Checkout(ctx context.Context, id access.Identity, req models.CheckoutRequest) (*models.CheckoutResult, error) {
	const op = "services.payment.Checkout"
	if err := validateCheckout(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &models.Payment{
		UserID:        id.UserID,
		Amount:        req.Amount,
		Currency:      strings.ToLower(req.Currency),
		PaymentMethod: models.PaymentMethodTransfer,
		Status:        models.PaymentStatusPending,
	}
	if p.Currency == "" {
		p.Currency = s.opts.Currency
	}

	var productName string
	if req.CourseID != nil {
		c, err := s.repo.GetCourse(ctx, *req.CourseID)
		if err != nil {
			return nil, fmt.Errorf("%s: course %d: %w", op, *req.CourseID, err)
		}
		p.TargetType = models.TargetCourse
		p.CourseID = &c.ID
		productName = "Course: " + c.Title
	} else {
		l, err := s.repo.GetLesson(ctx, *req.LessonID)
		if err != nil {
			return nil, fmt.Errorf("%s: lesson %d: %w", op, *req.LessonID, err)
		}
		p.TargetType = models.TargetLesson
		p.LessonID = &l.ID
		productName = "Lesson: " + l.Title
	}

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checkout, err := s.provider.CreateCheckout(ctx, paymentprovider.CheckoutParams{
		ProductName: productName,
		Amount:      p.Amount,
		Currency:    p.Currency,
		SuccessURL:  s.opts.SuccessURL,
		CancelURL:   s.opts.CancelURL,
	})
	metrics.CheckoutSessions.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("failed to create checkout session",
			slog.Int64("payment_id", p.ID),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.StripeProductID = checkout.ProductID
	p.StripePriceID = checkout.PriceID
	p.StripeSessionID = checkout.SessionID
	p.StripeCheckoutURL = checkout.URL
	if err = s.repo.SetPaymentCheckout(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.CheckoutResult{Payment: *p, CheckoutURL: checkout.URL}, nil
}

// Status запрашивает состояние сессии оплаты и обновляет статус платежа.
// Чужой платёж считается несуществующим.
func (s *Service) Status(ctx context.Context, id access.Identity, paymentID int64) (*models.PaymentStatusResult, error) {
	const op = "services.payment.Status"
	p, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.UserID != id.UserID {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	}
	if p.StripeSessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, errdefs.Validation("", "payment has no checkout session"))
	}

	session, err := s.provider.RetrieveSession(ctx, p.StripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := StatusFromSession(p.Status, session)
	if status != p.Status {
		if err = s.repo.SetPaymentStatus(ctx, p.ID, status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("payment status changed",
			slog.Int64("payment_id", p.ID),
			slog.String("from", p.Status),
			slog.String("to", status),
		)
	}

	return &models.PaymentStatusResult{Session: *session, PaymentStatus: status}, nil
}

// List возвращает платежи по фильтру. Без права видеть все платежи
// выборка ограничена платежами автора запроса.
func (s *Service) List(ctx context.Context, id access.Identity, f models.PaymentFilter) ([]models.Payment, error) {
	const op = "services.payment.List"
	if !access.Can(id.Role, access.ActionListAllPayments) {
		f.UserID = &id.UserID
	}
	payments, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// StatusFromSession вычисляет статус платежа по состоянию сессии оплаты.
// Прочие состояния сессии статус не меняют.
func StatusFromSession(current string, session *models.CheckoutSession) string {
	switch {
	case session.Status == "complete" && session.PaymentStatus == "paid":
		return models.PaymentStatusPaid
	case session.Status == "expired" || session.Status == "canceled":
		return models.PaymentStatusCanceled
	default:
		return current
	}
}

func validateCheckout(req models.CheckoutRequest) error {
	if (req.CourseID == nil) == (req.LessonID == nil) {
		return errdefs.Validation("", "exactly one of course_id or lesson_id is required")
	}
	if !req.Amount.IsPositive() {
		return errdefs.Validation("amount", "must be greater than 0")
	}
	if !req.Amount.Equal(req.Amount.Truncate(2)) {
		return errdefs.Validation("amount", "must have at most 2 decimal places")
	}
	if req.Amount.GreaterThanOrEqual(maxAmount) {
		return errdefs.Validation("amount", "must be less than 10000000000")
	}
	return nil
}

// maxAmount верхняя граница суммы для столбца NUMERIC(12, 2).
var maxAmount = decimal.NewFromInt(10_000_000_000)
