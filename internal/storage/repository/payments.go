package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

const paymentColumns = `id, user_id, target_type, course_id, lesson_id, amount::TEXT, currency,
	payment_method, paid_at, status, stripe_product_id, stripe_price_id,
	stripe_session_id, stripe_checkout_url`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p        models.Payment
		courseID sql.NullInt64
		lessonID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.TargetType, &courseID, &lessonID, &p.Amount,
		&p.Currency, &p.PaymentMethod, &p.PaidAt, &p.Status, &p.StripeProductID,
		&p.StripePriceID, &p.StripeSessionID, &p.StripeCheckoutURL); err != nil {
		return nil, err
	}
	p.CourseID = nullInt64(courseID)
	p.LessonID = nullInt64(lessonID)
	return &p, nil
}

// CreatePayment сохраняет платёж и заполняет ID и paid_at.
// Платёж должен ссылаться ровно на одну цель.
func (s *Storage) CreatePayment(ctx context.Context, p *models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_id, target_type, course_id, lesson_id, amount,
			      currency, payment_method, status)
			  VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8)
			  RETURNING id, paid_at`
	if err := s.DB.QueryRowContext(ctx, query,
		p.UserID, p.TargetType, p.CourseID, p.LessonID, p.Amount.StringFixed(2),
		p.Currency, p.PaymentMethod, p.Status,
	).Scan(&p.ID, &p.PaidAt); err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetPayment возвращает платёж по ID.
func (s *Storage) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPayment(s.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// SetPaymentCheckout записывает идентификаторы объектов провайдера и ссылку на оплату.
func (s *Storage) SetPaymentCheckout(ctx context.Context, p *models.Payment) error {
	const op = "storage.SetPaymentCheckout"

	query := `UPDATE payments
			  SET stripe_product_id = $1, stripe_price_id = $2,
			      stripe_session_id = $3, stripe_checkout_url = $4
			  WHERE id = $5`
	res, err := s.DB.ExecContext(ctx, query, p.StripeProductID, p.StripePriceID,
		p.StripeSessionID, p.StripeCheckoutURL, p.ID)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// SetPaymentStatus меняет статус платежа.
func (s *Storage) SetPaymentStatus(ctx context.Context, id int64, status string) error {
	const op = "storage.SetPaymentStatus"

	res, err := s.DB.ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// ListPayments возвращает платежи по фильтру, упорядоченные по paid_at.
func (s *Storage) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.CourseID != nil {
		add("course_id = $%d", *f.CourseID)
	}
	if f.LessonID != nil {
		add("lesson_id = $%d", *f.LessonID)
	}
	if f.PaymentMethod != "" {
		add("payment_method = $%d", f.PaymentMethod)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Ordering == models.OrderPaidAtAsc {
		query += " ORDER BY paid_at ASC, id ASC"
	} else {
		query += " ORDER BY paid_at DESC, id DESC"
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
