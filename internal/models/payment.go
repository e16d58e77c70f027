package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы цели платежа.
const (
	TargetCourse = "course"
	TargetLesson = "lesson"
)

// Способы оплаты.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

// Статусы платежа.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusCanceled = "canceled"
)

// DefaultCurrency валюта платежа по умолчанию.
const DefaultCurrency = "usd"

// Payment платёж пользователя за курс или урок.
// После удаления цели ссылка на неё обнуляется, TargetType сохраняется.
type Payment struct {
	ID                int64           `json:"id" example:"1"`
	UserID            int64           `json:"user" example:"1"`
	TargetType        string          `json:"target_type" example:"course"`
	CourseID          *int64          `json:"course"`
	LessonID          *int64          `json:"lesson"`
	Amount            decimal.Decimal `json:"amount" swaggertype:"string" example:"19.99"`
	Currency          string          `json:"currency" example:"usd"`
	PaymentMethod     string          `json:"payment_method" example:"transfer"`
	PaidAt            time.Time       `json:"paid_at"`
	Status            string          `json:"status" example:"pending"`
	StripeProductID   string          `json:"stripe_product_id,omitempty"`
	StripePriceID     string          `json:"stripe_price_id,omitempty"`
	StripeSessionID   string          `json:"stripe_session_id,omitempty"`
	StripeCheckoutURL string          `json:"stripe_checkout_url,omitempty"`
}

// CheckoutRequest тело POST /payments/checkout. Должна быть указана ровно одна цель.
type CheckoutRequest struct {
	CourseID *int64          `json:"course_id" validate:"omitempty,gt=0" example:"1"`
	LessonID *int64          `json:"lesson_id" validate:"omitempty,gt=0"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"19.99"`
	Currency string          `json:"currency" validate:"omitempty,len=3" example:"usd"`
}

// CheckoutResult ответ POST /payments/checkout.
type CheckoutResult struct {
	Payment     Payment `json:"payment"`
	CheckoutURL string  `json:"checkout_url"`
}

// CheckoutSession состояние сессии оплаты у провайдера.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status" example:"complete"`
	PaymentStatus string `json:"payment_status" example:"paid"`
}

// PaymentStatusResult ответ GET /payments/{id}/status.
type PaymentStatusResult struct {
	Session       CheckoutSession `json:"session"`
	PaymentStatus string          `json:"payment_status" example:"paid"`
}

// Порядок сортировки списка платежей.
const (
	OrderPaidAtAsc  = "paid_at"
	OrderPaidAtDesc = "-paid_at"
)

// PaymentFilter фильтры списка платежей. UserID == nil означает все платежи.
type PaymentFilter struct {
	UserID        *int64
	CourseID      *int64
	LessonID      *int64
	PaymentMethod string
	Ordering      string
}
