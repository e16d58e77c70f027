// Package paymentprovider оборачивает Stripe Checkout: создание товара,
// цены и сессии оплаты, а также получение состояния сессии.
// Ошибки Stripe возвращаются как errdefs.UpstreamError.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

const providerName = "stripe"

// CheckoutParams параметры создания сессии оплаты.
type CheckoutParams struct {
	ProductName string
	Amount      decimal.Decimal
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Checkout идентификаторы созданных у провайдера объектов.
type Checkout struct {
	ProductID string
	PriceID   string
	SessionID string
	URL       string
}

// Client клиент Stripe.
type Client struct {
	api *client.API
}

// NewClient создаёт клиент Stripe с секретным ключом. backends == nil
// означает стандартные адреса API.
func NewClient(secretKey string, backends *stripe.Backends) *Client {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Client{api: api}
}

// UnitAmount переводит сумму в минимальные единицы валюты, отбрасывая дробную часть.
func UnitAmount(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// CreateCheckout создаёт товар, цену и сессию оплаты с одной позицией.
func (c *Client) CreateCheckout(ctx context.Context, p CheckoutParams) (*Checkout, error) {
	const op = "paymentprovider.CreateCheckout"

	productParams := &stripe.ProductParams{Name: stripe.String(p.ProductName)}
	productParams.Context = ctx
	product, err := c.api.Products.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("%s: create product: %w", op, upstream(err))
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(product.ID),
		Currency:   stripe.String(p.Currency),
		UnitAmount: stripe.Int64(UnitAmount(p.Amount)),
	}
	priceParams.Context = ctx
	price, err := c.api.Prices.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("%s: create price: %w", op, upstream(err))
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	sessionParams.Context = ctx
	session, err := c.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("%s: create session: %w", op, upstream(err))
	}

	return &Checkout{
		ProductID: product.ID,
		PriceID:   price.ID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// RetrieveSession возвращает текущее состояние сессии оплаты.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	const op = "paymentprovider.RetrieveSession"

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, upstream(err))
	}
	return &models.CheckoutSession{
		ID:            session.ID,
		URL:           session.URL,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
	}, nil
}

// upstream превращает ошибку Stripe или транспорта в errdefs.UpstreamError.
func upstream(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &errdefs.UpstreamError{Provider: providerName, Message: stripeErr.Msg}
	}
	return &errdefs.UpstreamError{Provider: providerName, Message: err.Error()}
}
