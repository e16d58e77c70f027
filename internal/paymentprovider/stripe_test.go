package paymentprovider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
)

// fakeStripe отвечает на запросы Stripe API и запоминает формы запросов.
type fakeStripe struct {
	mu    sync.Mutex
	forms map[string]url.Values
	fail  string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(body))
	f.mu.Lock()
	f.forms[r.Method+" "+r.URL.Path] = form
	fail := f.fail
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail != "" && r.URL.Path == fail {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"No such price"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/products":
		_, _ = io.WriteString(w, `{"id":"prod_123","object":"product"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/prices":
		_, _ = io.WriteString(w, `{"id":"price_123","object":"price"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		_, _ = io.WriteString(w, `{"id":"cs_123","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_123","status":"open","payment_status":"unpaid"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_123":
		_, _ = io.WriteString(w, `{"id":"cs_123","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_123","status":"complete","payment_status":"paid"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"unknown route"}}`)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeStripe) {
	fake := &fakeStripe{forms: map[string]url.Values{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewClient("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend}), fake
}

func TestUnitAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"19.99", 1999},
		{"10", 1000},
		{"0.015", 1},
		{"123.456", 12345},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestClient_CreateCheckout(t *testing.T) {
	c, fake := newTestClient(t)

	checkout, err := c.CreateCheckout(context.Background(), CheckoutParams{
		ProductName: "Course: Go",
		Amount:      decimal.RequireFromString("19.99"),
		Currency:    "usd",
		SuccessURL:  "https://example.com/ok",
		CancelURL:   "https://example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, &Checkout{
		ProductID: "prod_123",
		PriceID:   "price_123",
		SessionID: "cs_123",
		URL:       "https://checkout.stripe.com/c/pay/cs_123",
	}, checkout)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "Course: Go", fake.forms["POST /v1/products"].Get("name"))
	price := fake.forms["POST /v1/prices"]
	assert.Equal(t, "1999", price.Get("unit_amount"))
	assert.Equal(t, "usd", price.Get("currency"))
	assert.Equal(t, "prod_123", price.Get("product"))
	session := fake.forms["POST /v1/checkout/sessions"]
	assert.Equal(t, "payment", session.Get("mode"))
	assert.Equal(t, "price_123", session.Get("line_items[0][price]"))
	assert.Equal(t, "1", session.Get("line_items[0][quantity]"))
	assert.Equal(t, "https://example.com/ok", session.Get("success_url"))
}

func TestClient_CreateCheckout_ProviderError(t *testing.T) {
	c, fake := newTestClient(t)
	fake.mu.Lock()
	fake.fail = "/v1/prices"
	fake.mu.Unlock()

	_, err := c.CreateCheckout(context.Background(), CheckoutParams{
		ProductName: "Lesson: Intro",
		Amount:      decimal.RequireFromString("5"),
		Currency:    "usd",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUpstream))

	var upstreamErr *errdefs.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "No such price", upstreamErr.Message)
}

func TestClient_RetrieveSession(t *testing.T) {
	c, _ := newTestClient(t)

	session, err := c.RetrieveSession(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", session.ID)
	assert.Equal(t, "complete", session.Status)
	assert.Equal(t, "paid", session.PaymentStatus)

	_, err = c.RetrieveSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, errdefs.ErrUpstream)
}
