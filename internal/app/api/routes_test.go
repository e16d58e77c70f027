package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/lib/jwt"
	"github.com/magabrotheeeer/online-learning/internal/models"
	authservice "github.com/magabrotheeeer/online-learning/internal/services/auth"
	subscriptionservice "github.com/magabrotheeeer/online-learning/internal/services/subscription"
)

type stubUsers struct{}

func (stubUsers) CreateUser(context.Context, *models.User) error { return nil }
func (stubUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, errdefs.ErrNotFound
}
func (stubUsers) GetUserByID(context.Context, int64) (*models.User, error) {
	return nil, errdefs.ErrNotFound
}
func (stubUsers) TouchLastLogin(context.Context, int64, time.Time) error { return nil }

type stubSubscriptions struct {
	subscribed map[int64]bool
}

func (s *stubSubscriptions) GetCourse(_ context.Context, id int64) (*models.Course, error) {
	if id != 1 {
		return nil, errdefs.ErrNotFound
	}
	return &models.Course{ID: 1}, nil
}

func (s *stubSubscriptions) CreateSubscription(_ context.Context, userID, _ int64) (bool, error) {
	if s.subscribed[userID] {
		return false, nil
	}
	s.subscribed[userID] = true
	return true, nil
}

func (s *stubSubscriptions) DeleteSubscription(_ context.Context, userID, _ int64) (bool, error) {
	if !s.subscribed[userID] {
		return false, nil
	}
	delete(s.subscribed, userID)
	return true, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T) (http.Handler, *jwt.MakerImpl) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("test-secret", time.Minute, time.Hour)

	svc := Services{
		Auth:         authservice.NewService(stubUsers{}, maker, logger),
		Subscription: subscriptionservice.NewService(&stubSubscriptions{subscribed: map[int64]bool{}}),
	}
	r := chi.NewRouter()
	RegisterRoutes(r, logger, svc, middlewarectx.NewRateLimiter(100, 100),
		pingerFunc(func(context.Context) error { return nil }))
	return r, maker
}

func TestRoutes_RequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/api/v1/courses", "/api/v1/lessons", "/api/v1/users", "/api/v1/payments"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRoutes_SubscribeToggle(t *testing.T) {
	router, maker := newTestRouter(t)
	token, err := maker.GenerateToken(5, "student@example.com", "user", jwt.TokenTypeAccess)
	require.NoError(t, err)

	toggle := func() string {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/1/subscribe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		return rr.Body.String()
	}

	assert.Contains(t, toggle(), `"is_subscribed":true`)
	assert.Contains(t, toggle(), `"is_subscribed":false`)
}

func TestRoutes_Infrastructure(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}
