package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
)

// AuthenticatorMock мок для Authenticator
type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Authenticate(ctx context.Context, token string) (access.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(access.Identity), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	want := access.Identity{UserID: 7, Email: "user@example.com", Role: access.RoleModerator}

	tests := []struct {
		name           string
		authHeader     string
		mockID         access.Identity
		mockErr        error
		callMock       bool
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token rejected",
			authHeader:     "Bearer badtoken",
			mockErr:        errors.New("token is expired"),
			callMock:       true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockID:         want,
			callMock:       true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthenticatorMock)
			if tt.callMock {
				authMock.On("Authenticate", mock.Anything, tt.authHeader[len("Bearer "):]).Return(tt.mockID, tt.mockErr)
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				id, ok := middlewarectx.IdentityFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, want, id)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			middlewarectx.JWTMiddleware(authMock, newNoopLogger())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			if !tt.wantCalled {
				assert.JSONEq(t, `{"status":"Error","error":"unauthenticated"}`, rr.Body.String())
			}
			authMock.AssertExpectations(t)
		})
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	_, ok := middlewarectx.IdentityFrom(context.Background())
	assert.False(t, ok)
}
