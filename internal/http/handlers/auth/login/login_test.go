package login

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.TokenPair), args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход",
			body: `{"email":"user@example.com","password":"secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "user@example.com", "secret123").
					Return(models.TokenPair{Access: "a.b.c", Refresh: "d.e.f"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"access":"a.b.c","refresh":"d.e.f"}}`,
		},
		{
			name: "неверный пароль",
			body: `{"email":"user@example.com","password":"wrong"}`,
			setupMock: func(m *MockService) {
				m.On("Login", mock.Anything, "user@example.com", "wrong").
					Return(models.TokenPair{}, errdefs.ErrUnauthenticated)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthenticated"}`,
		},
		{
			name:           "нет пароля",
			body:           `{"email":"user@example.com"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field password is a required field","fields":{"password":"is a required field"}}`,
		},
		{
			name:           "некорректный JSON",
			body:           `[1,2]`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}
