package list

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

	"github.com/magabrotheeeer/online-learning/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, page models.PageRequest) ([]models.PublicProfile, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.PublicProfile), args.Int(1), args.Error(2)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
		absent         string
	}{
		{
			name: "публичные профили",
			url:  "/users?page_size=500",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, models.PageRequest{Page: 1, PageSize: models.MaxPageSize}).
					Return([]models.PublicProfile{{ID: 1, Email: "a@example.com", FirstName: "Anna"}}, 1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"first_name":"Anna"`,
			absent:         `"last_name"`,
		},
		{
			name: "ошибка хранилища",
			url:  "/users",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, models.PageRequest{Page: 1, PageSize: models.DefaultPageSize}).
					Return(nil, 0, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rr := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			if tt.absent != "" {
				assert.NotContains(t, rr.Body.String(), tt.absent)
			}
			svc.AssertExpectations(t)
		})
	}
}
