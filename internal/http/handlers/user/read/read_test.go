package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Profile(ctx context.Context, id access.Identity, userID int64) (any, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	me := access.Identity{UserID: 1, Role: access.RoleUser}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
		absent         string
	}{
		{
			name: "свой профиль с платежами",
			url:  "/users/1",
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, me, int64(1)).Return(models.OwnerProfile{
					ID: 1, LastName: "Petrov", Payments: []models.Payment{},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"payments":[]`,
		},
		{
			name: "чужой профиль без фамилии",
			url:  "/users/2",
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, me, int64(2)).Return(models.PublicProfile{ID: 2, FirstName: "Anna"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"first_name":"Anna"`,
			absent:         `"last_name"`,
		},
		{
			name: "пользователь не найден",
			url:  "/users/3",
			setupMock: func(m *MockService) {
				m.On("Profile", mock.Anything, me, int64(3)).Return(nil, errdefs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Get("/users/{id}", New(logger, svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), me))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			if tt.absent != "" {
				assert.NotContains(t, rr.Body.String(), tt.absent)
			}
			svc.AssertExpectations(t)
		})
	}
}
