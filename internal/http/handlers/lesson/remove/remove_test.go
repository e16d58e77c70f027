package remove

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
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, id access.Identity, lessonID int64) error {
	args := m.Called(ctx, id, lessonID)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admin := access.Identity{UserID: 1, Role: access.RoleAdmin}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление урока",
			url:  "/lessons/3",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, admin, int64(3)).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "урок не найден",
			url:  "/lessons/4",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, admin, int64(4)).Return(errdefs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name: "нет прав",
			url:  "/lessons/5",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, admin, int64(5)).Return(errdefs.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:           "некорректный id",
			url:            "/lessons/0x1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode id from url"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Delete("/lessons/{id}", New(logger, svc).ServeHTTP)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), admin))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
		})
	}
}
