package update

import (
	"bytes"
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

func (m *MockService) Update(ctx context.Context, id access.Identity, userID int64, patch models.UserPatchRequest) (models.OwnerProfile, error) {
	args := m.Called(ctx, id, userID, patch)
	return args.Get(0).(models.OwnerProfile), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	me := access.Identity{UserID: 1, Role: access.RoleUser}

	tests := []struct {
		name           string
		method         string
		url            string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "PATCH меняет город",
			method: http.MethodPatch,
			url:    "/users/1",
			body:   `{"city":"Kazan"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, me, int64(1), mock.MatchedBy(func(p models.UserPatchRequest) bool {
					return p.City != nil && *p.City == "Kazan" && p.FirstName == nil
				})).Return(models.OwnerProfile{ID: 1, City: "Kazan", Payments: []models.Payment{}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"city":"Kazan"`,
		},
		{
			name:   "PUT очищает непереданные поля",
			method: http.MethodPut,
			url:    "/users/1",
			body:   `{"first_name":"Ivan"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, me, int64(1), mock.MatchedBy(func(p models.UserPatchRequest) bool {
					return *p.FirstName == "Ivan" && p.City != nil && *p.City == ""
				})).Return(models.OwnerProfile{ID: 1, FirstName: "Ivan", Payments: []models.Payment{}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"first_name":"Ivan"`,
		},
		{
			name:   "чужой профиль",
			method: http.MethodPatch,
			url:    "/users/2",
			body:   `{"city":"Kazan"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, me, int64(2), mock.Anything).Return(models.OwnerProfile{}, errdefs.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:           "аватар не ссылка",
			method:         http.MethodPatch,
			url:            "/users/1",
			body:           `{"avatar":"not a url"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"avatar":"must be a valid url"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Put("/users/{id}", New(logger, svc).ServeHTTP)
			r.Patch("/users/{id}", NewPartial(logger, svc).ServeHTTP)

			req := httptest.NewRequest(tt.method, tt.url, bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), me))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
