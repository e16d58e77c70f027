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

func (m *MockService) Update(ctx context.Context, id access.Identity, lessonID int64, patch models.LessonPatch) (*models.Lesson, error) {
	args := m.Called(ctx, id, lessonID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	moderator := access.Identity{UserID: 4, Role: access.RoleModerator}

	tests := []struct {
		name           string
		method         string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "PATCH переносит урок в другой курс",
			method: http.MethodPatch,
			body:   `{"course":2}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, moderator, int64(10), mock.MatchedBy(func(p models.LessonPatch) bool {
					return p.CourseID != nil && *p.CourseID == 2 && p.Title == nil && p.VideoURL == nil
				})).Return(&models.Lesson{ID: 10, CourseID: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"course":2`,
		},
		{
			name:   "PUT с полным набором полей",
			method: http.MethodPut,
			body:   `{"course":1,"title":"Select","video_url":"https://www.youtube.com/watch?v=1"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, moderator, int64(10), mock.MatchedBy(func(p models.LessonPatch) bool {
					return p.Title != nil && *p.Title == "Select" && p.Description != nil && *p.Description == ""
				})).Return(&models.Lesson{ID: 10, CourseID: 1, Title: "Select"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Select"`,
		},
		{
			name:           "PATCH со ссылкой не на YouTube",
			method:         http.MethodPatch,
			body:           `{"video_url":"https://example.com/v.mp4"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"video_url":"only YouTube links are allowed"`,
		},
		{
			name:   "новый курс не существует",
			method: http.MethodPatch,
			body:   `{"course":99}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, moderator, int64(10), mock.Anything).Return(nil, errdefs.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"not found"}`,
		},
		{
			name:           "битый JSON",
			method:         http.MethodPut,
			body:           `{"course":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Put("/lessons/{id}", New(logger, svc).ServeHTTP)
			r.Patch("/lessons/{id}", NewPartial(logger, svc).ServeHTTP)

			req := httptest.NewRequest(tt.method, "/lessons/10", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithIdentity(req.Context(), moderator))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
