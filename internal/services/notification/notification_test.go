package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/smtp"
	"github.com/magabrotheeeer/online-learning/internal/metrics"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockRepository) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockRepository) SubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPFrom() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jobBody(t *testing.T) []byte {
	body, err := json.Marshal(models.CourseUpdateJob{CourseID: 1, LessonID: 2})
	require.NoError(t, err)
	return body
}

func TestHandleCourseUpdate_SendsOneMessageToAll(t *testing.T) {
	repo := new(MockRepository)
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferWriter{}

	repo.On("GetCourse", mock.Anything, int64(1)).Return(&models.Course{ID: 1, Title: "Go"}, nil)
	repo.On("GetLesson", mock.Anything, int64(2)).Return(&models.Lesson{ID: 2, Title: "Channels"}, nil)
	repo.On("SubscriberEmails", mock.Anything, int64(1)).Return([]string{"a@example.com", "b@example.com"}, nil)
	transport.On("GetSMTPFrom").Return("noreply@lms.test")
	transport.On("Connect").Return(client, nil)
	client.On("Mail", "noreply@lms.test").Return(nil)
	client.On("Rcpt", "a@example.com").Return(nil).Once()
	client.On("Rcpt", "b@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	before := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(metrics.ResultOK))
	svc := NewService(repo, transport, newLogger())
	require.NoError(t, svc.HandleCourseUpdate(context.Background(), jobBody(t)))

	msg := writer.String()
	assert.Contains(t, msg, "Subject: Course \"Go\" updated")
	assert.Contains(t, msg, "To: undisclosed-recipients:;")
	assert.Contains(t, msg, "Lesson \"Channels\"")
	assert.NotContains(t, msg, "a@example.com")
	assert.True(t, writer.closed)
	client.AssertNumberOfCalls(t, "Data", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(metrics.ResultOK))-before)
}

func TestHandleCourseUpdate_Skips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *MockRepository)
	}{
		{
			name: "course deleted",
			setup: func(r *MockRepository) {
				r.On("GetCourse", mock.Anything, int64(1)).Return(nil, errdefs.ErrNotFound)
			},
		},
		{
			name: "lesson deleted",
			setup: func(r *MockRepository) {
				r.On("GetCourse", mock.Anything, int64(1)).Return(&models.Course{ID: 1}, nil)
				r.On("GetLesson", mock.Anything, int64(2)).Return(nil, errdefs.ErrNotFound)
			},
		},
		{
			name: "no subscribers",
			setup: func(r *MockRepository) {
				r.On("GetCourse", mock.Anything, int64(1)).Return(&models.Course{ID: 1}, nil)
				r.On("GetLesson", mock.Anything, int64(2)).Return(&models.Lesson{ID: 2}, nil)
				r.On("SubscriberEmails", mock.Anything, int64(1)).Return([]string{}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			transport := new(MockTransport)
			tt.setup(repo)

			err := NewService(repo, transport, newLogger()).HandleCourseUpdate(context.Background(), jobBody(t))
			require.NoError(t, err)
			transport.AssertNotCalled(t, "Connect")
		})
	}
}

func TestHandleCourseUpdate_Failures(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockTransport), newLogger())
		assert.Error(t, svc.HandleCourseUpdate(context.Background(), []byte("{")))
	})

	t.Run("smtp connect failure", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)
		repo.On("GetCourse", mock.Anything, int64(1)).Return(&models.Course{ID: 1, Title: "Go"}, nil)
		repo.On("GetLesson", mock.Anything, int64(2)).Return(&models.Lesson{ID: 2}, nil)
		repo.On("SubscriberEmails", mock.Anything, int64(1)).Return([]string{"a@example.com"}, nil)
		transport.On("GetSMTPFrom").Return("noreply@lms.test")
		transport.On("Connect").Return(nil, errors.New("connection refused"))

		before := testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(metrics.ResultError))
		err := NewService(repo, transport, newLogger()).HandleCourseUpdate(context.Background(), jobBody(t))
		assert.ErrorContains(t, err, "connection refused")
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues(metrics.ResultError))-before)
	})

	t.Run("recipient rejected", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)
		client := new(MockSMTPClient)
		repo.On("GetCourse", mock.Anything, int64(1)).Return(&models.Course{ID: 1, Title: "Go"}, nil)
		repo.On("GetLesson", mock.Anything, int64(2)).Return(&models.Lesson{ID: 2}, nil)
		repo.On("SubscriberEmails", mock.Anything, int64(1)).Return([]string{"bad@example.com"}, nil)
		transport.On("GetSMTPFrom").Return("noreply@lms.test")
		transport.On("Connect").Return(client, nil)
		client.On("Mail", "noreply@lms.test").Return(nil)
		client.On("Rcpt", "bad@example.com").Return(errors.New("550 no such user"))
		client.On("Close").Return(nil)

		err := NewService(repo, transport, newLogger()).HandleCourseUpdate(context.Background(), jobBody(t))
		assert.Error(t, err)
		client.AssertNotCalled(t, "Data")
		client.AssertCalled(t, "Close")
	})
}
