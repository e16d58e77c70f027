package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_enqueueSweep(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		err  error
	}{
		{name: "published"},
		{name: "publish error is only logged", err: errors.New("broker down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(MockPublisher)
			pub.On("Publish", mock.Anything, models.JobDeactivateInactive,
				models.DeactivateInactiveJob{RequestedAt: fixed}).Return(tt.err).Once()

			svc := NewService(pub, time.Hour, newNoopLogger())
			svc.now = func() time.Time { return fixed }
			svc.enqueueSweep(context.Background())

			pub.AssertExpectations(t)
		})
	}
}

func TestService_Run(t *testing.T) {
	pub := new(MockPublisher)
	var (
		mu    sync.Mutex
		calls int
	)
	pub.On("Publish", mock.Anything, models.JobDeactivateInactive, mock.Anything).
		Run(func(mock.Arguments) {
			mu.Lock()
			calls++
			mu.Unlock()
		}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	svc := NewService(pub, 20*time.Millisecond, newNoopLogger())
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
