// Package scheduler периодически ставит в очередь задачу деактивации
// неактивных пользователей.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Publisher публикует задачи в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service планировщик фоновых задач.
type Service struct {
	publisher Publisher
	interval  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(publisher Publisher, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		publisher: publisher,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Run ставит задачу сразу и затем каждые interval, пока не отменён ctx.
func (s *Service) Run(ctx context.Context) {
	s.enqueueSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.enqueueSweep(ctx)
		}
	}
}

func (s *Service) enqueueSweep(ctx context.Context) {
	job := models.DeactivateInactiveJob{RequestedAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, models.JobDeactivateInactive, job); err != nil {
		s.log.Error("failed to enqueue inactive users sweep", sl.Err(err))
		return
	}
	s.log.Info("inactive users sweep enqueued")
}
