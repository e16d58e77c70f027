// Package worker обрабатывает фоновые задачи из RabbitMQ: рассылку об
// обновлении курса и деактивацию неактивных пользователей.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/lib/smtp"
	notificationservice "github.com/magabrotheeeer/online-learning/internal/services/notification"
	userservice "github.com/magabrotheeeer/online-learning/internal/services/user"
	"github.com/magabrotheeeer/online-learning/internal/storage/repository"
)

const (
	dbConnectAttempts = 10
	dbConnectDelay    = 3 * time.Second
)

// App воркер фоновых задач.
type App struct {
	conn         *amqp.Connection
	ch           *amqp.Channel
	db           *repository.Storage
	notification *notificationservice.Service
	users        *userservice.Service
	logger       *slog.Logger
}

// New подключается к базе и брокеру и собирает обработчики задач.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.worker.New"

	db, err := repository.Connect(ctx, cfg.StorageConnectionString, dbConnectAttempts, dbConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.GetTaskQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:         conn,
		ch:           ch,
		db:           db,
		notification: notificationservice.NewService(db, transport, logger),
		users:        userservice.NewService(db, cfg.InactivityPeriod, logger),
		logger:       logger,
	}, nil
}

// Run запускает потребителей обеих очередей и ждёт отмены ctx.
// После отмены дожидается уже начатых обработчиков.
func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler rabbitmq.Handler
	}{
		{queue: rabbitmq.QueueCourseUpdate, handler: a.notification.HandleCourseUpdate},
		{queue: rabbitmq.QueueDeactivateInactive, handler: a.users.HandleDeactivateInactive},
	}

	var running []*sync.WaitGroup
	for _, c := range consumers {
		wg, err := rabbitmq.ConsumerMessage(ctx, a.ch, c.queue, a.logger, c.handler)
		if err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", c.queue), sl.Err(err))
			a.close()
			return err
		}
		a.logger.Info("consumer started", slog.String("queue", c.queue))
		running = append(running, wg)
	}

	<-ctx.Done()
	a.logger.Info("worker shutting down gracefully")
	for _, wg := range running {
		wg.Wait()
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
