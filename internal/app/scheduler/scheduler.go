// Package scheduler ставит в очередь периодическую задачу деактивации
// неактивных пользователей.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/online-learning/internal/services/scheduler"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.GetTaskQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	publisher, err := rabbitmq.NewPublisher(ch, rabbitmq.Exchange)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		schedulerService: schedulerservice.NewService(publisher, cfg.SweepInterval, logger),
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
