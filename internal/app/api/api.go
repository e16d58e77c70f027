// Package api собирает HTTP API онлайн-школы: хранилище, кеш, брокер задач,
// платёжного провайдера, сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/online-learning/internal/cache"
	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-learning/internal/lib/jwt"
	"github.com/magabrotheeeer/online-learning/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/migrations"
	"github.com/magabrotheeeer/online-learning/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/online-learning/internal/services/auth"
	courseservice "github.com/magabrotheeeer/online-learning/internal/services/course"
	lessonservice "github.com/magabrotheeeer/online-learning/internal/services/lesson"
	paymentservice "github.com/magabrotheeeer/online-learning/internal/services/payment"
	subscriptionservice "github.com/magabrotheeeer/online-learning/internal/services/subscription"
	userservice "github.com/magabrotheeeer/online-learning/internal/services/user"
	"github.com/magabrotheeeer/online-learning/internal/storage/repository"
)

const (
	dbConnectAttempts = 10
	dbConnectDelay    = 3 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// App HTTP API.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	db, err := repository.Connect(ctx, cfg.StorageConnectionString, dbConnectAttempts, dbConnectDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.Exchange, rabbitmq.GetTaskQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	publisher, err := rabbitmq.NewPublisher(ch, rabbitmq.Exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn("stripe secret key is empty, checkout requests will fail")
	}
	provider := paymentprovider.NewClient(cfg.StripeSecretKey, nil)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	svc := Services{
		Auth:         authservice.NewService(db, jwtMaker, logger),
		Courses:      courseservice.NewService(db, cacheRedis, cfg.CourseTTL, logger),
		Lessons:      lessonservice.NewService(db, cacheRedis, publisher, cfg.NotificationWindow, logger),
		Subscription: subscriptionservice.NewService(db),
		Users:        userservice.NewService(db, cfg.InactivityPeriod, logger),
		Payments: paymentservice.NewService(db, provider, paymentservice.Options{
			SuccessURL: cfg.SuccessURL,
			CancelURL:  cfg.CancelURL,
			Currency:   cfg.Currency,
		}, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, middlewarectx.NewRateLimiter(cfg.RPS, cfg.Burst), db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
