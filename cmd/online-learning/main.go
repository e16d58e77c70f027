// Package main Online Learning API
//
// @title           Online Learning API
// @version         1.0
// @description     API онлайн-школы: курсы, уроки, подписки на обновления и оплата через Stripe
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/online-learning/docs"
	"github.com/magabrotheeeer/online-learning/internal/app/api"
	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.NewLogger(cfg.Env)

	logger.Info("starting online-learning", slog.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := api.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("online-learning stopped gracefully")
}
