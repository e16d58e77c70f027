// Команда create-admin создаёт суперпользователя с учётными данными из
// DEFAULT_ADMIN_EMAIL и DEFAULT_ADMIN_PASSWORD. Если пользователь уже есть,
// команда только пишет предупреждение.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/config"
	"github.com/magabrotheeeer/online-learning/internal/lib/jwt"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/migrations"
	authservice "github.com/magabrotheeeer/online-learning/internal/services/auth"
	"github.com/magabrotheeeer/online-learning/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := repository.Connect(ctx, cfg.StorageConnectionString, 10, 3*time.Second)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := authservice.NewService(db, jwtMaker, logger)

	created, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Error("failed to create admin", sl.Err(err))
		os.Exit(1)
	}
	if !created {
		logger.Warn("admin already exists", slog.String("email", cfg.AdminEmail))
		return
	}
	logger.Info("admin created", slog.String("email", cfg.AdminEmail))
}
