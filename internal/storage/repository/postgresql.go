// Package repository реализует хранилище данных онлайн-школы на PostgreSQL:
// пользователей, курсы, уроки, подписки и платежи. Ошибки драйвера
// сопоставляются с ошибками errdefs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Connect вызывает New до attempts раз с паузой delay, пока база не станет доступна.
func Connect(ctx context.Context, storageConnectionString string, attempts int, delay time.Duration) (*Storage, error) {
	const op = "storage.Connect"
	var (
		s   *Storage
		err error
	)
	for i := range max(attempts, 1) {
		if s, err = New(storageConnectionString); err == nil {
			return s, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: database not ready: %w", op, err)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping проверяет доступность базы для /healthz.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.Ping"
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// wrap оборачивает ошибку драйвера операцией op и, если возможно,
// ошибкой предметной области.
func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, errdefs.ErrAlreadyExists, err)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, errdefs.ErrNotFound, err)
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%s: %w: %w", op, errdefs.ErrValidation, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// checkAffected возвращает ErrNotFound, если запрос не затронул ни одной строки.
func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	}
	return nil
}

// nullInt64 превращает sql.NullInt64 в указатель.
func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

// nullTime превращает sql.NullTime в указатель.
func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
