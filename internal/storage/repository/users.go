package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, city, avatar,
	is_active, is_staff, is_superuser, groups, last_login, date_joined`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, m *pgtype.Map) (*models.User, error) {
	var (
		u         models.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.City, &u.Avatar, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		m.SQLScanner(&u.Groups), &lastLogin, &u.DateJoined); err != nil {
		return nil, err
	}
	u.LastLogin = nullTime(lastLogin)
	return &u, nil
}

// CreateUser сохраняет нового пользователя и заполняет его ID и дату регистрации.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	groups := u.Groups
	if groups == nil {
		groups = []string{}
	}
	query := `INSERT INTO users (email, password_hash, first_name, last_name, phone, city,
			      avatar, is_active, is_staff, is_superuser, groups)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, date_joined`
	if err := s.DB.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.City,
		u.Avatar, u.IsActive, u.IsStaff, u.IsSuperuser, groups,
	).Scan(&u.ID, &u.DateJoined); err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email), pgtype.NewMap())
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по ID, и их общее число.
func (s *Storage) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, wrap(op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	m := pgtype.NewMap()
	result := make([]models.User, 0, page.Limit())
	for rows.Next() {
		u, err := scanUser(rows, m)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateUserProfile сохраняет редактируемые поля профиля.
func (s *Storage) UpdateUserProfile(ctx context.Context, u *models.User) error {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET first_name = $1, last_name = $2, phone = $3, city = $4, avatar = $5
			  WHERE id = $6`
	res, err := s.DB.ExecContext(ctx, query, u.FirstName, u.LastName, u.Phone, u.City, u.Avatar, u.ID)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// DeleteUser удаляет пользователя по ID.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// TouchLastLogin записывает время последнего входа.
func (s *Storage) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.TouchLastLogin"

	res, err := s.DB.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// DeactivateInactiveUsers снимает флаг is_active с обычных пользователей,
// которые не входили с момента cutoff (или не входили ни разу и
// зарегистрировались раньше cutoff). Возвращает число деактивированных.
func (s *Storage) DeactivateInactiveUsers(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.DeactivateInactiveUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_active = FALSE
			  WHERE is_active
			    AND NOT is_staff
			    AND NOT is_superuser
			    AND (last_login < $1 OR (last_login IS NULL AND date_joined < $1))`
	res, err := s.DB.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
