package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

const courseColumns = `id, title, preview, description, owner_id, last_notification_at, updated_at`

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		c        models.Course
		ownerID  sql.NullInt64
		notified sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Preview, &c.Description, &ownerID, &notified, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.OwnerID = nullInt64(ownerID)
	c.LastNotificationAt = nullTime(notified)
	return &c, nil
}

// CreateCourse сохраняет курс и заполняет его ID и updated_at.
func (s *Storage) CreateCourse(ctx context.Context, c *models.Course) error {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (title, preview, description, owner_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, updated_at`
	if err := s.DB.QueryRowContext(ctx, query, c.Title, c.Preview, c.Description, c.OwnerID).
		Scan(&c.ID, &c.UpdatedAt); err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetCourse возвращает курс без уроков.
func (s *Storage) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	const op = "storage.GetCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c, err := scanCourse(s.DB.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return c, nil
}

// ListCourses возвращает страницу курсов, упорядоченных по названию.
// Если ownerID задан, выбираются только курсы этого владельца.
func (s *Storage) ListCourses(ctx context.Context, ownerID *int64, page models.PageRequest) ([]models.Course, int, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM courses WHERE $1::BIGINT IS NULL OR owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, wrap(op, err)
	}

	query := `SELECT ` + courseColumns + `
			  FROM courses
			  WHERE $1::BIGINT IS NULL OR owner_id = $1
			  ORDER BY title, id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Course, 0, page.Limit())
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// UpdateCourse сохраняет редактируемые поля курса и обновляет updated_at.
func (s *Storage) UpdateCourse(ctx context.Context, c *models.Course) error {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET title = $1, preview = $2, description = $3, updated_at = NOW()
			  WHERE id = $4
			  RETURNING updated_at`
	if err := s.DB.QueryRowContext(ctx, query, c.Title, c.Preview, c.Description, c.ID).
		Scan(&c.UpdatedAt); err != nil {
		return wrap(op, err)
	}
	return nil
}

// DeleteCourse удаляет курс. Уроки и подписки удаляются каскадно,
// ссылки платежей на курс обнуляются.
func (s *Storage) DeleteCourse(ctx context.Context, id int64) error {
	const op = "storage.DeleteCourse"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}

// ClaimNotificationWindow атомарно занимает окно рассылки курса: ставит
// last_notification_at = now, только если предыдущая рассылка была не позже
// now - window или её не было. Возвращает true, если окно занято этим вызовом.
func (s *Storage) ClaimNotificationWindow(ctx context.Context, courseID int64, now time.Time, window time.Duration) (bool, error) {
	const op = "storage.ClaimNotificationWindow"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET last_notification_at = $1
			  WHERE id = $2
			    AND (last_notification_at IS NULL OR last_notification_at <= $3)`
	res, err := s.DB.ExecContext(ctx, query, now, courseID, now.Add(-window))
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}
