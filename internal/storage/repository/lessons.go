package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

const lessonColumns = `id, course_id, title, description, preview, video_url, owner_id, updated_at`

func scanLesson(row rowScanner) (*models.Lesson, error) {
	var (
		l       models.Lesson
		ownerID sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.Preview,
		&l.VideoURL, &ownerID, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.OwnerID = nullInt64(ownerID)
	return &l, nil
}

func (s *Storage) queryLessons(ctx context.Context, op, query string, args ...any) ([]models.Lesson, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Lesson{}
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateLesson сохраняет урок. Несуществующий курс даёт ErrNotFound.
func (s *Storage) CreateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.CreateLesson"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO lessons (course_id, title, description, preview, video_url, owner_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, updated_at`
	if err := s.DB.QueryRowContext(ctx, query,
		l.CourseID, l.Title, l.Description, l.Preview, l.VideoURL, l.OwnerID,
	).Scan(&l.ID, &l.UpdatedAt); err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetLesson возвращает урок по ID.
func (s *Storage) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	const op = "storage.GetLesson"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	l, err := scanLesson(s.DB.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return l, nil
}

// ListLessons возвращает страницу уроков, упорядоченных по курсу и ID.
// Если ownerID задан, выбираются только уроки этого владельца.
func (s *Storage) ListLessons(ctx context.Context, ownerID *int64, page models.PageRequest) ([]models.Lesson, int, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lessons WHERE $1::BIGINT IS NULL OR owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, wrap(op, err)
	}

	query := `SELECT ` + lessonColumns + `
			  FROM lessons
			  WHERE $1::BIGINT IS NULL OR owner_id = $1
			  ORDER BY course_id, id
			  LIMIT $2 OFFSET $3`
	lessons, err := s.queryLessons(ctx, op, query, ownerID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

// LessonsByCourseIDs возвращает уроки перечисленных курсов, сгруппированные по курсу.
func (s *Storage) LessonsByCourseIDs(ctx context.Context, courseIDs []int64) (map[int64][]models.Lesson, error) {
	const op = "storage.LessonsByCourseIDs"
	result := make(map[int64][]models.Lesson, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + lessonColumns + `
			  FROM lessons
			  WHERE course_id = ANY($1)
			  ORDER BY course_id, id`
	lessons, err := s.queryLessons(ctx, op, query, courseIDs)
	if err != nil {
		return nil, err
	}
	for _, l := range lessons {
		result[l.CourseID] = append(result[l.CourseID], l)
	}
	return result, nil
}

// UpdateLesson сохраняет редактируемые поля урока и обновляет updated_at.
func (s *Storage) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	const op = "storage.UpdateLesson"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE lessons
			  SET course_id = $1, title = $2, description = $3, preview = $4,
			      video_url = $5, updated_at = NOW()
			  WHERE id = $6
			  RETURNING updated_at`
	if err := s.DB.QueryRowContext(ctx, query,
		l.CourseID, l.Title, l.Description, l.Preview, l.VideoURL, l.ID,
	).Scan(&l.UpdatedAt); err != nil {
		return wrap(op, err)
	}
	return nil
}

// DeleteLesson удаляет урок. Ссылки платежей на урок обнуляются.
func (s *Storage) DeleteLesson(ctx context.Context, id int64) error {
	const op = "storage.DeleteLesson"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return wrap(op, err)
	}
	return checkAffected(op, res)
}
