package repository

import (
	"context"
	"fmt"
)

// CreateSubscription подписывает пользователя на курс. Возвращает false,
// если подписка уже существовала. Несуществующий курс даёт ErrNotFound.
func (s *Storage) CreateSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, course_id)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id, course_id) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query, userID, courseID)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// DeleteSubscription отписывает пользователя от курса. Возвращает false,
// если подписки не было.
func (s *Storage) DeleteSubscription(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.DeleteSubscription"

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// IsSubscribed сообщает, подписан ли пользователь на курс.
func (s *Storage) IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	const op = "storage.IsSubscribed"

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	if err != nil {
		return false, wrap(op, err)
	}
	return exists, nil
}

// SubscriberEmails возвращает email всех подписчиков курса, включая
// деактивированных.
func (s *Storage) SubscriberEmails(ctx context.Context, courseID int64) ([]string, error) {
	const op = "storage.SubscriberEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.course_id = $1 AND u.email <> ''
			  ORDER BY u.id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var emails []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		emails = append(emails, email)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}
