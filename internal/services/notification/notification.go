// Package notification обрабатывает задачи рассылки подписчикам курса
// письма об обновлении урока.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/lib/smtp"
	"github.com/magabrotheeeer/online-learning/internal/metrics"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Repository определяет методы хранилища, нужные рассылке.
type Repository interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	// SubscriberEmails возвращает адреса всех подписчиков курса.
	SubscriberEmails(ctx context.Context, courseID int64) ([]string, error)
}

// Service отправляет письма об обновлении курса.
type Service struct {
	repo      Repository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// HandleCourseUpdate обрабатывает задачу course_update. Удалённый курс или
// урок и курс без подписчиков не считаются ошибкой. Ошибка отправки
// возвращается, сообщение после этого не переотправляется.
func (s *Service) HandleCourseUpdate(ctx context.Context, body []byte) error {
	const op = "services.notification.HandleCourseUpdate"
	var job models.CourseUpdateJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%s: unmarshal job: %w", op, err)
	}
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("course_id", job.CourseID),
		slog.Int64("lesson_id", job.LessonID),
	)

	course, err := s.repo.GetCourse(ctx, job.CourseID)
	if errors.Is(err, errdefs.ErrNotFound) {
		log.Warn("course no longer exists, skipping notification")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	lesson, err := s.repo.GetLesson(ctx, job.LessonID)
	if errors.Is(err, errdefs.ErrNotFound) {
		log.Warn("lesson no longer exists, skipping notification")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	emails, err := s.repo.SubscriberEmails(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(emails) == 0 {
		log.Info("course has no subscribers")
		return nil
	}

	subject := fmt.Sprintf("Course %q updated", course.Title)
	text := fmt.Sprintf("Hello!\r\n\r\nLesson %q of course %q has been updated. Check out the new material.",
		lesson.Title, course.Title)

	err = s.sendEmail(emails, subject, text)
	metrics.NotificationsSent.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("course update notification sent", slog.Int("recipients", len(emails)))
	return nil
}

// sendEmail отправляет одно письмо всем получателям. Адреса получателей
// передаются только в конверте, в заголовке To их нет.
func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPFrom()
	msg := strings.Join([]string{
		"From: " + from,
		"To: undisclosed-recipients:;",
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}
	return nil
}
