// Package lesson содержит бизнес-логику работы с уроками и постановку
// рассылки подписчикам курса после изменения урока.
//
// Рассылка ограничена окном: курс "захватывает" окно условным UPDATE
// в базе, и только успешный захват публикует задачу в брокер. Отметка
// времени не откатывается при ошибке публикации или отправки.
package lesson

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/cache"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/metrics"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Repository определяет методы хранилища, нужные сервису уроков.
type Repository interface {
	CreateLesson(ctx context.Context, l *models.Lesson) error
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	ListLessons(ctx context.Context, ownerID *int64, page models.PageRequest) ([]models.Lesson, int, error)
	UpdateLesson(ctx context.Context, l *models.Lesson) error
	DeleteLesson(ctx context.Context, id int64) error
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	// ClaimNotificationWindow атомарно ставит отметку рассылки курса,
	// если предыдущая старше window. Возвращает true при успешном захвате.
	ClaimNotificationWindow(ctx context.Context, courseID int64, now time.Time, window time.Duration) (bool, error)
}

// Invalidator удаляет устаревшие карточки курсов из кеша.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher публикует задачи в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service реализует операции над уроками.
type Service struct {
	repo      Repository
	cache     Invalidator
	publisher Publisher
	window    time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр Service. window задаёт минимальный
// интервал между рассылками об обновлении одного курса.
func NewService(repo Repository, cache Invalidator, publisher Publisher, window time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		window:    window,
		log:       log,
		now:       time.Now,
	}
}

// List возвращает страницу уроков. Пользователь без права видеть все
// уроки получает только свои.
func (s *Service) List(ctx context.Context, id access.Identity, page models.PageRequest) ([]models.Lesson, int, error) {
	const op = "services.lesson.List"
	var owner *int64
	if !id.SeesAll() {
		owner = &id.UserID
	}
	lessons, total, err := s.repo.ListLessons(ctx, owner, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return lessons, total, nil
}

// Get возвращает урок по ID.
func (s *Service) Get(ctx context.Context, id access.Identity, lessonID int64) (*models.Lesson, error) {
	const op = "services.lesson.Get"
	if !access.Can(id.Role, access.ActionRead) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// Create создаёт урок в существующем курсе, владельцем становится автор запроса.
func (s *Service) Create(ctx context.Context, id access.Identity, req models.LessonRequest) (*models.Lesson, error) {
	const op = "services.lesson.Create"
	if !access.Can(id.Role, access.ActionCreate) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	if !models.IsAllowedVideoURL(req.VideoURL) {
		return nil, fmt.Errorf("%s: %w", op, errVideoURL())
	}
	if _, err := s.repo.GetCourse(ctx, req.CourseID); err != nil {
		return nil, fmt.Errorf("%s: course %d: %w", op, req.CourseID, err)
	}

	owner := id.UserID
	l := &models.Lesson{OwnerID: &owner}
	req.AsPatch().Apply(l)
	if err := s.repo.CreateLesson(ctx, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, l.CourseID)
	return l, nil
}

// Update применяет полное или частичное обновление урока и, если окно
// рассылки курса свободно, ставит задачу уведомления подписчиков.
func (s *Service) Update(ctx context.Context, id access.Identity, lessonID int64, patch models.LessonPatch) (*models.Lesson, error) {
	const op = "services.lesson.Update"
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !access.CanOn(id, access.ActionUpdate, l.OwnerID) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	if patch.VideoURL != nil && !models.IsAllowedVideoURL(*patch.VideoURL) {
		return nil, fmt.Errorf("%s: %w", op, errVideoURL())
	}

	prevCourse := l.CourseID
	patch.Apply(l)
	if l.CourseID != prevCourse {
		if _, err = s.repo.GetCourse(ctx, l.CourseID); err != nil {
			return nil, fmt.Errorf("%s: course %d: %w", op, l.CourseID, err)
		}
	}
	if err = s.repo.UpdateLesson(ctx, l); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, prevCourse, l.CourseID)
	s.notify(ctx, l)
	return l, nil
}

// Delete удаляет урок. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, id access.Identity, lessonID int64) error {
	const op = "services.lesson.Delete"
	if !access.Can(id.Role, access.ActionDelete) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.DeleteLesson(ctx, lessonID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, l.CourseID)
	return nil
}

// notify захватывает окно рассылки курса и публикует задачу. Ошибки только
// логируются: обновление урока уже сохранено.
func (s *Service) notify(ctx context.Context, l *models.Lesson) {
	log := s.log.With(
		slog.String("op", "services.lesson.notify"),
		slog.Int64("course_id", l.CourseID),
		slog.Int64("lesson_id", l.ID),
	)

	claimed, err := s.repo.ClaimNotificationWindow(ctx, l.CourseID, s.now().UTC(), s.window)
	if err != nil {
		log.Error("failed to claim notification window", sl.Err(err))
		return
	}
	if !claimed {
		log.Debug("course notified recently, skipping")
		return
	}

	job := models.CourseUpdateJob{CourseID: l.CourseID, LessonID: l.ID}
	if err = s.publisher.Publish(ctx, models.JobCourseUpdate, job); err != nil {
		log.Error("failed to enqueue course update notification", sl.Err(err))
		return
	}
	metrics.NotificationsEnqueued.Inc()
	log.Info("course update notification enqueued")
}

func (s *Service) invalidate(ctx context.Context, courseIDs ...int64) {
	keys := make([]string, 0, len(courseIDs))
	for i, id := range courseIDs {
		if i > 0 && id == courseIDs[i-1] {
			continue
		}
		keys = append(keys, cache.CourseKey(id))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to invalidate course cache", slog.Any("keys", keys), sl.Err(err))
	}
}

func errVideoURL() error {
	return errdefs.Validation("video_url", "only YouTube links are allowed")
}
