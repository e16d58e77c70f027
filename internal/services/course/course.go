// Package course содержит бизнес-логику работы с курсами: проверку прав,
// выборку с уроками и кеширование карточки курса в Redis.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/cache"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Repository определяет методы хранилища, нужные сервису курсов.
type Repository interface {
	// CreateCourse сохраняет курс и заполняет ID и UpdatedAt.
	CreateCourse(ctx context.Context, c *models.Course) error
	// GetCourse возвращает курс по ID.
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	// ListCourses возвращает страницу курсов и общее число. ownerID == nil означает все курсы.
	ListCourses(ctx context.Context, ownerID *int64, page models.PageRequest) ([]models.Course, int, error)
	// UpdateCourse сохраняет изменения курса.
	UpdateCourse(ctx context.Context, c *models.Course) error
	// DeleteCourse удаляет курс вместе с уроками и подписками.
	DeleteCourse(ctx context.Context, id int64) error
	// LessonsByCourseIDs возвращает уроки, сгруппированные по курсам.
	LessonsByCourseIDs(ctx context.Context, courseIDs []int64) (map[int64][]models.Lesson, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует операции над курсами.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает новый экземпляр Service. ttl задаёт время жизни карточки курса в кеше.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// List возвращает страницу курсов с уроками. Пользователь без права
// видеть все курсы получает только свои.
func (s *Service) List(ctx context.Context, id access.Identity, page models.PageRequest) ([]models.Course, int, error) {
	const op = "services.course.List"
	var owner *int64
	if !id.SeesAll() {
		owner = &id.UserID
	}
	courses, total, err := s.repo.ListCourses(ctx, owner, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.attachLessons(ctx, courses); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return courses, total, nil
}

// Get возвращает курс с уроками. Сначала проверяется кеш.
func (s *Service) Get(ctx context.Context, id access.Identity, courseID int64) (*models.Course, error) {
	const op = "services.course.Get"
	if !access.Can(id.Role, access.ActionRead) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}

	key := cache.CourseKey(courseID)
	var cached models.Course
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read course from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	courses := []models.Course{*course}
	if err = s.attachLessons(ctx, courses); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	course = &courses[0]

	if err = s.cache.Set(ctx, key, course, s.ttl); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", key), sl.Err(err))
	}
	return course, nil
}

// Create создаёт курс, владельцем становится автор запроса.
func (s *Service) Create(ctx context.Context, id access.Identity, req models.CourseRequest) (*models.Course, error) {
	const op = "services.course.Create"
	if !access.Can(id.Role, access.ActionCreate) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	owner := id.UserID
	course := &models.Course{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
		OwnerID:     &owner,
		Lessons:     []models.Lesson{},
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

// Update применяет полное или частичное обновление курса.
func (s *Service) Update(ctx context.Context, id access.Identity, courseID int64, patch models.CoursePatch) (*models.Course, error) {
	const op = "services.course.Update"
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !access.CanOn(id, access.ActionUpdate, course.OwnerID) {
		return nil, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}

	patch.Apply(course)
	if err = s.repo.UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, courseID)

	courses := []models.Course{*course}
	if err = s.attachLessons(ctx, courses); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &courses[0], nil
}

// Delete удаляет курс. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, id access.Identity, courseID int64) error {
	const op = "services.course.Delete"
	if !access.Can(id.Role, access.ActionDelete) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	if err := s.repo.DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, courseID)
	return nil
}

func (s *Service) attachLessons(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	lessons, err := s.repo.LessonsByCourseIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range courses {
		ls := lessons[courses[i].ID]
		if ls == nil {
			ls = []models.Lesson{}
		}
		courses[i].Lessons = ls
		courses[i].LessonsCount = len(ls)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, courseID int64) {
	if err := s.cache.Invalidate(ctx, cache.CourseKey(courseID)); err != nil {
		s.log.Warn("failed to invalidate course cache", slog.Int64("course_id", courseID), sl.Err(err))
	}
}
