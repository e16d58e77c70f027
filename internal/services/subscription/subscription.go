// Package subscription содержит бизнес-логику переключения подписки
// пользователя на обновления курса.
package subscription

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// GetCourse возвращает курс по ID.
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	// CreateSubscription добавляет подписку. Возвращает false, если она уже есть.
	CreateSubscription(ctx context.Context, userID, courseID int64) (bool, error)
	// DeleteSubscription удаляет подписку. Возвращает false, если её не было.
	DeleteSubscription(ctx context.Context, userID, courseID int64) (bool, error)
}

// Service реализует переключение подписки.
type Service struct {
	repo Repository
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Toggle удаляет подписку, если она была, иначе создаёт её.
// Повторный вызов возвращает подписку в исходное состояние.
func (s *Service) Toggle(ctx context.Context, userID, courseID int64) (models.ToggleResult, error) {
	const op = "services.subscription.Toggle"
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return models.ToggleResult{}, fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.repo.DeleteSubscription(ctx, userID, courseID)
	if err != nil {
		return models.ToggleResult{}, fmt.Errorf("%s: %w", op, err)
	}
	if removed {
		return models.ToggleResult{
			Message:      models.SubscriptionRemoved,
			CourseID:     courseID,
			IsSubscribed: false,
		}, nil
	}

	// Конкурентный запрос мог успеть создать подписку: итог всё равно "подписан".
	if _, err = s.repo.CreateSubscription(ctx, userID, courseID); err != nil {
		return models.ToggleResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.ToggleResult{
		Message:      models.SubscriptionAdded,
		CourseID:     courseID,
		IsSubscribed: true,
	}, nil
}
