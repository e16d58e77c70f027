// Package user содержит бизнес-логику профилей пользователей и
// деактивации давно не заходивших пользователей.
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/metrics"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// Repository определяет методы хранилища, нужные сервису пользователей.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int, error)
	UpdateUserProfile(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	// DeactivateInactiveUsers выключает обычных пользователей, не заходивших с cutoff.
	DeactivateInactiveUsers(ctx context.Context, cutoff time.Time) (int64, error)
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error)
}

// Service реализует операции над профилями.
type Service struct {
	repo             Repository
	inactivityPeriod time.Duration
	log              *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, inactivityPeriod time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:             repo,
		inactivityPeriod: inactivityPeriod,
		log:              log,
	}
}

// List возвращает страницу публичных профилей.
func (s *Service) List(ctx context.Context, page models.PageRequest) ([]models.PublicProfile, int, error) {
	const op = "services.user.List"
	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	res := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		res = append(res, users[i].PublicView())
	}
	return res, total, nil
}

// Profile возвращает профиль владельца (models.OwnerProfile), если
// запрашивается свой профиль, и публичный (models.PublicProfile) иначе.
func (s *Service) Profile(ctx context.Context, id access.Identity, userID int64) (any, error) {
	const op = "services.user.Profile"
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.ID != id.UserID {
		return u.PublicView(), nil
	}
	view, err := s.ownerView(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// Update меняет свой профиль. Чужой профиль не может изменить даже администратор.
func (s *Service) Update(ctx context.Context, id access.Identity, userID int64, patch models.UserPatchRequest) (models.OwnerProfile, error) {
	const op = "services.user.Update"
	if userID != id.UserID {
		return models.OwnerProfile{}, fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return models.OwnerProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	patch.Apply(u)
	if err = s.repo.UpdateUserProfile(ctx, u); err != nil {
		return models.OwnerProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	view, err := s.ownerView(ctx, u)
	if err != nil {
		return models.OwnerProfile{}, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// Delete удаляет пользователя. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, id access.Identity, userID int64) error {
	const op = "services.user.Delete"
	if !access.Can(id.Role, access.ActionDeleteUser) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrForbidden)
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivateInactive выключает пользователей, не заходивших дольше
// inactivityPeriod на момент now. Возвращает число выключенных.
func (s *Service) DeactivateInactive(ctx context.Context, now time.Time) (int64, error) {
	const op = "services.user.DeactivateInactive"
	cutoff := now.Add(-s.inactivityPeriod)
	n, err := s.repo.DeactivateInactiveUsers(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.UsersDeactivated.Add(float64(n))
	s.log.Info("inactive users deactivated",
		slog.Int64("count", n),
		slog.Time("cutoff", cutoff),
	)
	return n, nil
}

// HandleDeactivateInactive обрабатывает задачу deactivate_inactive из очереди.
// Порог отсчитывается от времени постановки задачи.
func (s *Service) HandleDeactivateInactive(ctx context.Context, body []byte) error {
	const op = "services.user.HandleDeactivateInactive"
	var job models.DeactivateInactiveJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%s: unmarshal job: %w", op, err)
	}
	now := job.RequestedAt
	if now.IsZero() {
		now = time.Now()
	}
	if _, err := s.DeactivateInactive(ctx, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) ownerView(ctx context.Context, u *models.User) (models.OwnerProfile, error) {
	payments, err := s.repo.ListPayments(ctx, models.PaymentFilter{
		UserID:   &u.ID,
		Ordering: models.OrderPaidAtDesc,
	})
	if err != nil {
		return models.OwnerProfile{}, err
	}
	return u.OwnerView(payments), nil
}
