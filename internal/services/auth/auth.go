// Package auth содержит бизнес-логику регистрации, выдачи и обновления
// JWT токенов, проверки access токена и создания администратора по умолчанию.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/online-learning/internal/access"
	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/jwt"
	"github.com/magabrotheeeer/online-learning/internal/lib/password"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и заполняет его ID.
	CreateUser(ctx context.Context, u *models.User) error
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// TouchLastLogin записывает время последнего входа.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
		now:      time.Now,
	}
}

// Register создает активного пользователя с ролью user и хэшированным паролем.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		IsActive:     true,
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login проверяет пароль и активность пользователя, выдаёт пару токенов
// и записывает время входа.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (models.TokenPair, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errdefs.ErrNotFound) {
			return models.TokenPair{}, fmt.Errorf("%s: %w", op, errdefs.ErrUnauthenticated)
		}
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, errdefs.ErrUnauthenticated)
	}
	if !user.IsActive {
		return models.TokenPair{}, fmt.Errorf("%s: user is inactive: %w", op, errdefs.ErrUnauthenticated)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.log.Warn("failed to update last login", slog.Int64("user_id", user.ID), sl.Err(err))
	}
	return pair, nil
}

// Refresh выдаёт новый access токен по refresh токену. Роль пересчитывается
// по текущему состоянию пользователя.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	const op = "services.auth.Refresh"
	claims, err := s.jwtMaker.ParseToken(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w: %w", op, errdefs.ErrUnauthenticated, err)
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errdefs.ErrNotFound) {
			return models.TokenPair{}, fmt.Errorf("%s: %w", op, errdefs.ErrUnauthenticated)
		}
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return models.TokenPair{}, fmt.Errorf("%s: user is inactive: %w", op, errdefs.ErrUnauthenticated)
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role()), jwt.TokenTypeAccess)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.TokenPair{Access: token}, nil
}

// Authenticate проверяет access токен и возвращает пользователя запроса.
func (s *Service) Authenticate(_ context.Context, token string) (access.Identity, error) {
	const op = "services.auth.Authenticate"
	claims, err := s.jwtMaker.ParseToken(token, jwt.TokenTypeAccess)
	if err != nil {
		return access.Identity{}, fmt.Errorf("%s: %w: %w", op, errdefs.ErrUnauthenticated, err)
	}
	role, ok := access.ParseRole(claims.Role)
	if !ok {
		return access.Identity{}, fmt.Errorf("%s: unknown role %q: %w", op, claims.Role, errdefs.ErrUnauthenticated)
	}
	return access.Identity{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

// EnsureAdmin создаёт активного суперпользователя, если пользователя с таким
// email ещё нет. Возвращает false, если пользователь уже существует.
func (s *Service) EnsureAdmin(ctx context.Context, email, rawPassword string) (bool, error) {
	const op = "services.auth.EnsureAdmin"
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, errdefs.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	admin := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hashed,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err = s.users.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, errdefs.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *Service) issuePair(user *models.User) (models.TokenPair, error) {
	role := string(user.Role())
	accessToken, err := s.jwtMaker.GenerateToken(user.ID, user.Email, role, jwt.TokenTypeAccess)
	if err != nil {
		return models.TokenPair{}, err
	}
	refreshToken, err := s.jwtMaker.GenerateToken(user.ID, user.Email, role, jwt.TokenTypeRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: accessToken, Refresh: refreshToken}, nil
}
