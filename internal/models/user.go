// Package models содержит доменные структуры онлайн-школы: пользователей,
// курсы, уроки, подписки и платежи, а также структуры запросов и ответов
// HTTP API и сообщений очереди задач.
package models

import (
	"time"

	"github.com/magabrotheeeer/online-learning/internal/access"
)

// User представляет зарегистрированного пользователя. Email является логином.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	City         string
	Avatar       string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	Groups       []string
	LastLogin    *time.Time
	DateJoined   time.Time
}

// Role возвращает роль пользователя, вычисленную по флагам и группам.
func (u *User) Role() access.Role {
	return access.RoleOf(u.IsStaff, u.IsSuperuser, u.Groups)
}

// OwnerProfile профиль, который видит сам владелец.
type OwnerProfile struct {
	ID        int64     `json:"id" example:"1"`
	Email     string    `json:"email" example:"student@example.com"`
	FirstName string    `json:"first_name" example:"Ivan"`
	LastName  string    `json:"last_name" example:"Petrov"`
	Phone     string    `json:"phone" example:"+79990000000"`
	City      string    `json:"city" example:"Moscow"`
	Avatar    string    `json:"avatar"`
	Payments  []Payment `json:"payments"`
}

// PublicProfile профиль, который видят остальные пользователи.
// Фамилия и история платежей в него не входят.
type PublicProfile struct {
	ID        int64  `json:"id" example:"2"`
	Email     string `json:"email" example:"other@example.com"`
	FirstName string `json:"first_name" example:"Anna"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Avatar    string `json:"avatar"`
}

// OwnerView строит профиль владельца.
func (u *User) OwnerView(payments []Payment) OwnerProfile {
	if payments == nil {
		payments = []Payment{}
	}
	return OwnerProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		City:      u.City,
		Avatar:    u.Avatar,
		Payments:  payments,
	}
}

// PublicView строит публичный профиль.
func (u *User) PublicView() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		Phone:     u.Phone,
		City:      u.City,
		Avatar:    u.Avatar,
	}
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254" example:"student@example.com"`
	Password  string `json:"password" validate:"required,min=8,max=128" example:"secret123"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=20"`
	City      string `json:"city" validate:"max=100"`
}

// LoginRequest тело запроса на получение пары токенов.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"student@example.com"`
	Password string `json:"password" validate:"required" example:"secret123"`
}

// RefreshRequest тело запроса на обновление access токена.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenPair пара токенов.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// UserUpdateRequest тело PUT /users/{id}: все поля профиля заменяются.
type UserUpdateRequest struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Phone     string `json:"phone" validate:"max=20"`
	City      string `json:"city" validate:"max=100"`
	Avatar    string `json:"avatar" validate:"omitempty,url"`
}

// UserPatchRequest тело PATCH /users/{id}: меняются только переданные поля.
type UserPatchRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	City      *string `json:"city" validate:"omitempty,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

// AsPatch превращает полную замену в частичное обновление со всеми полями.
func (r UserUpdateRequest) AsPatch() UserPatchRequest {
	return UserPatchRequest{
		FirstName: &r.FirstName,
		LastName:  &r.LastName,
		Phone:     &r.Phone,
		City:      &r.City,
		Avatar:    &r.Avatar,
	}
}

// Apply применяет частичное обновление к пользователю.
func (p UserPatchRequest) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.City != nil {
		u.City = *p.City
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}
