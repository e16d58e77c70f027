package models

import "time"

// Subscription подписка пользователя на обновления курса.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	CourseID  int64     `json:"course"`
	CreatedAt time.Time `json:"created_at"`
}

// Сообщения ответа переключения подписки.
const (
	SubscriptionAdded   = "subscription added"
	SubscriptionRemoved = "subscription removed"
)

// ToggleResult ответ POST /courses/{id}/subscribe.
type ToggleResult struct {
	Message      string `json:"message" example:"subscription added"`
	CourseID     int64  `json:"course_id" example:"1"`
	IsSubscribed bool   `json:"is_subscribed" example:"true"`
}
