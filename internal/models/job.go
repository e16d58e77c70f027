package models

import "time"

// Ключи маршрутизации задач в брокере.
const (
	JobCourseUpdate       = "course_update"
	JobDeactivateInactive = "deactivate_inactive"
)

// CourseUpdateJob задача рассылки подписчикам об обновлении урока курса.
type CourseUpdateJob struct {
	CourseID int64 `json:"course_id"`
	LessonID int64 `json:"lesson_id"`
}

// DeactivateInactiveJob задача деактивации неактивных пользователей.
type DeactivateInactiveJob struct {
	RequestedAt time.Time `json:"requested_at"`
}
