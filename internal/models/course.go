package models

import "time"

// Course курс. Owner может отсутствовать у старых записей.
type Course struct {
	ID                 int64      `json:"id" example:"1"`
	Title              string     `json:"title" example:"Go for backend developers"`
	Preview            string     `json:"preview"`
	Description        string     `json:"description"`
	OwnerID            *int64     `json:"owner"`
	LastNotificationAt *time.Time `json:"last_notification_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Lessons            []Lesson   `json:"lessons"`
	LessonsCount       int        `json:"lessons_count"`
}

// CourseRequest тело POST /courses и PUT /courses/{id}.
type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=255" example:"Go for backend developers"`
	Preview     string `json:"preview" validate:"omitempty,url"`
	Description string `json:"description"`
}

// CoursePatch тело PATCH /courses/{id}.
type CoursePatch struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Preview     *string `json:"preview" validate:"omitempty,url"`
	Description *string `json:"description"`
}

// AsPatch превращает полную замену в частичное обновление со всеми полями.
func (r CourseRequest) AsPatch() CoursePatch {
	return CoursePatch{
		Title:       &r.Title,
		Preview:     &r.Preview,
		Description: &r.Description,
	}
}

// Apply применяет частичное обновление к курсу.
func (p CoursePatch) Apply(c *Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Preview != nil {
		c.Preview = *p.Preview
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
