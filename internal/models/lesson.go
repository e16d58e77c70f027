package models

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// AllowedVideoHosts хосты, с которых разрешены ссылки на видео уроков.
var AllowedVideoHosts = []string{"youtube.com", "www.youtube.com", "youtu.be", "www.youtu.be"}

// Lesson урок курса.
type Lesson struct {
	ID          int64     `json:"id" example:"1"`
	CourseID    int64     `json:"course" example:"1"`
	Title       string    `json:"title" example:"Goroutines"`
	Description string    `json:"description"`
	Preview     string    `json:"preview"`
	VideoURL    string    `json:"video_url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	OwnerID     *int64    `json:"owner"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LessonRequest тело POST /lessons и PUT /lessons/{id}.
type LessonRequest struct {
	CourseID    int64  `json:"course" validate:"required,gt=0" example:"1"`
	Title       string `json:"title" validate:"required,max=255" example:"Goroutines"`
	Description string `json:"description"`
	Preview     string `json:"preview" validate:"omitempty,url"`
	VideoURL    string `json:"video_url" validate:"required,url,youtube" example:"https://youtu.be/dQw4w9WgXcQ"`
}

// LessonPatch тело PATCH /lessons/{id}.
type LessonPatch struct {
	CourseID    *int64  `json:"course" validate:"omitempty,gt=0"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Preview     *string `json:"preview" validate:"omitempty,url"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url,youtube"`
}

// AsPatch превращает полную замену в частичное обновление со всеми полями.
func (r LessonRequest) AsPatch() LessonPatch {
	return LessonPatch{
		CourseID:    &r.CourseID,
		Title:       &r.Title,
		Description: &r.Description,
		Preview:     &r.Preview,
		VideoURL:    &r.VideoURL,
	}
}

// Apply применяет частичное обновление к уроку.
func (p LessonPatch) Apply(l *Lesson) {
	if p.CourseID != nil {
		l.CourseID = *p.CourseID
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Preview != nil {
		l.Preview = *p.Preview
	}
	if p.VideoURL != nil {
		l.VideoURL = *p.VideoURL
	}
}

// IsAllowedVideoURL проверяет, что ссылка ведёт на разрешённый видеохостинг.
func IsAllowedVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return slices.Contains(AllowedVideoHosts, strings.ToLower(u.Hostname()))
}
