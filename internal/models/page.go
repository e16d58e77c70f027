package models

// Параметры пагинации по умолчанию.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest номер страницы (с 1) и её размер.
type PageRequest struct {
	Page     int
	PageSize int
}

// Limit возвращает LIMIT для запроса.
func (p PageRequest) Limit() int {
	return p.PageSize
}

// Offset возвращает OFFSET для запроса.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page страница результатов списка.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
