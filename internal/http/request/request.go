// Package request содержит общие для обработчиков функции разбора запроса.
package request

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// ParamID читает положительный числовой параметр пути chi.
func ParamID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if id < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return id, nil
}

// QueryID читает необязательный числовой параметр строки запроса.
// Отсутствующий параметр возвращается как nil.
func QueryID(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &id, nil
}
