// Package pagination разбирает параметры page и page_size и строит
// страницу ответа со ссылками на соседние страницы.
package pagination

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

// maxPage наибольший номер страницы, при котором OFFSET не переполняет int.
const maxPage = math.MaxInt/models.MaxPageSize + 1

// Parse читает page (с 1) и page_size из строки запроса. Размер страницы
// больше максимального обрезается, некорректный заменяется значением по умолчанию.
func Parse(r *http.Request) (models.PageRequest, error) {
	q := r.URL.Query()
	page := models.PageRequest{Page: 1, PageSize: models.DefaultPageSize}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPage {
			return page, errdefs.Validation("page", "invalid page")
		}
		page.Page = n
	}
	if raw := q.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.PageSize = min(n, models.MaxPageSize)
		}
	}
	return page, nil
}

// Build собирает страницу ответа. Ссылки next и previous абсолютные и
// сохраняют остальные параметры запроса.
func Build[T any](r *http.Request, page models.PageRequest, total int, items []T) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	res := models.Page[T]{Count: total, Results: items}
	if page.Offset()+len(items) < total {
		res.Next = link(r, page.Page+1)
	}
	if page.Page > 1 {
		res.Previous = link(r, page.Page-1)
	}
	return res
}

func link(r *http.Request, page int) *string {
	u := url.URL{
		Scheme: "http",
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
