// Package validate создаёт валидатор запросов: имена полей в ошибках
// берутся из json тегов, тег youtube проверяет ссылку на видео урока.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-learning/internal/models"
)

// New возвращает настроенный валидатор.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Ошибка возможна только при пустом имени тега.
	_ = v.RegisterValidation("youtube", youtube)
	return v
}

func youtube(fl validator.FieldLevel) bool {
	return models.IsAllowedVideoURL(fl.Field().String())
}
