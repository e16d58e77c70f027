// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/sl"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status статус запроса ("OK" или "Error").
// Поле Error текст ошибки (опционально, при неуспехе).
// Поле Fields ошибки валидации по полям запроса.
// Поле ProviderError текст ошибки платёжного провайдера.
// Поле Data данные ответа (опционально, при успехе).
type Response struct {
	Status        string            `json:"status"`
	Error         string            `json:"error,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	ProviderError string            `json:"provider_error,omitempty"`
	Data          any               `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status        string            `json:"status" example:"Error"`
	Error         string            `json:"error" example:"invalid request body"`
	Fields        map[string]string `json:"fields,omitempty"`
	ProviderError string            `json:"provider_error,omitempty"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Тексты ошибок, общие для всех обработчиков.
const (
	MsgDecodeFailed    = "failed to decode request"
	MsgEmptyBody       = "empty request"
	MsgInvalidID       = "failed to decode id from url"
	MsgUnauthenticated = "unauthenticated"
	MsgForbidden       = "forbidden"
	MsgNotFound        = "not found"
	MsgAlreadyExists   = "already exists"
	MsgInternal        = "internal server error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение попадает в Fields по имени поля JSON, а в Error
// все сообщения объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make(map[string]string, len(errs))
	errsMsgs := make([]string, 0, len(errs))

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = "is a required field"
		case "email":
			msg = "must be a valid email"
		case "url":
			msg = "must be a valid url"
		case "youtube":
			msg = "only YouTube links are allowed"
		case "min":
			msg = fmt.Sprintf("must be at least %s characters", err.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", err.Param())
		case "len":
			msg = fmt.Sprintf("must be exactly %s characters", err.Param())
		case "gt":
			msg = fmt.Sprintf("must be greater than %s", err.Param())
		default:
			msg = "is not valid"
		}
		fields[err.Field()] = msg
		errsMsgs = append(errsMsgs, fmt.Sprintf("field %s %s", err.Field(), msg))
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Fields: fields,
	}
}

// FromError сопоставляет ошибку сервиса со статусом HTTP и телом ответа.
// Неизвестные ошибки превращаются в 500 без подробностей.
func FromError(err error) (int, Response) {
	var (
		verr     *errdefs.ValidationError
		upstream *errdefs.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		resp := Error(verr.Error())
		if verr.Field != "" {
			resp.Fields = map[string]string{verr.Field: verr.Message}
		}
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, errdefs.ErrValidation):
		return http.StatusUnprocessableEntity, Error(errdefs.ErrValidation.Error())
	case errors.As(err, &upstream):
		resp := Error(errdefs.ErrUpstream.Error())
		resp.ProviderError = upstream.Message
		return http.StatusBadGateway, resp
	case errors.Is(err, errdefs.ErrUnauthenticated):
		return http.StatusUnauthorized, Error(MsgUnauthenticated)
	case errors.Is(err, errdefs.ErrForbidden):
		return http.StatusForbidden, Error(MsgForbidden)
	case errors.Is(err, errdefs.ErrNotFound):
		return http.StatusNotFound, Error(MsgNotFound)
	case errors.Is(err, errdefs.ErrAlreadyExists):
		return http.StatusConflict, Error(MsgAlreadyExists)
	default:
		return http.StatusInternalServerError, Error(MsgInternal)
	}
}

// RenderError пишет ответ для ошибки сервиса. Ошибки сервера логируются
// на уровне Error, ошибки клиента на уровне Info.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.Int("status", status), sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// RenderDecodeError пишет ответ 400 для тела запроса, которое не удалось разобрать.
func RenderDecodeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	msg := MsgDecodeFailed
	if errors.Is(err, io.EOF) {
		msg = MsgEmptyBody
	}
	log.Error("failed to decode request body", sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Error(msg))
}

// RenderValidationError пишет ответ 422 для ошибок валидатора.
func RenderValidationError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Info("validation failed", sl.Err(err))
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, Error(err.Error()))
		return
	}
	render.Status(r, http.StatusUnprocessableEntity)
	render.JSON(w, r, ValidationError(verrs))
}
