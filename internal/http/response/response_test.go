package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/online-learning/internal/errdefs"
	"github.com/magabrotheeeer/online-learning/internal/lib/validate"
	"github.com/magabrotheeeer/online-learning/internal/models"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "not found", err: fmt.Errorf("op: %w", errdefs.ErrNotFound), wantStatus: http.StatusNotFound, wantError: "not found"},
		{name: "duplicate", err: fmt.Errorf("op: %w", errdefs.ErrAlreadyExists), wantStatus: http.StatusConflict, wantError: "already exists"},
		{name: "forbidden", err: errdefs.ErrForbidden, wantStatus: http.StatusForbidden, wantError: "forbidden"},
		{name: "unauthenticated", err: errdefs.ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantError: "unauthenticated"},
		{name: "bare validation", err: fmt.Errorf("db: %w", errdefs.ErrValidation), wantStatus: http.StatusUnprocessableEntity, wantError: "validation failed"},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestFromError_Details(t *testing.T) {
	status, resp := FromError(fmt.Errorf("op: %w", errdefs.Validation("amount", "must be greater than 0")))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, map[string]string{"amount": "must be greater than 0"}, resp.Fields)

	status, resp = FromError(fmt.Errorf("op: %w", &errdefs.UpstreamError{Provider: "stripe", Message: "Invalid API Key"}))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "payment provider unavailable", resp.Error)
	assert.Equal(t, "Invalid API Key", resp.ProviderError)
}

func TestRenderValidationError(t *testing.T) {
	err := validate.New().Struct(models.CourseRequest{Preview: "not-a-url"})
	require.Error(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/courses", nil)
	RenderValidationError(w, r, slog.New(slog.NewTextHandler(io.Discard, nil)), err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is a required field", body.Fields["title"])
	assert.Equal(t, "must be a valid url", body.Fields["preview"])
}

func TestRenderDecodeError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/courses", nil)
	RenderDecodeError(w, r, slog.New(slog.NewTextHandler(io.Discard, nil)), io.EOF)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"Error","error":"empty request"}`, w.Body.String())
}
