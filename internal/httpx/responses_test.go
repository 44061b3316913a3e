package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSuccess_IncludesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ContextWithRequestID(r.Context(), "req-1"))

	JSONSuccess(w, r, map[string]string{"key": "value"}, map[string]any{"total": 10})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Meta    map[string]any    `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "value", body.Data["key"])
	assert.Equal(t, "req-1", body.Meta["request_id"])
	assert.EqualValues(t, 10, body.Meta["total"])
}

func TestJSONCreatedAndNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	JSONCreated(w, httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	JSONNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteError_StatusMapping(t *testing.T) {
	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	authed := anon.WithContext(ContextWithActor(anon.Context(), policy.Actor{ID: "a"}, TokenInfo{ID: "jti", ExpiresAt: time.Now()}))

	tests := []struct {
		name string
		r    *http.Request
		err  error
		code int
		body string
	}{
		{"unauthorized anonymous", anon, apperror.Unauthorizedf("nope"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unauthorized authenticated", authed, apperror.Unauthorizedf("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", anon, apperror.NotFoundf("book"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", anon, apperror.Validationf("title is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"constraint", authed, apperror.ConstraintViolationf("duplicate"), http.StatusConflict, "CONSTRAINT_VIOLATION"},
		{"unavailable", anon, apperror.ErrUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"other", anon, errors.New("kaboom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.r, tt.err)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotContains(t, w.Body.String(), "kaboom")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Rating int `json:"rating"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":4}`))
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, 4, dst.Rating)
	})

	t.Run("non integer rating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":4.5}`))
		err := DecodeJSON(r, &dst)
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, err.Error(), "rating")
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		assert.ErrorIs(t, DecodeJSON(r, &dst), apperror.ErrValidation)
	})
}
