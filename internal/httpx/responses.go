package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookreview/internal/apperror"

	"github.com/rs/zerolog/log"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func buildMeta(r *http.Request, customMeta map[string]any) map[string]any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(customMeta) == 0 {
		return nil
	}
	meta := make(map[string]any, len(customMeta)+1)
	for k, v := range customMeta {
		meta[k] = v
	}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// JSONSuccess writes a 200 envelope. meta is merged with the request id.
func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, meta)})
}

func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data, Meta: buildMeta(r, nil)})
}

func JSONNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []ErrorDetail) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// WriteError maps an error kind to its HTTP status. Unauthorized becomes 401
// for anonymous callers and 403 for authenticated ones.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	msg := apperror.PublicMessage(err)
	switch {
	case errors.Is(err, apperror.ErrUnauthorized):
		if !ActorFrom(r).Authenticated() {
			JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", msg, nil)
			return
		}
		JSONError(w, r, http.StatusForbidden, "FORBIDDEN", msg, nil)
	case errors.Is(err, apperror.ErrNotFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", msg, nil)
	case errors.Is(err, apperror.ErrValidation):
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", msg, nil)
	case errors.Is(err, apperror.ErrConstraintViolation):
		JSONError(w, r, http.StatusConflict, "CONSTRAINT_VIOLATION", msg, nil)
	case errors.Is(err, apperror.ErrUnavailable):
		log.Warn().Err(err).Str("request_id", RequestIDFrom(r)).Msg("store unavailable")
		JSONError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Service temporarily unavailable", nil)
	default:
		log.Error().Err(err).Str("request_id", RequestIDFrom(r)).Str("path", r.URL.Path).Msg("unhandled error")
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}

// DecodeJSON decodes the request body into dst. Malformed bodies, including
// a value of the wrong JSON type, are reported as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.Validationf("request body exceeds %d bytes", maxErr.Limit)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperror.Validationf("%s must be of type %s", typeErr.Field, typeErr.Type)
		}
		return apperror.Validationf("invalid request body")
	}
	return nil
}
