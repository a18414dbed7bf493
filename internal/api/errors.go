package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/intake-backend/internal/apperrors"
	"github.com/intake-backend/internal/storage"
)

// SuccessResponse is the envelope for every successful API response
type SuccessResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data,omitempty"`
	Pagination *storage.Pagination `json:"pagination,omitempty"`
	Stats      any                 `json:"stats,omitempty"`
}

// ErrorResponse is the envelope for every failed API response
type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Timestamp string   `json:"timestamp"`
	Path      string   `json:"path"`
	Method    string   `json:"method"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondSuccess wraps data in the success envelope
func respondSuccess(w http.ResponseWriter, statusCode int, resp SuccessResponse) {
	resp.Success = true
	respondJSON(w, statusCode, resp)
}

// parseJSONBody decodes a JSON request body into v
func parseJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondError maps an error from the taxonomy onto the error envelope.
// Internal detail is echoed only in development mode; production
// responses carry the public category message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)

	resp := ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      r.URL.Path,
		Method:    r.Method,
	}

	var vErr *apperrors.ValidationError
	var nfErr *apperrors.NotFoundError
	var cErr *apperrors.ConflictError
	var uErr *apperrors.UnauthorizedError
	var sErr *apperrors.StoreError

	switch {
	case errors.As(err, &vErr):
		resp.Error = "Validation Error"
		resp.Message = vErr.Message
		resp.Details = vErr.Details
	case errors.As(err, &nfErr):
		resp.Error = "Not Found"
		resp.Message = nfErr.Message
	case errors.As(err, &cErr):
		resp.Error = "Conflict"
		resp.Message = cErr.Message
	case errors.As(err, &uErr):
		resp.Error = "Unauthorized"
		resp.Message = uErr.Message
	case errors.As(err, &sErr):
		resp.Error = "Database Error"
		if s.development {
			resp.Message = sErr.Error()
		} else {
			resp.Message = sErr.PublicMessage()
		}
	default:
		resp.Error = "Internal Server Error"
		if s.development {
			resp.Message = err.Error()
		} else {
			resp.Message = "An unexpected error occurred"
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("request failed")
	}

	respondJSON(w, status, resp)
}

// respondBadRequest is a shortcut for request parsing failures
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.respondError(w, r, apperrors.NewValidationError(message))
}
