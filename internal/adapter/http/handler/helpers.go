package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/VineetPaun/expense-management/internal/adapter/http/dto"
	"github.com/VineetPaun/expense-management/internal/adapter/http/middleware"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps err to a status code and error body. Internal errors are logged
// and their message is not exposed.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	resp := dto.ErrorResponse{Error: domain.Kind(err), Message: err.Error()}

	var fieldErrs *dto.FieldErrors
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &fieldErrs):
		resp.Message = "request validation failed"
		resp.Details = fieldErrs.Fields
	case errors.As(err, &valErr):
		resp.Field = valErr.Field
	}

	if errors.Is(err, domain.ErrConcurrentUpdate) {
		resp.Error = "conflict"
	}

	if status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context(), log.Logger)
		l.Error().Err(err).Str("kind", domain.Kind(err)).Msg("request failed")
		if !errors.Is(err, domain.ErrConsistency) {
			resp.Message = "internal server error"
		}
	}

	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. Numbers stay json.Number so amounts keep their
// exact decimal text.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		msg := "invalid request body"
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeDomainError(w, r, ve)
			return false
		}
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusBadRequest, "validation", msg)
		return false
	}

	if err := dto.Validate(v); err != nil {
		writeDomainError(w, r, err)
		return false
	}
	return true
}

// currentUser returns the authenticated user ID or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return userID, ok
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
