// Package errors define el catálogo de errores HTTP y su mapeo desde los
// errores de dominio.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/repository"
)

var (
	ErrInvalidJSON         = &AppError{Code: "invalid_json", Message: "Invalid JSON format", Status: http.StatusBadRequest}
	ErrBadRequest          = &AppError{Code: "bad_request", Message: "Bad request", Status: http.StatusBadRequest}
	ErrValidation          = &AppError{Code: "validation_failed", Message: "Validation failed", Status: http.StatusBadRequest}
	ErrUnauthorized        = &AppError{Code: "unauthorized", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrInvalidCredentials  = &AppError{Code: "invalid_credentials", Message: "Invalid username or password", Status: http.StatusUnauthorized}
	ErrTokenMissing        = &AppError{Code: "token_missing", Message: "Missing bearer token", Status: http.StatusUnauthorized}
	ErrTokenInvalid        = &AppError{Code: "token_invalid", Message: "Invalid token", Status: http.StatusUnauthorized}
	ErrTokenExpired        = &AppError{Code: "token_expired", Message: "Token expired", Status: http.StatusUnauthorized}
	ErrNotFound            = &AppError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrMethodNotAllowed    = &AppError{Code: "method_not_allowed", Message: "Method not allowed", Status: http.StatusMethodNotAllowed}
	ErrConflict            = &AppError{Code: "conflict", Message: "Resource already exists", Status: http.StatusConflict}
	ErrGone                = &AppError{Code: "gone", Message: "Link expired", Status: http.StatusGone}
	ErrRateLimited         = &AppError{Code: "rate_limited", Message: "Too many requests", Status: http.StatusTooManyRequests}
	ErrInternalServerError = &AppError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrServiceUnavailable  = &AppError{Code: "service_unavailable", Message: "Service unavailable", Status: http.StatusServiceUnavailable}
)

// AppError es la respuesta de error estándar de la API.
type AppError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Status    int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail devuelve una copia con detalle.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithField devuelve una copia que señala el campo culpable.
func (e *AppError) WithField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

// FromError traduce un error de dominio. Lo que no pertenece a la taxonomía
// es un 500.
func FromError(err error) *AppError {
	var (
		app *AppError
		dup *commands.DuplicateUserError
		val *commands.ValidationError
	)
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &app):
		return app
	case stderrors.As(err, &val):
		return ErrValidation.WithField(val.Field).WithDetail(val.Field + " " + val.Reason)
	case stderrors.As(err, &dup):
		return ErrConflict.WithField(dup.Field).WithDetail(dup.Field + " already taken")
	case stderrors.Is(err, commands.ErrValidation):
		return ErrValidation
	case stderrors.Is(err, commands.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case stderrors.Is(err, commands.ErrNotFound):
		return ErrNotFound
	case stderrors.Is(err, commands.ErrTokenExpired):
		return ErrTokenExpired
	case stderrors.Is(err, commands.ErrTokenInvalid):
		return ErrTokenInvalid
	case stderrors.Is(err, repository.ErrNoDatabase):
		return ErrServiceUnavailable
	default:
		return ErrInternalServerError
	}
}

// WriteError escribe err como JSON. Errores fuera del catálogo se responden
// como 500 sin exponer el detalle.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	if appErr == nil {
		appErr = ErrInternalServerError
	}
	out := *appErr
	out.RequestID = w.Header().Get("X-Request-ID")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(out.Status)
	_ = json.NewEncoder(w).Encode(out)
}
