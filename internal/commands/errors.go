package commands

import (
	"errors"
	"fmt"
)

// Errores de dominio. Es un conjunto cerrado: la capa HTTP mapea cada uno a
// un status y todo lo demás se trata como error de infraestructura.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// DuplicateUserError indica qué campo colisionó con una cuenta existente.
type DuplicateUserError struct {
	Field string // "username" | "email"
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("user already exists: %s taken", e.Field)
}

// Is permite errors.Is(err, ErrDuplicateUser).
func (e *DuplicateUserError) Is(target error) bool {
	return target == ErrDuplicateUser
}

// ValidationError describe un campo inválido de un comando.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// IsDomainError reporta si err pertenece a la taxonomía de dominio.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrDuplicateUser, ErrInvalidCredentials,
		ErrNotFound, ErrTokenExpired, ErrTokenInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
