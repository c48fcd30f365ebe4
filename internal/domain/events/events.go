// Package events contiene los payloads tipados del dominio de cuentas y el
// vocabulario de tags con el que se indexan en el event log.
package events

import (
	"time"

	"github.com/dropDatabas3/splice/internal/eventlog"
)

// Nombres de tipo de evento.
const (
	TypeUserRegistered          = "UserRegistered"
	TypeUserLoggedIn            = "UserLoggedIn"
	TypeProfileUpdated          = "ProfileUpdated"
	TypeVerificationEmailSent   = "VerificationEmailSent"
	TypeVerificationEmailFailed = "VerificationEmailFailed"
	TypeEmailVerified           = "EmailVerified"
)

// UserRegistered se emite al crear una cuenta. No lleva el hash del password.
type UserRegistered struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (UserRegistered) EventType() string { return TypeUserRegistered }

// UserLoggedIn registra un login exitoso. El token emitido no se guarda.
type UserLoggedIn struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (UserLoggedIn) EventType() string { return TypeUserLoggedIn }

// ProfileUpdated lleva sólo los campos que cambiaron.
type ProfileUpdated struct {
	UserID    string  `json:"user_id"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (ProfileUpdated) EventType() string { return TypeProfileUpdated }

type VerificationEmailSent struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	SourceEvent string    `json:"source_event"`
	SentAt      time.Time `json:"sent_at"`
}

func (VerificationEmailSent) EventType() string { return TypeVerificationEmailSent }

type VerificationEmailFailed struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	SourceEvent string `json:"source_event"`
	Error       string `json:"error"`
}

func (VerificationEmailFailed) EventType() string { return TypeVerificationEmailFailed }

type EmailVerified struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (EmailVerified) EventType() string { return TypeEmailVerified }

// All devuelve un prototipo de cada payload conocido.
func All() []eventlog.Payload {
	return []eventlog.Payload{
		UserRegistered{},
		UserLoggedIn{},
		ProfileUpdated{},
		VerificationEmailSent{},
		VerificationEmailFailed{},
		EmailVerified{},
	}
}

// Register registra todos los payloads del dominio en reg.
func Register(reg *eventlog.Registry) error {
	return reg.Register(All()...)
}

// NewRegistry devuelve un registry con los payloads del dominio ya cargados.
func NewRegistry() *eventlog.Registry {
	reg := eventlog.NewRegistry()
	// Los prototipos tienen tipos distintos; Register no puede fallar acá.
	_ = Register(reg)
	return reg
}
