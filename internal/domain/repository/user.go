package repository

import "time"

// User representa una cuenta registrada.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
}

// Profile es la proyección editable de un usuario.
type Profile struct {
	UserID    string
	Username  string
	Bio       string
	AvatarURL string
	UpdatedAt time.Time
}

// ProfilePatch contiene los campos actualizables de un perfil.
// Un campo nil queda sin cambios.
type ProfilePatch struct {
	Bio       *string
	AvatarURL *string
}

// Empty reporta si el patch no toca ningún campo.
func (p ProfilePatch) Empty() bool {
	return p.Bio == nil && p.AvatarURL == nil
}

// LoginRecord registra un login exitoso.
type LoginRecord struct {
	Username   string
	LoggedInAt time.Time
	ExpiresAt  time.Time
}

// Verification es un token de verificación de email emitido por el projector.
// TokenHash es el SHA-256 del token enviado; el token en claro nunca se persiste.
type Verification struct {
	TokenHash string
	UserID    string
	Email     string
	IssuedAt  time.Time
}
