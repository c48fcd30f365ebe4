package commands

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// SecretHasher hashea y verifica passwords.
type SecretHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) (bool, error)
}

// TokenIssuer emite bearer tokens para un subject.
type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// Ports de lectura. Devuelven (nil, nil) o repository.ErrNotFound cuando no
// hay registro; cualquier otro error es de infraestructura.
type (
	FindExistingFunc     func(ctx context.Context, username, email string) (*repository.User, error)
	FindUserFunc         func(ctx context.Context, username string) (*repository.User, error)
	FindProfileFunc      func(ctx context.Context, userID string) (*repository.Profile, error)
	FindVerificationFunc func(ctx context.Context, token string) (*repository.Verification, error)
	IsVerifiedFunc       func(ctx context.Context, userID string) (bool, error)
)

// Ports de escritura. Cada uno es una unidad transaccional: la mutación
// relacional y sus eventos se confirman juntos o no se confirman.
type (
	SaveUserFunc      func(ctx context.Context, u repository.User) (repository.User, error)
	RecordLoginFunc   func(ctx context.Context, rec repository.LoginRecord) error
	UpdateProfileFunc func(ctx context.Context, userID string, patch repository.ProfilePatch) (repository.Profile, error)
	MarkVerifiedFunc  func(ctx context.Context, v repository.Verification, at time.Time) error
)

// absent normaliza el "no encontrado" de los ports de lectura.
func absent(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now().UTC()
}
