package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// RegisterUser es el comando de alta de cuenta.
type RegisterUser struct {
	Username string
	Email    string
	Password string
}

// RegisteredUser es el resultado del alta. No expone el hash.
type RegisteredUser struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

type RegisterPorts struct {
	FindExisting FindExistingFunc
	Save         SaveUserFunc
	Hasher       SecretHasher
	NewID        func() (string, error)
	Now          func() time.Time
}

// Register crea una cuenta si ni el username ni el email están tomados.
func Register(ctx context.Context, cmd RegisterUser, p RegisterPorts) (RegisteredUser, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	for _, err := range []error{
		required("username", cmd.Username),
		required("email", cmd.Email),
		required("password", cmd.Password),
	} {
		if err != nil {
			return RegisteredUser{}, err
		}
	}

	existing, err := p.FindExisting(ctx, cmd.Username, cmd.Email)
	if err != nil && !absent(err) {
		return RegisteredUser{}, fmt.Errorf("register: find existing: %w", err)
	}
	if err == nil && existing != nil {
		field := "email"
		if existing.Username == cmd.Username {
			field = "username"
		}
		return RegisteredUser{}, &DuplicateUserError{Field: field}
	}

	hash, err := p.Hasher.Hash(cmd.Password)
	if err != nil {
		return RegisteredUser{}, fmt.Errorf("register: hash password: %w", err)
	}
	id, err := p.NewID()
	if err != nil {
		return RegisteredUser{}, fmt.Errorf("register: new id: %w", err)
	}

	saved, err := p.Save(ctx, repository.User{
		ID:           id,
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
		CreatedAt:    nowOr(p.Now),
	})
	if err != nil {
		// Save puede devolver *DuplicateUserError si otro request ganó la carrera.
		return RegisteredUser{}, fmt.Errorf("register: save: %w", err)
	}
	return RegisteredUser{
		ID:        saved.ID,
		Username:  saved.Username,
		Email:     saved.Email,
		CreatedAt: saved.CreatedAt,
	}, nil
}
