package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

type Login struct {
	Username string
	Password string
}

type LoginResult struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}

type LoginPorts struct {
	FindUser    FindUserFunc
	Hasher      SecretHasher
	Tokens      TokenIssuer
	RecordLogin RecordLoginFunc
	// DummyDigest se verifica cuando el usuario no existe, para que ambos
	// caminos cuesten lo mismo. Vacío lo desactiva.
	DummyDigest string
	Now         func() time.Time
}

// LoginUser valida credenciales y emite un token. Usuario inexistente y
// password incorrecto devuelven el mismo ErrInvalidCredentials.
func LoginUser(ctx context.Context, cmd Login, p LoginPorts) (LoginResult, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	if cmd.Username == "" || cmd.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := p.FindUser(ctx, cmd.Username)
	if err != nil && !absent(err) {
		return LoginResult{}, fmt.Errorf("login: find user: %w", err)
	}
	if err != nil || u == nil {
		if p.DummyDigest != "" {
			_, _ = p.Hasher.Verify(cmd.Password, p.DummyDigest)
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	ok, err := p.Hasher.Verify(cmd.Password, u.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	// El subject es el id: sobrevive a un cambio de username.
	token, exp, err := p.Tokens.Issue(u.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: issue token: %w", err)
	}
	if err := p.RecordLogin(ctx, repository.LoginRecord{
		Username:   u.Username,
		LoggedInAt: nowOr(p.Now),
		ExpiresAt:  exp,
	}); err != nil {
		return LoginResult{}, fmt.Errorf("login: record: %w", err)
	}
	return LoginResult{Username: u.Username, Token: token, ExpiresAt: exp}, nil
}
