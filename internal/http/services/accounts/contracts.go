package accounts

import (
	"context"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// RegisterService da de alta cuentas.
type RegisterService interface {
	Register(ctx context.Context, cmd commands.RegisterUser) (commands.RegisteredUser, error)
}

// LoginService autentica con username/password.
type LoginService interface {
	Login(ctx context.Context, cmd commands.Login) (commands.LoginResult, error)
}

type ProfileService interface {
	UpdateProfile(ctx context.Context, cmd commands.UpdateProfile) (repository.Profile, error)
}

type VerifyEmailService interface {
	VerifyEmail(ctx context.Context, cmd commands.VerifyEmail) (commands.VerifiedEmail, error)
}

// Services agrupa los servicios que consumen los controllers.
type Services struct {
	Register    RegisterService
	Login       LoginService
	Profile     ProfileService
	VerifyEmail VerifyEmailService
}

// Services expone s con cada contrato.
func (s *Service) Services() Services {
	return Services{Register: s, Login: s, Profile: s, VerifyEmail: s}
}
