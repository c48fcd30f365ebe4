// Package accounts conecta los comandos de cuentas con el store y el event log.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/events"
	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/observability/logger"
	"github.com/dropDatabas3/splice/internal/security/password"
	"github.com/dropDatabas3/splice/internal/security/token"
)

// Deps contiene las dependencias del servicio.
type Deps struct {
	Store  Store
	Events eventlog.Reader
	Hasher *password.Hasher
	Tokens commands.TokenIssuer

	Policy    password.Policy
	Blacklist *password.Blacklist // nil = sin blacklist
	// VerificationTTL acota la validez del link de verificación. <= 0: sin expiración.
	VerificationTTL time.Duration

	// QueryTimeout acota cada lectura del store y del event log. <= 0: DefaultQueryTimeout.
	QueryTimeout time.Duration
	Now          func() time.Time
}

// DefaultQueryTimeout es el límite por lectura cuando Deps no fija uno.
const DefaultQueryTimeout = 5 * time.Second

// Service expone las operaciones de cuenta a los controllers.
type Service struct {
	deps  Deps
	dummy string
}

func New(deps Deps) (*Service, error) {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.QueryTimeout <= 0 {
		deps.QueryTimeout = DefaultQueryTimeout
	}
	dummy, err := deps.Hasher.DummyDigest()
	if err != nil {
		return nil, fmt.Errorf("accounts: dummy digest: %w", err)
	}
	return &Service{deps: deps, dummy: dummy}, nil
}

func (s *Service) Register(ctx context.Context, cmd commands.RegisterUser) (commands.RegisteredUser, error) {
	if err := s.checkPassword(cmd.Password); err != nil {
		return commands.RegisteredUser{}, err
	}
	out, err := commands.Register(ctx, cmd, commands.RegisterPorts{
		FindExisting: s.findExisting,
		Save:         s.deps.Store.CreateUser,
		Hasher:       s.deps.Hasher,
		NewID:        newID,
		Now:          s.deps.Now,
	})
	if err != nil {
		return out, err
	}
	logger.From(ctx).Info("user registered",
		logger.Layer("service"), logger.UserID(out.ID), logger.Username(out.Username))
	return out, nil
}

func (s *Service) Login(ctx context.Context, cmd commands.Login) (commands.LoginResult, error) {
	return commands.LoginUser(ctx, cmd, commands.LoginPorts{
		FindUser:    s.findUser,
		Hasher:      s.deps.Hasher,
		Tokens:      s.deps.Tokens,
		RecordLogin: s.deps.Store.RecordLogin,
		DummyDigest: s.dummy,
		Now:         s.deps.Now,
	})
}

func (s *Service) UpdateProfile(ctx context.Context, cmd commands.UpdateProfile) (repository.Profile, error) {
	return commands.UpdateUserProfile(ctx, cmd, commands.UpdateProfilePorts{
		FindProfile:   s.findProfile,
		UpdateProfile: s.deps.Store.UpdateProfile,
	})
}

func (s *Service) VerifyEmail(ctx context.Context, cmd commands.VerifyEmail) (commands.VerifiedEmail, error) {
	out, err := commands.ConfirmEmail(ctx, cmd, commands.VerifyEmailPorts{
		FindVerification: s.findVerification,
		IsVerified:       s.isVerified,
		MarkVerified:     s.deps.Store.MarkVerified,
		TTL:              s.deps.VerificationTTL,
		Now:              s.deps.Now,
	})
	if err != nil {
		return out, err
	}
	logger.From(ctx).Info("email verified",
		logger.Layer("service"), logger.UserID(out.UserID),
		zap.Bool("already_verified", out.AlreadyVerified))
	return out, nil
}

// bounded acota una lectura. Las escrituras las acota el Coordinator.
func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.deps.QueryTimeout)
}

func (s *Service) findExisting(ctx context.Context, username, email string) (*repository.User, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.deps.Store.FindByUsernameOrEmail(ctx, username, email)
}

func (s *Service) findUser(ctx context.Context, username string) (*repository.User, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.deps.Store.FindByUsername(ctx, username)
}

func (s *Service) findProfile(ctx context.Context, userID string) (*repository.Profile, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.deps.Store.FindProfile(ctx, userID)
}

func (s *Service) isVerified(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.deps.Store.IsVerified(ctx, userID)
}

// findVerification busca el envío por el hash del token. Si hubo reenvíos
// gana el más reciente.
func (s *Service) findVerification(ctx context.Context, plain string) (*repository.Verification, error) {
	hash := token.SHA256Base64URL(plain)
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	found, err := s.deps.Events.Query(ctx, events.VerificationByTokenQuery(hash))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	ev := found[len(found)-1]
	sent, err := eventlog.PayloadAs[events.VerificationEmailSent](ev)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ev.ID, err)
	}
	issued := sent.SentAt
	if issued.IsZero() {
		issued = ev.Timestamp
	}
	return &repository.Verification{
		TokenHash: hash,
		UserID:    sent.UserID,
		Email:     sent.Email,
		IssuedAt:  issued,
	}, nil
}

func (s *Service) checkPassword(pwd string) error {
	if pwd == "" {
		// El comando reporta el campo requerido.
		return nil
	}
	if ok, reasons := s.deps.Policy.Validate(pwd); !ok {
		return &commands.ValidationError{Field: "password", Reason: strings.Join(reasons, ", ")}
	}
	if s.deps.Blacklist.Contains(pwd) {
		return &commands.ValidationError{Field: "password", Reason: "is too common"}
	}
	return nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
