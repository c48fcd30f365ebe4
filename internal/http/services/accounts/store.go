package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/events"
	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/store"
	"github.com/dropDatabas3/splice/internal/store/pg"
)

// Store es el estado relacional de cuentas. Los métodos de escritura confirman
// la mutación y su evento juntos.
type Store interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*repository.User, error)
	FindByUsername(ctx context.Context, username string) (*repository.User, error)
	FindProfile(ctx context.Context, userID string) (*repository.Profile, error)
	IsVerified(ctx context.Context, userID string) (bool, error)

	CreateUser(ctx context.Context, u repository.User) (repository.User, error)
	RecordLogin(ctx context.Context, rec repository.LoginRecord) error
	UpdateProfile(ctx context.Context, userID string, patch repository.ProfilePatch) (repository.Profile, error)
	MarkVerified(ctx context.Context, v repository.Verification, at time.Time) error
}

// PGStore implementa Store sobre PostgreSQL usando el Coordinator.
type PGStore struct {
	coord    *store.Coordinator
	users    *pg.Users
	profiles *pg.Profiles
	logins   *pg.Logins
}

func NewPGStore(db pg.Querier, coord *store.Coordinator) *PGStore {
	return &PGStore{
		coord:    coord,
		users:    pg.NewUsers(db),
		profiles: pg.NewProfiles(db),
		logins:   pg.NewLogins(),
	}
}

func (s *PGStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*repository.User, error) {
	return s.users.FindByUsernameOrEmail(ctx, username, email)
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *PGStore) FindProfile(ctx context.Context, userID string) (*repository.Profile, error) {
	return s.profiles.Find(ctx, userID)
}

func (s *PGStore) IsVerified(ctx context.Context, userID string) (bool, error) {
	return s.users.IsVerified(ctx, userID)
}

func (s *PGStore) CreateUser(ctx context.Context, u repository.User) (repository.User, error) {
	var saved repository.User
	_, err := s.coord.Do(ctx, "register", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		var err error
		if saved, err = s.users.InsertTx(ctx, tx, u); err != nil {
			return nil, err
		}
		d, err := registeredDraft(saved)
		if err != nil {
			return nil, err
		}
		return []eventlog.Draft{d}, nil
	})
	if err != nil {
		return repository.User{}, duplicate(err)
	}
	return saved, nil
}

func (s *PGStore) RecordLogin(ctx context.Context, rec repository.LoginRecord) error {
	_, err := s.coord.Do(ctx, "login", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		if err := s.logins.InsertTx(ctx, tx, rec); err != nil {
			return nil, err
		}
		d, err := loginDraft(rec)
		if err != nil {
			return nil, err
		}
		return []eventlog.Draft{d}, nil
	})
	return err
}

func (s *PGStore) UpdateProfile(ctx context.Context, userID string, patch repository.ProfilePatch) (repository.Profile, error) {
	var out repository.Profile
	_, err := s.coord.Do(ctx, "update_profile", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		var err error
		if out, err = s.profiles.UpdateTx(ctx, tx, userID, patch); err != nil {
			return nil, err
		}
		d, err := profileDraft(userID, patch)
		if err != nil {
			return nil, err
		}
		return []eventlog.Draft{d}, nil
	})
	if err != nil {
		return repository.Profile{}, err
	}
	return out, nil
}

func (s *PGStore) MarkVerified(ctx context.Context, v repository.Verification, at time.Time) error {
	_, err := s.coord.Do(ctx, "verify_email", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		changed, err := s.users.MarkVerifiedTx(ctx, tx, v.UserID)
		if err != nil {
			return nil, err
		}
		if !changed {
			// Otro request lo verificó primero: sin evento.
			return nil, nil
		}
		d, err := verifiedDraft(v, at)
		if err != nil {
			return nil, err
		}
		return []eventlog.Draft{d}, nil
	})
	return err
}

// duplicate traduce la colisión de unicidad del store al error de dominio.
func duplicate(err error) error {
	var ce *repository.ConflictError
	if errors.As(err, &ce) {
		return &commands.DuplicateUserError{Field: ce.Field}
	}
	return err
}

func registeredDraft(u repository.User) (eventlog.Draft, error) {
	p := events.UserRegistered{UserID: u.ID, Username: u.Username, Email: u.Email}
	return eventlog.NewDraft(p, events.RegisteredTags(p)...)
}

func loginDraft(rec repository.LoginRecord) (eventlog.Draft, error) {
	p := events.UserLoggedIn{Username: rec.Username, ExpiresAt: rec.ExpiresAt}
	return eventlog.NewDraft(p, events.LoggedInTags(p)...)
}

func profileDraft(userID string, patch repository.ProfilePatch) (eventlog.Draft, error) {
	p := events.ProfileUpdated{UserID: userID, Bio: patch.Bio, AvatarURL: patch.AvatarURL}
	return eventlog.NewDraft(p, events.ProfileUpdatedTags(p)...)
}

func verifiedDraft(v repository.Verification, at time.Time) (eventlog.Draft, error) {
	p := events.EmailVerified{UserID: v.UserID, Email: v.Email, VerifiedAt: at}
	return eventlog.NewDraft(p, events.EmailVerifiedTags(p)...)
}
