package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

func registerPorts(s *fakeStore) RegisterPorts {
	n := 0
	return RegisterPorts{
		FindExisting: s.findExisting,
		Save:         s.save,
		Hasher:       &fakeHasher{},
		NewID: func() (string, error) {
			n++
			return fmt.Sprintf("user-%d", n), nil
		},
	}
}

func TestRegister_CreatesUserWithoutExposingHash(t *testing.T) {
	s := newFakeStore()
	got, err := Register(context.Background(),
		RegisterUser{Username: "alice", Email: "Alice@Example.com ", Password: "password123"},
		registerPorts(s))
	require.NoError(t, err)

	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())
	assert.NotContains(t, fmt.Sprintf("%+v", got), "hashed:")

	stored := s.users["alice"]
	assert.Equal(t, "hashed:password123", stored.PasswordHash)
}

func TestRegister_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := newFakeStore()
	ports := registerPorts(s)
	_, err := Register(ctx, RegisterUser{Username: "alice", Email: "a@x.com", Password: "password123"}, ports)
	require.NoError(t, err)

	_, err = Register(ctx, RegisterUser{Username: "alice", Email: "other@x.com", Password: "password123"}, ports)
	var dup *DuplicateUserError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)
	assert.ErrorIs(t, err, ErrDuplicateUser)

	_, err = Register(ctx, RegisterUser{Username: "bob", Email: "a@x.com", Password: "password123"}, ports)
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	assert.Len(t, s.users, 1)
}

func TestRegister_SaveRaceSurfacesDuplicate(t *testing.T) {
	s := newFakeStore()
	s.saveErr = &DuplicateUserError{Field: "email"}
	_, err := Register(context.Background(),
		RegisterUser{Username: "alice", Email: "a@x.com", Password: "password123"}, registerPorts(s))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestRegister_InfrastructureErrorsPropagate(t *testing.T) {
	ports := registerPorts(newFakeStore())
	ports.FindExisting = func(context.Context, string, string) (*repository.User, error) {
		return nil, fmt.Errorf("%w: %w", repository.ErrInfrastructure, errBoom)
	}
	_, err := Register(context.Background(),
		RegisterUser{Username: "alice", Email: "a@x.com", Password: "password123"}, ports)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrInfrastructure))
	assert.False(t, IsDomainError(err))
}

func TestRegister_MissingFields(t *testing.T) {
	_, err := Register(context.Background(), RegisterUser{Username: "alice"}, registerPorts(newFakeStore()))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.ErrorIs(t, err, ErrValidation)
}
