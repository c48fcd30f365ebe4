package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

func loginFixture() (*fakeStore, *fakeHasher, LoginPorts) {
	s := newFakeStore()
	s.users["alice"] = repository.User{ID: "u1", Username: "alice", PasswordHash: "hashed:password123"}
	h := &fakeHasher{}
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return s, h, LoginPorts{
		FindUser:    s.findUser,
		Hasher:      h,
		Tokens:      fakeIssuer{exp: exp},
		RecordLogin: s.recordLogin,
		DummyDigest: "hashed:dummy-never-matches",
	}
}

func TestLogin_Success(t *testing.T) {
	s, _, ports := loginFixture()
	got, err := LoginUser(context.Background(), Login{Username: "alice", Password: "password123"}, ports)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "token-for-u1", got.Token)
	require.Len(t, s.logins, 1)
	assert.Equal(t, "alice", s.logins[0].Username)
	assert.Equal(t, got.ExpiresAt, s.logins[0].ExpiresAt)
}

func TestLogin_WrongPasswordAndUnknownUserAreIndistinguishable(t *testing.T) {
	s, h, ports := loginFixture()
	ctx := context.Background()

	_, errWrong := LoginUser(ctx, Login{Username: "alice", Password: "wrong"}, ports)
	_, errUnknown := LoginUser(ctx, Login{Username: "bob", Password: "x"}, ports)

	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())

	// Ambos caminos pasan por el hasher.
	assert.Equal(t, []string{"hashed:password123", "hashed:dummy-never-matches"}, h.verified)
	assert.Empty(t, s.logins)
}

func TestLogin_IssuerFailureDoesNotRecord(t *testing.T) {
	s, _, ports := loginFixture()
	ports.Tokens = fakeIssuer{err: errBoom}
	_, err := LoginUser(context.Background(), Login{Username: "alice", Password: "password123"}, ports)
	require.ErrorIs(t, err, errBoom)
	assert.Empty(t, s.logins)
}
