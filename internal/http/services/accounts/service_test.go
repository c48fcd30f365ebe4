package accounts

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/events"
	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/email"
	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/jwt"
	"github.com/dropDatabas3/splice/internal/projector"
	"github.com/dropDatabas3/splice/internal/security/password"
)

var cheap = password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

type captureSender struct {
	mu   sync.Mutex
	msgs []email.Message
}

func (c *captureSender) Send(_ context.Context, msg email.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureSender) lastToken(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs)
	body := c.msgs[len(c.msgs)-1].TextBody
	link := strings.Fields(body[strings.Index(body, "http"):])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

type fixture struct {
	svc    *Service
	log    *eventlog.Memory
	store  *MemoryStore
	runner *projector.Runner
	mail   *captureSender
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.log = eventlog.NewMemory()
	f.store = NewMemoryStore(f.log)
	issuer, err := jwt.NewIssuer("splice-test", []byte(strings.Repeat("k", 32)), time.Hour)
	require.NoError(t, err)
	bl, err := password.ReadBlacklist(strings.NewReader("password123\n"))
	require.NoError(t, err)

	f.svc, err = New(Deps{
		Store:           f.store,
		Events:          f.log,
		Hasher:          password.NewHasher(cheap),
		Tokens:          issuer,
		Policy:          password.Policy{MinLength: 8},
		Blacklist:       bl,
		VerificationTTL: 48 * time.Hour,
		Now:             func() time.Time { return f.now },
	})
	require.NoError(t, err)

	tpl, err := email.LoadTemplates()
	require.NoError(t, err)
	f.mail = &captureSender{}
	proj := projector.NewVerification(projector.VerificationConfig{BaseURL: "http://test"}, f.log, f.mail, tpl)
	f.runner = projector.NewRunner(f.log, projector.NewMemoryCheckpoints(f.log), projector.Options{}, proj)
	return f
}

func (f *fixture) register(t *testing.T, username, mail string) commands.RegisteredUser {
	t.Helper()
	u, err := f.svc.Register(context.Background(), commands.RegisterUser{
		Username: username, Email: mail, Password: "correct horse",
	})
	require.NoError(t, err)
	return u
}

func TestRegister_StoresUserAndEmitsEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "Alice@Example.com")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)

	got, err := f.log.Query(ctx, events.RegistrationsQuery())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].HasTag(eventlog.T(events.KeyUserID, u.ID)))
	assert.NotContains(t, string(got[0].Payload), "argon2id")

	stored, err := f.store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com")

	_, err := f.svc.Register(context.Background(), commands.RegisterUser{Username: "alice", Email: "other@example.com", Password: "correct horse"})
	var dup *commands.DuplicateUserError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = f.svc.Register(context.Background(), commands.RegisterUser{Username: "bob", Email: "ALICE@example.com", Password: "correct horse"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
	assert.Equal(t, 1, f.log.Len())
}

func TestRegister_PasswordPolicy(t *testing.T) {
	f := newFixture(t)
	for _, pwd := range []string{"short", "Password123"} {
		_, err := f.svc.Register(context.Background(), commands.RegisterUser{Username: "alice", Email: "a@x.com", Password: pwd})
		require.ErrorIs(t, err, commands.ErrValidation, pwd)
	}
	assert.Zero(t, f.log.Len())
}

func TestLogin_RecordsEventWithoutToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@example.com")

	res, err := f.svc.Login(ctx, commands.Login{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	got, err := f.log.Query(ctx, eventlog.Match(eventlog.T(events.KeyDomain, events.DomainLogin)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotContains(t, string(got[0].Payload), res.Token)
	assert.Len(t, f.store.Logins(), 1)

	_, err = f.svc.Login(ctx, commands.Login{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, commands.Login{Username: "ghost", Password: "wrong"})
	require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	assert.Len(t, f.store.Logins(), 1)
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "alice@example.com")

	bio, avatar := "hi", "https://img/a.png"
	_, err := f.svc.UpdateProfile(ctx, commands.UpdateProfile{UserID: u.ID, Bio: &bio, AvatarURL: &avatar})
	require.NoError(t, err)
	bio2 := "bye"
	p, err := f.svc.UpdateProfile(ctx, commands.UpdateProfile{UserID: u.ID, Bio: &bio2})
	require.NoError(t, err)
	assert.Equal(t, "bye", p.Bio)
	assert.Equal(t, avatar, p.AvatarURL)

	_, err = f.svc.UpdateProfile(ctx, commands.UpdateProfile{UserID: "missing", Bio: &bio})
	require.ErrorIs(t, err, commands.ErrNotFound)
}

func TestVerifyEmail_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "alice@example.com")
	require.NoError(t, f.runner.Tick(ctx))
	tok := f.mail.lastToken(t)

	out, err := f.svc.VerifyEmail(ctx, commands.VerifyEmail{Token: tok})
	require.NoError(t, err)
	assert.Equal(t, u.ID, out.UserID)
	assert.False(t, out.AlreadyVerified)

	again, err := f.svc.VerifyEmail(ctx, commands.VerifyEmail{Token: tok})
	require.NoError(t, err)
	assert.True(t, again.AlreadyVerified)

	got, err := f.log.Query(ctx, eventlog.Match(eventlog.T(events.KeyEventType, events.TypeEmailVerified)))
	require.NoError(t, err)
	assert.Len(t, got, 1, "second confirmation emits nothing")

	_, err = f.svc.VerifyEmail(ctx, commands.VerifyEmail{Token: "nope"})
	require.ErrorIs(t, err, commands.ErrNotFound)
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@example.com")
	require.NoError(t, f.runner.Tick(ctx))
	tok := f.mail.lastToken(t)

	f.now = time.Now().UTC().Add(72 * time.Hour)
	_, err := f.svc.VerifyEmail(ctx, commands.VerifyEmail{Token: tok})
	require.ErrorIs(t, err, commands.ErrTokenExpired)
}

// blockingStore cuelga las lecturas hasta que ctx termina.
type blockingStore struct {
	*MemoryStore
}

func (blockingStore) FindByUsername(ctx context.Context, _ string) (*repository.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) FindProfile(ctx context.Context, _ string) (*repository.Profile, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestReads_AreBoundedByQueryTimeout(t *testing.T) {
	log := eventlog.NewMemory()
	issuer, err := jwt.NewIssuer("splice-test", []byte(strings.Repeat("k", 32)), time.Hour)
	require.NoError(t, err)
	svc, err := New(Deps{
		Store:        blockingStore{NewMemoryStore(log)},
		Events:       log,
		Hasher:       password.NewHasher(cheap),
		Tokens:       issuer,
		QueryTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.Login(context.Background(), commands.Login{Username: "alice", Password: "correct horse"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	bio := "hi"
	_, err = svc.UpdateProfile(context.Background(), commands.UpdateProfile{UserID: "u1", Bio: &bio})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, ...eventlog.Draft) ([]eventlog.Event, error) {
	return nil, errors.New("log down")
}

func TestMemoryStore_FailedAppendLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(failingAppender{})

	_, err := s.CreateUser(ctx, repository.User{
		ID: "0190a000-0000-7000-8000-000000000001", Username: "alice",
		Email: "alice@example.com", PasswordHash: "$argon2id$x",
	})
	require.EqualError(t, err, "log down")

	_, err = s.FindByUsername(ctx, "alice")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.FindByUsernameOrEmail(ctx, "", "alice@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.FindProfile(ctx, "0190a000-0000-7000-8000-000000000001")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.Error(t, s.RecordLogin(ctx, repository.LoginRecord{Username: "alice"}))
	assert.Empty(t, s.Logins())
}
