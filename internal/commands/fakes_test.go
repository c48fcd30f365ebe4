package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// fakeHasher "hashea" con un prefijo y cuenta las verificaciones.
type fakeHasher struct {
	mu       sync.Mutex
	verified []string
}

func (h *fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (h *fakeHasher) Verify(plain, digest string) (bool, error) {
	h.mu.Lock()
	h.verified = append(h.verified, digest)
	h.mu.Unlock()
	return strings.TrimPrefix(digest, "hashed:") == plain && strings.HasPrefix(digest, "hashed:"), nil
}

type fakeIssuer struct {
	exp time.Time
	err error
}

func (f fakeIssuer) Issue(subject string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "token-for-" + subject, f.exp, nil
}

// fakeStore es una tabla de usuarios y perfiles en memoria.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]repository.User // por username
	profiles map[string]repository.Profile
	logins   []repository.LoginRecord
	verified map[string]bool
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[string]repository.User{},
		profiles: map[string]repository.Profile{},
		verified: map[string]bool{},
	}
}

func (s *fakeStore) findExisting(_ context.Context, username, email string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) findUser(_ context.Context, username string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *fakeStore) save(_ context.Context, u repository.User) (repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return repository.User{}, s.saveErr
	}
	s.users[u.Username] = u
	s.profiles[u.ID] = repository.Profile{UserID: u.ID, Username: u.Username}
	return u, nil
}

func (s *fakeStore) recordLogin(_ context.Context, rec repository.LoginRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, rec)
	return nil
}

func (s *fakeStore) findProfile(_ context.Context, id string) (*repository.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *fakeStore) updateProfile(_ context.Context, id string, patch repository.ProfilePatch) (repository.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return repository.Profile{}, repository.ErrNotFound
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	s.profiles[id] = p
	return p, nil
}

var errBoom = errors.New("boom")

func ptr(s string) *string { return &s }
