package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/splice/internal/commands"
	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
)

// MemoryStore implementa Store en memoria para desarrollo y tests. Cada
// escritura agrega el evento y muta el estado bajo el mismo lock; si el append
// falla el estado no cambia.
type MemoryStore struct {
	mu       sync.RWMutex
	log      eventlog.Appender
	users    map[string]*repository.User // por id
	byName   map[string]string
	byEmail  map[string]string
	profiles map[string]*repository.Profile
	logins   []repository.LoginRecord
	now      func() time.Time
}

func NewMemoryStore(log eventlog.Appender) *MemoryStore {
	return &MemoryStore{
		log:      log,
		users:    make(map[string]*repository.User),
		byName:   make(map[string]string),
		byEmail:  make(map[string]string),
		profiles: make(map[string]*repository.Profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*repository.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byName[username]; ok {
		u := *m.users[id]
		return &u, nil
	}
	if id, ok := m.byEmail[strings.ToLower(email)]; ok {
		u := *m.users[id]
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MemoryStore) FindByUsername(_ context.Context, username string) (*repository.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := *m.users[id]
	return &u, nil
}

func (m *MemoryStore) FindProfile(_ context.Context, userID string) (*repository.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemoryStore) IsVerified(_ context.Context, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return false, repository.ErrNotFound
	}
	return u.EmailVerified, nil
}

func (m *MemoryStore) CreateUser(ctx context.Context, u repository.User) (repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return repository.User{}, &commands.DuplicateUserError{Field: "username"}
	}
	email := strings.ToLower(u.Email)
	if _, ok := m.byEmail[email]; ok {
		return repository.User{}, &commands.DuplicateUserError{Field: "email"}
	}
	if _, ok := m.users[u.ID]; ok {
		return repository.User{}, fmt.Errorf("memory store: user id %s: %w", u.ID, repository.ErrConflict)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}

	d, err := registeredDraft(u)
	if err != nil {
		return repository.User{}, err
	}
	if _, err := m.log.Append(ctx, d); err != nil {
		return repository.User{}, err
	}

	saved := u
	m.users[u.ID] = &saved
	m.byName[u.Username] = u.ID
	m.byEmail[email] = u.ID
	m.profiles[u.ID] = &repository.Profile{UserID: u.ID, Username: u.Username, UpdatedAt: u.CreatedAt}
	return u, nil
}

func (m *MemoryStore) RecordLogin(ctx context.Context, rec repository.LoginRecord) error {
	d, err := loginDraft(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.log.Append(ctx, d); err != nil {
		return err
	}
	m.logins = append(m.logins, rec)
	return nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, userID string, patch repository.ProfilePatch) (repository.Profile, error) {
	d, err := profileDraft(userID, patch)
	if err != nil {
		return repository.Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repository.Profile{}, repository.ErrNotFound
	}
	if _, err := m.log.Append(ctx, d); err != nil {
		return repository.Profile{}, err
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = *patch.AvatarURL
	}
	p.UpdatedAt = m.now()
	return *p, nil
}

func (m *MemoryStore) MarkVerified(ctx context.Context, v repository.Verification, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[v.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.EmailVerified {
		return nil
	}
	d, err := verifiedDraft(v, at)
	if err != nil {
		return err
	}
	if _, err := m.log.Append(ctx, d); err != nil {
		return err
	}
	u.EmailVerified = true
	return nil
}

// Logins devuelve una copia de los logins registrados.
func (m *MemoryStore) Logins() []repository.LoginRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]repository.LoginRecord(nil), m.logins...)
}
