package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

func verifyFixture(now time.Time) (*fakeStore, VerifyEmailPorts) {
	s := newFakeStore()
	issued := now.Add(-time.Hour)
	return s, VerifyEmailPorts{
		FindVerification: func(_ context.Context, token string) (*repository.Verification, error) {
			if token != "tok" {
				return nil, nil
			}
			return &repository.Verification{TokenHash: "h", UserID: "u1", Email: "a@x.com", IssuedAt: issued}, nil
		},
		IsVerified: func(_ context.Context, id string) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.verified[id], nil
		},
		MarkVerified: func(_ context.Context, v repository.Verification, _ time.Time) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.verified[v.UserID] = true
			return nil
		},
		TTL: 48 * time.Hour,
		Now: func() time.Time { return now },
	}
}

func TestVerifyEmail_MarksOnceThenIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s, ports := verifyFixture(now)
	ctx := context.Background()

	got, err := ConfirmEmail(ctx, VerifyEmail{Token: "tok"}, ports)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.AlreadyVerified)
	assert.True(t, s.verified["u1"])

	got, err = ConfirmEmail(ctx, VerifyEmail{Token: "tok"}, ports)
	require.NoError(t, err)
	assert.True(t, got.AlreadyVerified)
}

func TestVerifyEmail_Errors(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	_, ports := verifyFixture(now)
	ctx := context.Background()

	_, err := ConfirmEmail(ctx, VerifyEmail{Token: ""}, ports)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ConfirmEmail(ctx, VerifyEmail{Token: "unknown"}, ports)
	assert.ErrorIs(t, err, ErrNotFound)

	ports.TTL = 30 * time.Minute
	_, err = ConfirmEmail(ctx, VerifyEmail{Token: "tok"}, ports)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
