package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/eventlog"
)

func TestRegistry_DecodesEveryDomainPayload(t *testing.T) {
	reg := NewRegistry()
	assert.Len(t, reg.Types(), len(All()))

	log := eventlog.NewMemory()
	p := UserRegistered{UserID: "u1", Username: "alice", Email: "alice@example.com"}
	d, err := eventlog.NewDraft(p, RegisteredTags(p)...)
	require.NoError(t, err)
	stored, err := log.Append(context.Background(), d)
	require.NoError(t, err)

	decoded, err := reg.Decode(stored[0])
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
	assert.NotContains(t, string(stored[0].Payload), "password")
}

func TestQueries_SelectTheRightEvents(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemory()

	reg := UserRegistered{UserID: "u1", Username: "alice", Email: "alice@example.com"}
	login := UserLoggedIn{Username: "alice"}
	failed := VerificationEmailFailed{UserID: "u1", Email: reg.Email, SourceEvent: "ev-1", Error: "smtp down"}
	sent := VerificationEmailSent{UserID: "u1", Email: reg.Email, SourceEvent: "ev-2"}

	for _, pair := range []struct {
		p    eventlog.Payload
		tags []eventlog.Tag
	}{
		{reg, RegisteredTags(reg)},
		{login, LoggedInTags(login)},
		{failed, VerificationFailedTags(failed)},
		{sent, VerificationSentTags(sent, "hash-1")},
	} {
		d, err := eventlog.NewDraft(pair.p, pair.tags...)
		require.NoError(t, err)
		_, err = log.Append(ctx, d)
		require.NoError(t, err)
	}

	got, err := log.Query(ctx, RegistrationsQuery())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, TypeUserRegistered, got[0].Type)

	got, err = log.Query(ctx, VerificationOutcomeQuery("ev-1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].HasTag(eventlog.T(KeyStatus, StatusFailed)))

	got, err = log.Query(ctx, VerificationByTokenQuery("hash-1"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, TypeVerificationEmailSent, got[0].Type)

	got, err = log.Query(ctx, UserHistoryQuery("u1", "alice"))
	require.NoError(t, err)
	assert.Len(t, got, 4)
}
