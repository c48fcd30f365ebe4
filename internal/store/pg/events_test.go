package pg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
)

func TestQueryWhere_OneContainmentPerGroup(t *testing.T) {
	q := eventlog.NewQuery(
		eventlog.NewTagGroup(eventlog.T("domain", "registration"), eventlog.T("eventType", "UserRegistered")),
		eventlog.NewTagGroup(eventlog.T("userId", "u1")),
	)
	where, args, err := queryWhere(q)
	require.NoError(t, err)
	assert.Equal(t, "tags @> $1::jsonb OR tags @> $2::jsonb", where)
	require.Len(t, args, 2)
	assert.JSONEq(t, `[{"key":"domain","value":"registration"},{"key":"eventType","value":"UserRegistered"}]`, args[0].(string))
	assert.JSONEq(t, `[{"key":"userId","value":"u1"}]`, args[1].(string))
}

func TestQueryWhere_RejectsEmptyGroups(t *testing.T) {
	_, _, err := queryWhere(eventlog.NewQuery(eventlog.NewTagGroup()))
	require.ErrorIs(t, err, eventlog.ErrEmptyTagGroup)
	_, _, err = queryWhere(eventlog.NewQuery())
	require.ErrorIs(t, err, eventlog.ErrEmptyQuery)
}

func TestTagsRoundTrip(t *testing.T) {
	raw, err := encodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	in := []eventlog.Tag{eventlog.T("a", "1"), eventlog.T("a", "1"), eventlog.T("b", "x=y")}
	raw, err = encodeTags(in)
	require.NoError(t, err)
	out, err := decodeTags([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMapErr(t *testing.T) {
	assert.ErrorIs(t, mapErr("op", pgx.ErrNoRows), repository.ErrNotFound)

	err := mapErr("op", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}))
	var ce *repository.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email", ce.Field)
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = mapErr("find profile", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "missing"`})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = mapErr("op", errors.New("connection refused"))
	assert.ErrorIs(t, err, repository.ErrInfrastructure)
	assert.NoError(t, mapErr("op", nil))
}
