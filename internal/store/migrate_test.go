package store

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	migrations "github.com/dropDatabas3/splice/migrations/postgres"
)

func TestParseMigrations_SortsAndIgnoresStrays(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_events.sql":   {Data: []byte("CREATE TABLE events();")},
		"m/0001_accounts.sql": {Data: []byte("CREATE TABLE users();")},
		"m/README.md":         {Data: []byte("docs")},
	}
	got, err := NewMigrator(fsys, "m").ParseMigrations()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "accounts", got[0].Name)
	assert.Equal(t, 2, got[1].Version)
}

func TestParseMigrations_RejectsDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("")},
		"m/001_b.sql":  {Data: []byte("")},
	}
	_, err := NewMigrator(fsys, "m").ParseMigrations()
	require.Error(t, err)
}

func TestEmbeddedSchema(t *testing.T) {
	got, err := NewMigrator(migrations.FS, migrations.Dir).ParseMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, got)
	var all string
	for _, m := range got {
		all += m.SQL
	}
	for _, table := range []string{"users", "user_profiles", "user_logins", "events", "projector_checkpoints"} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
