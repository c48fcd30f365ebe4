package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
)

// fakeDB simula una base con transacciones: lo escrito en un tx sólo se ve
// en committed después de Commit.
type fakeDB struct {
	mu        sync.Mutex
	committed []string
	events    []eventlog.Event
	begun     int
	open      int
	beginErr  error
}

type fakeTx struct {
	pgx.Tx
	db        *fakeDB
	rows      []string
	events    []eventlog.Event
	done      bool
	commitErr error
	rolled    bool
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.begun++
	db.open++
	return &fakeTx{db: db}, nil
}

func (tx *fakeTx) insert(row string) { tx.rows = append(tx.rows, row) }

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.done = true
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.committed = append(tx.db.committed, tx.rows...)
	tx.db.events = append(tx.db.events, tx.events...)
	tx.db.open--
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.rolled = true
	tx.db.mu.Lock()
	tx.db.open--
	tx.db.mu.Unlock()
	return nil
}

type fakeAppender struct {
	err error
}

func (a fakeAppender) AppendTx(ctx context.Context, tx pgx.Tx, drafts ...eventlog.Draft) ([]eventlog.Event, error) {
	if a.err != nil {
		return nil, a.err
	}
	ftx := tx.(*fakeTx)
	out := make([]eventlog.Event, len(drafts))
	for i, d := range drafts {
		out[i] = eventlog.Event{Position: eventlog.Position(i + 1), ID: "ev", Type: d.Type, Tags: d.Tags}
		ftx.events = append(ftx.events, out[i])
	}
	return out, nil
}

func insertUser(name string) TxFunc {
	return func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		tx.(*fakeTx).insert("user:" + name)
		return []eventlog.Draft{{Type: "UserRegistered", Payload: []byte(`{}`), Tags: []eventlog.Tag{eventlog.T("username", name)}}}, nil
	}
}

func TestCoordinator_CommitsRowAndEventsTogether(t *testing.T) {
	db := &fakeDB{}
	c := NewCoordinator(db, fakeAppender{}, 0)

	evs, err := c.Do(context.Background(), "register", insertUser("alice"))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, []string{"user:alice"}, db.committed)
	assert.Len(t, db.events, 1)
	assert.Zero(t, db.open, "connection not released")
}

func TestCoordinator_AppendFailureLeavesNoOrphanRow(t *testing.T) {
	db := &fakeDB{}
	appendErr := errors.New("events table unavailable")
	c := NewCoordinator(db, fakeAppender{err: appendErr}, 0)

	_, err := c.Do(context.Background(), "register", insertUser("alice"))
	require.ErrorIs(t, err, appendErr)
	assert.Empty(t, db.committed, "relational row visible without its event")
	assert.Empty(t, db.events)
	assert.Zero(t, db.open)
}

func TestCoordinator_MutationFailureRollsBack(t *testing.T) {
	db := &fakeDB{}
	c := NewCoordinator(db, fakeAppender{}, 0)
	mutErr := errors.New("constraint")

	var seen *fakeTx
	_, err := c.Do(context.Background(), "register", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		seen = tx.(*fakeTx)
		seen.insert("user:alice")
		return nil, mutErr
	})
	require.ErrorIs(t, err, mutErr)
	assert.True(t, seen.rolled)
	assert.Empty(t, db.committed)
	assert.Zero(t, db.open)
}

func TestCoordinator_CommitFailureIsInfrastructure(t *testing.T) {
	db := &fakeDB{}
	c := NewCoordinator(db, fakeAppender{}, 0)

	_, err := c.Do(context.Background(), "register", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		tx.(*fakeTx).commitErr = errors.New("connection reset")
		return nil, nil
	})
	require.ErrorIs(t, err, repository.ErrInfrastructure)
	assert.Zero(t, db.open)
}

func TestCoordinator_CanceledBeforeBeginNeverStarts(t *testing.T) {
	db := &fakeDB{}
	c := NewCoordinator(db, fakeAppender{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, "register", insertUser("alice"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, db.begun)
}

func TestCoordinator_CancelInsideCriticalSectionStillCommits(t *testing.T) {
	db := &fakeDB{}
	c := NewCoordinator(db, fakeAppender{}, 0)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := c.Do(ctx, "register", func(txCtx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		cancel()
		if txCtx.Err() != nil {
			return nil, txCtx.Err()
		}
		return insertUser("alice")(txCtx, tx)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user:alice"}, db.committed)
}

func TestCoordinator_BeginFailure(t *testing.T) {
	db := &fakeDB{beginErr: errors.New("pool exhausted")}
	c := NewCoordinator(db, fakeAppender{}, 0)
	_, err := c.Do(context.Background(), "register", insertUser("alice"))
	require.ErrorIs(t, err, repository.ErrInfrastructure)
}
