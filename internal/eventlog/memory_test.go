package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notePayload struct {
	Text string `json:"text"`
	N    int    `json:"n"`
}

func (notePayload) EventType() string { return "NoteTaken" }

func mustDraft(t *testing.T, p Payload, tags ...Tag) Draft {
	t.Helper()
	d, err := NewDraft(p, tags...)
	require.NoError(t, err)
	return d
}

func TestMemory_AppendQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := NewMemory()

	tags := []Tag{T("username", "alice"), T("domain", "login")}
	stored, err := log.Append(ctx, mustDraft(t, notePayload{Text: "hola", N: 7}, tags...))
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got, err := log.Query(ctx, NewQuery(NewTagGroup(tags...)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stored[0].ID, got[0].ID)
	assert.Equal(t, "NoteTaken", got[0].Type)

	p, err := PayloadAs[notePayload](got[0])
	require.NoError(t, err)
	assert.Equal(t, notePayload{Text: "hola", N: 7}, p)
}

func TestMemory_IDsUniqueAndOrderedUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	log := NewMemory()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := log.Append(ctx, mustDraft(t, notePayload{N: i}, T("writer", fmt.Sprint(w))))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	all, err := log.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, writers*perWriter)

	seen := make(map[string]bool, len(all))
	for i, ev := range all {
		assert.Equal(t, Position(i+1), ev.Position)
		assert.False(t, seen[ev.ID], "duplicated id %s", ev.ID)
		seen[ev.ID] = true
		if i > 0 {
			// UUIDv7 en hex: el orden lexicográfico sigue al orden de append.
			assert.Less(t, all[i-1].ID, ev.ID)
		}
	}
}

func TestMemory_BatchIsAtomicForReaders(t *testing.T) {
	ctx := context.Background()
	log := NewMemory()
	q := Match(T("batch", "b"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_, _ = log.Append(ctx,
				mustDraft(t, notePayload{N: 1}, T("batch", "b")),
				mustDraft(t, notePayload{N: 2}, T("batch", "b")),
			)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		got, err := log.Query(ctx, q)
		require.NoError(t, err)
		require.Zero(t, len(got)%2, "observed a partially applied batch")
	}
}

func TestMemory_IndexMatchesNaiveScan(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	log := NewMemory()

	keys := []string{"domain", "userId", "email", "status"}
	randomTag := func() Tag {
		return T(keys[rng.Intn(len(keys))], fmt.Sprint(rng.Intn(4)))
	}

	for i := 0; i < 300; i++ {
		n := rng.Intn(5)
		tags := make([]Tag, n)
		for j := range tags {
			tags[j] = randomTag()
		}
		_, err := log.Append(ctx, mustDraft(t, notePayload{N: i}, tags...))
		require.NoError(t, err)
	}

	all, err := log.All(ctx)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		groups := make([]TagGroup, 1+rng.Intn(3))
		for g := range groups {
			tags := make([]Tag, 1+rng.Intn(3))
			for j := range tags {
				tags[j] = randomTag()
			}
			groups[g] = NewTagGroup(tags...)
		}
		q := NewQuery(groups...)

		var want []Position
		for _, ev := range all {
			if q.Matches(ev.Tags) {
				want = append(want, ev.Position)
			}
		}

		got, err := log.Query(ctx, q)
		require.NoError(t, err)
		var gotPos []Position
		for _, ev := range got {
			gotPos = append(gotPos, ev.Position)
		}
		require.Equal(t, want, gotPos, "query %s", q)
	}
}

func TestMemory_ReadFromCursorAndLimit(t *testing.T) {
	ctx := context.Background()
	log := NewMemory()
	for i := 1; i <= 10; i++ {
		tag := T("parity", "odd")
		if i%2 == 0 {
			tag = T("parity", "even")
		}
		_, err := log.Append(ctx, mustDraft(t, notePayload{N: i}, tag))
		require.NoError(t, err)
	}

	q := Match(T("parity", "even"))
	got, err := log.ReadFrom(ctx, q, 4, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Position(6), got[0].Position)
	assert.Equal(t, Position(8), got[1].Position)

	got, err = log.ReadFrom(ctx, q, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemory_ReturnedEventsAreCopies(t *testing.T) {
	ctx := context.Background()
	log := NewMemory()
	stored, err := log.Append(ctx, mustDraft(t, notePayload{Text: "x"}, T("k", "v")))
	require.NoError(t, err)

	stored[0].Tags[0] = T("k", "mutated")
	stored[0].Payload[0] = '!'

	got, err := log.Query(ctx, Match(T("k", "v")))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, T("k", "v"), got[0].Tags[0])
	assert.True(t, json.Valid(got[0].Payload))
}

func TestMemory_RejectsInvalidQuery(t *testing.T) {
	log := NewMemory()
	_, err := log.Query(context.Background(), NewQuery(NewTagGroup()))
	require.ErrorIs(t, err, ErrEmptyTagGroup)
}
