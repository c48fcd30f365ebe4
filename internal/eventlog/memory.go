package eventlog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Log with an inverted index from Tag to positions.
// Appends take the write lock for the whole batch, so readers see a batch
// either completely or not at all.
type Memory struct {
	mu     sync.RWMutex
	events []Event // events[i].Position == i+1
	index  map[Tag][]Position
	now    func() time.Time
}

// MemoryOption configures a Memory log.
type MemoryOption func(*Memory)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory returns an empty in-memory log.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		index: make(map[Tag][]Position),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

var _ Log = (*Memory)(nil)

// Append implements Appender.
func (m *Memory) Append(ctx context.Context, drafts ...Draft) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]Event, 0, len(drafts))
	for _, d := range drafts {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("eventlog: generate id: %w", err)
		}
		ev := Event{
			Position:  Position(len(m.events) + len(stored) + 1),
			ID:        id.String(),
			Type:      d.Type,
			Payload:   append([]byte(nil), d.Payload...),
			Tags:      append([]Tag(nil), d.Tags...),
			Timestamp: m.now(),
		}
		stored = append(stored, ev)
	}

	// Indexar recién cuando todo el batch está armado.
	for _, ev := range stored {
		m.events = append(m.events, ev)
		seen := make(map[Tag]struct{}, len(ev.Tags))
		for _, t := range ev.Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			m.index[t] = append(m.index[t], ev.Position)
		}
	}

	out := make([]Event, len(stored))
	for i, ev := range stored {
		out[i] = ev.Clone()
	}
	return out, nil
}

// Query implements Reader.
func (m *Memory) Query(ctx context.Context, q Query) ([]Event, error) {
	return m.ReadFrom(ctx, q, 0, 0)
}

// ReadFrom implements Reader.
func (m *Memory) ReadFrom(ctx context.Context, q Query, after Position, limit int) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	positions := m.match(q)
	start := sort.Search(len(positions), func(i int) bool { return positions[i] > after })
	positions = positions[start:]
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}

	out := make([]Event, len(positions))
	for i, p := range positions {
		out[i] = m.events[p-1].Clone()
	}
	return out, nil
}

// All implements Reader.
func (m *Memory) All(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Clone()
	}
	return out, nil
}

// Len returns the number of stored events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// match intersects posting lists per group and unions the groups. Caller holds mu.
func (m *Memory) match(q Query) []Position {
	var result []Position
	for _, g := range q.groups {
		result = union(result, m.matchGroup(g))
	}
	return result
}

func (m *Memory) matchGroup(g TagGroup) []Position {
	lists := make([][]Position, 0, g.Len())
	for _, t := range g.tags {
		postings := m.index[t]
		if len(postings) == 0 {
			return nil
		}
		lists = append(lists, postings)
	}
	// Empezar por la lista más corta acota el trabajo de las intersecciones.
	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })
	acc := lists[0]
	for _, l := range lists[1:] {
		acc = intersect(acc, l)
		if len(acc) == 0 {
			return nil
		}
	}
	return acc
}

// intersect merges two ascending lists, returning a fresh slice.
func intersect(a, b []Position) []Position {
	out := make([]Position, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// union merges two ascending lists without duplicates, returning a fresh slice.
func union(a, b []Position) []Position {
	out := make([]Position, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
