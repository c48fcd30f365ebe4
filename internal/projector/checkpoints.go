package projector

import (
	"context"
	"sync"

	"github.com/dropDatabas3/splice/internal/eventlog"
)

// MemoryCheckpoints guarda los checkpoints en memoria y agrega los drafts al
// log en memoria. Ambos pasos ocurren bajo el mismo lock.
type MemoryCheckpoints struct {
	mu  sync.Mutex
	log eventlog.Appender
	pos map[string]eventlog.Position
}

func NewMemoryCheckpoints(log eventlog.Appender) *MemoryCheckpoints {
	return &MemoryCheckpoints{log: log, pos: make(map[string]eventlog.Position)}
}

func (m *MemoryCheckpoints) Load(_ context.Context, name string) (eventlog.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos[name], nil
}

func (m *MemoryCheckpoints) Commit(ctx context.Context, name string, pos eventlog.Position, drafts []eventlog.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(drafts) > 0 {
		if _, err := m.log.Append(ctx, drafts...); err != nil {
			return err
		}
	}
	if pos > m.pos[name] {
		m.pos[name] = pos
	}
	return nil
}
