package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/splice/internal/domain/repository"
	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/store"
)

// Checkpoints persiste la posición de cada proyección en projector_checkpoints.
// Commit confirma los eventos de seguimiento y el avance en la misma transacción.
type Checkpoints struct {
	pool  *pgxpool.Pool
	coord *store.Coordinator
}

func NewCheckpoints(pool *pgxpool.Pool, coord *store.Coordinator) *Checkpoints {
	return &Checkpoints{pool: pool, coord: coord}
}

func (c *Checkpoints) Load(ctx context.Context, name string) (eventlog.Position, error) {
	var pos int64
	err := c.pool.QueryRow(ctx,
		`SELECT position FROM projector_checkpoints WHERE name = $1`, name).Scan(&pos)
	if err != nil {
		if err = mapErr("load checkpoint", err); errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return eventlog.Position(pos), nil
}

func (c *Checkpoints) Commit(ctx context.Context, name string, pos eventlog.Position, drafts []eventlog.Draft) error {
	_, err := c.coord.Do(ctx, "projector.checkpoint", func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error) {
		// El guard evita retroceder si dos runners comparten la proyección.
		_, err := tx.Exec(ctx, `
			INSERT INTO projector_checkpoints (name, position, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (name) DO UPDATE
			SET position = EXCLUDED.position, updated_at = NOW()
			WHERE projector_checkpoints.position < EXCLUDED.position`,
			name, int64(pos))
		if err != nil {
			return nil, mapErr("commit checkpoint", err)
		}
		return drafts, nil
	})
	return err
}
