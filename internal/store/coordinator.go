package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/metrics"
	"github.com/dropDatabas3/splice/internal/observability/logger"
)

// Beginner abre transacciones. *pgxpool.Pool lo implementa.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxAppender agrega eventos dentro de una transacción ya abierta.
type TxAppender interface {
	AppendTx(ctx context.Context, tx pgx.Tx, drafts ...eventlog.Draft) ([]eventlog.Event, error)
}

// TxFunc ejecuta la mutación relacional y devuelve los eventos que la registran.
type TxFunc func(ctx context.Context, tx pgx.Tx) ([]eventlog.Draft, error)

// DefaultTxTimeout acota la sección crítica cuando no se configura otro valor.
const DefaultTxTimeout = 10 * time.Second

// Coordinator confirma una mutación relacional y sus eventos en la misma
// transacción de PostgreSQL. O se ven ambos o ninguno.
type Coordinator struct {
	db      Beginner
	events  TxAppender
	timeout time.Duration
}

// NewCoordinator crea un coordinador. timeout <= 0 usa DefaultTxTimeout.
func NewCoordinator(db Beginner, events TxAppender, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &Coordinator{db: db, events: events, timeout: timeout}
}

// Do corre fn y agrega sus drafts en una sola transacción.
//
// La cancelación de ctx sólo se respeta antes de Begin: una vez abierta la
// transacción, el trabajo corre con un contexto desacoplado y acotado por el
// timeout del coordinador, y termina en commit o rollback. La conexión vuelve
// al pool en todos los caminos.
func (c *Coordinator) Do(ctx context.Context, op string, fn TxFunc) (events []eventlog.Event, err error) {
	if err := ctx.Err(); err != nil {
		metrics.TxTotal.WithLabelValues(op, "canceled").Inc()
		return nil, err
	}

	log := logger.From(ctx).With(
		logger.Layer("store"),
		logger.Component("coordinator"),
		logger.Op(op),
	)

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.TxDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		result := "commit"
		if err != nil {
			result = "rollback"
		}
		metrics.TxTotal.WithLabelValues(op, result).Inc()
	}()

	tx, err := c.db.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, infra(err))
	}
	defer func() {
		// No-op si ya hubo commit.
		if rbErr := tx.Rollback(txCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn("rollback failed", logger.Err(rbErr))
		}
	}()

	drafts, err := fn(txCtx, tx)
	if err != nil {
		log.Debug("mutation failed, rolling back", logger.Err(err))
		return nil, err
	}

	if len(drafts) > 0 {
		events, err = c.events.AppendTx(txCtx, tx, drafts...)
		if err != nil {
			log.Warn("event append failed, rolling back", logger.Err(err))
			return nil, fmt.Errorf("%s: append events: %w", op, err)
		}
	}

	if err = tx.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, infra(err))
	}

	for _, ev := range events {
		metrics.EventsAppended.WithLabelValues(ev.Type).Inc()
	}
	log.Debug("committed", zap.Int("events", len(events)))
	return events, nil
}
