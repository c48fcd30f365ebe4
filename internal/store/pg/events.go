package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/metrics"
	"github.com/dropDatabas3/splice/internal/store"
)

// appendLockKey identifica el advisory lock que serializa los appends.
// Con un único escritor a la vez, el orden de seq coincide con el orden de
// commit y un consumidor que avanza por seq nunca se saltea un evento.
const appendLockKey int64 = 0x73706c696365 // "splice"

// EventLog es el event log sobre la tabla events. Los tags se guardan como un
// array JSON de {"key","value"} y un TagGroup se evalúa con contención (@>).
type EventLog struct {
	pool *pgxpool.Pool
}

var (
	_ eventlog.Log     = (*EventLog)(nil)
	_ store.TxAppender = (*EventLog)(nil)
)

func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

// Append abre su propia transacción. Los writers que además mutan tablas
// relacionales usan el Coordinator, que llama a AppendTx.
func (l *EventLog) Append(ctx context.Context, drafts ...eventlog.Draft) ([]eventlog.Event, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, mapErr("begin append", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	events, err := l.AppendTx(ctx, tx, drafts...)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr("commit append", err)
	}
	for _, ev := range events {
		metrics.EventsAppended.WithLabelValues(ev.Type).Inc()
	}
	return events, nil
}

// AppendTx inserta los drafts dentro de tx, en orden.
func (l *EventLog) AppendTx(ctx context.Context, tx pgx.Tx, drafts ...eventlog.Draft) ([]eventlog.Event, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return nil, mapErr("lock events", err)
	}

	const insert = `
		INSERT INTO events (id, type, payload, tags, created_at)
		VALUES ($1::uuid, $2, $3::jsonb, $4::jsonb, clock_timestamp())
		RETURNING seq, created_at`

	events := make([]eventlog.Event, len(drafts))
	batch := &pgx.Batch{}
	for i, d := range drafts {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("pg: generate event id: %w", err)
		}
		tags, err := encodeTags(d.Tags)
		if err != nil {
			return nil, err
		}
		payload := d.Payload
		if len(payload) == 0 {
			payload = json.RawMessage(`null`)
		}
		events[i] = eventlog.Event{
			ID:      id.String(),
			Type:    d.Type,
			Payload: append(json.RawMessage(nil), payload...),
			Tags:    append([]eventlog.Tag(nil), d.Tags...),
		}
		batch.Queue(insert, events[i].ID, d.Type, string(payload), tags)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range events {
		var seq int64
		if err := br.QueryRow().Scan(&seq, &events[i].Timestamp); err != nil {
			_ = br.Close()
			return nil, mapErr("insert event", err)
		}
		events[i].Position = eventlog.Position(seq)
	}
	if err := br.Close(); err != nil {
		return nil, mapErr("insert events", err)
	}
	return events, nil
}

// Query implements eventlog.Reader.
func (l *EventLog) Query(ctx context.Context, q eventlog.Query) ([]eventlog.Event, error) {
	return l.ReadFrom(ctx, q, 0, 0)
}

// ReadFrom implements eventlog.Reader. Una sola sentencia SELECT ve un snapshot
// consistente, así que un batch a medio confirmar nunca aparece.
func (l *EventLog) ReadFrom(ctx context.Context, q eventlog.Query, after eventlog.Position, limit int) ([]eventlog.Event, error) {
	where, args, err := queryWhere(q)
	if err != nil {
		return nil, err
	}
	args = append(args, int64(after))
	sql := `SELECT seq, id::text, type, payload, tags, created_at FROM events WHERE (` + where +
		`) AND seq > $` + strconv.Itoa(len(args)) + ` ORDER BY seq`
	if limit > 0 {
		args = append(args, limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}
	return l.scan(ctx, "query events", sql, args...)
}

// All implements eventlog.Reader.
func (l *EventLog) All(ctx context.Context) ([]eventlog.Event, error) {
	return l.scan(ctx, "all events",
		`SELECT seq, id::text, type, payload, tags, created_at FROM events ORDER BY seq`)
}

// Head devuelve la última posición confirmada (0 si el log está vacío).
func (l *EventLog) Head(ctx context.Context) (eventlog.Position, error) {
	var seq int64
	if err := l.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq); err != nil {
		return 0, mapErr("events head", err)
	}
	return eventlog.Position(seq), nil
}

func (l *EventLog) scan(ctx context.Context, op, sql string, args ...any) ([]eventlog.Event, error) {
	rows, err := l.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var out []eventlog.Event
	for rows.Next() {
		var (
			ev      eventlog.Event
			seq     int64
			payload []byte
			tags    []byte
		)
		if err := rows.Scan(&seq, &ev.ID, &ev.Type, &payload, &tags, &ev.Timestamp); err != nil {
			return nil, mapErr(op, err)
		}
		ev.Position = eventlog.Position(seq)
		ev.Payload = payload
		if ev.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

// queryWhere arma "tags @> $1 OR tags @> $2 ..." con un parámetro por grupo.
func queryWhere(q eventlog.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	groups := q.Groups()
	clauses := make([]string, len(groups))
	args := make([]any, len(groups))
	for i, g := range groups {
		doc, err := encodeTags(g.Tags())
		if err != nil {
			return "", nil, err
		}
		clauses[i] = `tags @> $` + strconv.Itoa(i+1) + `::jsonb`
		args[i] = doc
	}
	return strings.Join(clauses, " OR "), args, nil
}

func encodeTags(tags []eventlog.Tag) (string, error) {
	if tags == nil {
		tags = []eventlog.Tag{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("pg: encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw []byte) ([]eventlog.Tag, error) {
	var tags []eventlog.Tag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("pg: decode tags: %w", err)
	}
	return tags, nil
}
