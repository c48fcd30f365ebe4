package eventlog

import "context"

// Appender appends drafts as one indivisible batch, in order, and returns the
// stored copies.
type Appender interface {
	Append(ctx context.Context, drafts ...Draft) ([]Event, error)
}

// Reader reads consistent snapshots of the log. Results are in append order.
type Reader interface {
	// Query returns every event matching q.
	Query(ctx context.Context, q Query) ([]Event, error)

	// ReadFrom returns up to limit events matching q with Position > after.
	// limit <= 0 means no limit.
	ReadFrom(ctx context.Context, q Query, after Position, limit int) ([]Event, error)

	// All returns the whole log. Diagnostics only.
	All(ctx context.Context) ([]Event, error)
}

// Log is the full append/query contract.
type Log interface {
	Appender
	Reader
}
