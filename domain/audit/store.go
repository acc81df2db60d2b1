package audit

import (
	"context"
	"time"
)

// Store is the contract for the append-only log streams. Appends from the
// request path are best-effort: implementations must never surface an
// append failure to a search caller.
type Store interface {
	// AppendSearch queues a search entry for the search stream.
	AppendSearch(entry SearchEntry)

	// AppendFeedback queues a feedback entry for the feedback stream.
	AppendFeedback(entry FeedbackEntry)

	// ReadReverse returns up to limit raw entries of a stream, newest
	// first. Partially written trailing lines are skipped.
	ReadReverse(ctx context.Context, stream Stream, limit int) ([]map[string]any, error)

	// DeleteSince rewrites both streams keeping only entries whose
	// timestamp is strictly older than the cutoff.
	DeleteSince(ctx context.Context, since time.Time) error

	// Purge removes both streams entirely.
	Purge(ctx context.Context) error

	// Close flushes queued entries and stops the writers.
	Close() error
}
