// Package audit persists attribution audit records for gateway commands.
// The dispatcher already brackets attributed calls with log lines; the
// store keeps the same records queryable when an audit database is
// configured.
package audit

import (
	"context"
	"time"
)

// Entry is one audited command invocation.
type Entry struct {
	Command      string
	User         string
	ForwardedFor string
	StatusCode   int
	Duration     time.Duration
}

// Recorder receives audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NoOpRecorder discards entries (audit store not configured).
type NoOpRecorder struct{}

// Record is a no-op.
func (NoOpRecorder) Record(_ context.Context, _ Entry) error { return nil }
