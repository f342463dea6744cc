// Package jobq tracks pending client work and load-accounting scopes for
// the gateway. It implements rpc.JobMetrics; the transport brackets each
// in-flight client request with ClientJobStarted/ClientJobFinished so the
// gate can shed load on the resulting gauge.
package jobq

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const logPrefix = "jobq:queue"

// Queue counts pending client jobs and open load-accounting scopes.
type Queue struct {
	pendingClient atomic.Int64
	activeScopes  atomic.Int64
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// ClientJobStarted records one transport-level client job entering the
// system.
func (q *Queue) ClientJobStarted() {
	q.pendingClient.Add(1)
}

// ClientJobFinished records the job leaving, on any path.
func (q *Queue) ClientJobFinished() {
	q.pendingClient.Add(-1)
}

// PendingClientJobs implements rpc.JobMetrics.
func (q *Queue) PendingClientJobs() int {
	return int(q.pendingClient.Load())
}

// BeginLoadAccounting implements rpc.JobMetrics. The returned token must be
// closed exactly once; closing is idempotent and logs the scope's duration.
func (q *Queue) BeginLoadAccounting(kind, label string) rpc.LoadToken {
	q.activeScopes.Add(1)
	return &loadToken{q: q, kind: kind, label: label, started: time.Now()}
}

// ActiveScopes returns the number of open load-accounting scopes.
func (q *Queue) ActiveScopes() int {
	return int(q.activeScopes.Load())
}

type loadToken struct {
	q       *Queue
	kind    string
	label   string
	started time.Time
	once    sync.Once
}

func (t *loadToken) Close() {
	t.once.Do(func() {
		t.q.activeScopes.Add(-1)
		slog.Debug(fmt.Sprintf("%s - %s %s took %s", logPrefix, t.kind, t.label, time.Since(t.started)))
	})
}
