package rpc

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

const invokeLogPrefix = "rpc:invoke"

// RequestIDs hands out process-wide request identities: strictly increasing,
// never reused, safe for concurrent use. Injected rather than global so
// tests can assert on a deterministic sequence.
type RequestIDs struct {
	last atomic.Uint64
}

// Next returns the next identity.
func (r *RequestIDs) Next() uint64 {
	return r.last.Add(1)
}

// Invoker brackets handler execution with telemetry and load accounting and
// keeps handler failures from crossing the dispatch boundary.
type Invoker struct {
	IDs *RequestIDs
}

// Call runs method under a fresh request identity. Telemetry receives a
// start event and exactly one matching finish or error event on every exit
// path, and the load-accounting token is released on every exit path. A
// handler panic is logged, escalates the request's load classification to
// exception cost (at most once), writes a generic Internal error into
// result, and surfaces as Internal; it never propagates further.
func (iv *Invoker) Call(c *Context, method HandlerFunc, name string, result map[string]any) (status Status) {
	id := iv.IDs.Next()
	c.Perf.CallStart(name, id)

	token := c.Jobs.BeginLoadAccounting(JobGeneric, "cmd:"+name)
	defer token.Close()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		c.Perf.CallError(name, id)
		slog.Info(fmt.Sprintf("%s - handler %s failed: %v", invokeLogPrefix, name, r))
		if c.LoadType == FeeReference {
			c.LoadType = FeeException
		}
		Internal.Inject(result)
		status = Internal
	}()

	status = method(c, result)
	c.Perf.CallFinish(name, id)
	return status
}
