package rpc

import "context"

// Headers carries optional caller attribution forwarded by the transport.
type Headers struct {
	User         string
	ForwardedFor string
}

// Attributed reports whether any attribution is present; attributed calls
// get audit log bracketing in the dispatcher.
func (h Headers) Attributed() bool {
	return h.User != "" || h.ForwardedFor != ""
}

// LoadType classifies a request for resource-fee accounting. The wrapper
// escalates a reference-cost request to exception cost when its handler
// fails unexpectedly.
type LoadType int

const (
	FeeReference LoadType = iota
	FeeException
)

// Context is the per-request state: caller identity, raw parameters, the
// mutable load classification, and references to the external collaborators
// the pipeline consults. The transport builds one per request; it is owned
// exclusively by the goroutine processing that request and never shared.
type Context struct {
	Ctx      context.Context
	Role     Role
	Headers  Headers
	Params   map[string]any
	LoadType LoadType

	Jobs     JobMetrics
	Ledger   LedgerState
	Registry Registry
	Perf     PerfLogger
}
