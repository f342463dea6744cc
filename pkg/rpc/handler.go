package rpc

// Condition is a bit set of node-state preconditions a handler declares; the
// gate refuses to run the handler until all of them hold.
type Condition uint8

const (
	NeedsNetworkConnection Condition = 1 << iota
	NeedsCurrentLedger
	NeedsClosedLedger
)

// HandlerFunc populates result from the request context and returns the
// handler's own status. On error the handler writes its error fields into
// result itself.
type HandlerFunc func(c *Context, result map[string]any) Status

// Handler describes one registered command: its name, the minimum role
// allowed to call it, the node-state preconditions it declares, and its
// value-producing method.
type Handler interface {
	Name() string
	RequiredRole() Role
	Conditions() Condition
	// Method returns the value-producing method, or nil when the command is
	// registered without one (stream subscriptions are served by the
	// transport's streaming side, not through the dispatcher).
	Method() HandlerFunc
}

// Registry resolves command names to handlers. Implementations must be safe
// for concurrent lookups and must not mutate after process startup.
type Registry interface {
	Lookup(command string) (Handler, bool)
}
