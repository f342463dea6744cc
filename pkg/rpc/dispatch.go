package rpc

import (
	"fmt"
	"log/slog"
)

const dispatchLogPrefix = "rpc:dispatch"

// Dispatcher composes the admission gate and the invocation wrapper into the
// gateway's single entry point for commands.
type Dispatcher struct {
	gate    Gate
	invoker Invoker
}

// NewDispatcher creates a Dispatcher with the given admission thresholds and
// request-identity source.
func NewDispatcher(tuning Tuning, ids *RequestIDs) *Dispatcher {
	return &Dispatcher{
		gate:    Gate{Tuning: tuning},
		invoker: Invoker{IDs: ids},
	}
}

// DoCommand admits, invokes, and envelopes one request. Admission failures
// never reach a handler: their error triple is written directly into the
// returned object, with no nested result and no request echo. Attributed
// calls are bracketed with audit log lines. A resolved handler without a
// value method yields UnknownCommand.
func (d *Dispatcher) DoCommand(c *Context) (Status, map[string]any) {
	outer := map[string]any{}

	handler, status := d.gate.Resolve(c)
	if !status.OK() {
		status.Inject(outer)
		return status, outer
	}

	method := handler.Method()
	if method == nil {
		UnknownCommand.Inject(outer)
		return UnknownCommand, outer
	}

	name := handler.Name()
	if c.Headers.Attributed() {
		slog.Debug(fmt.Sprintf("%s - start command: %s, user: %s, forwarded for: %s",
			dispatchLogPrefix, name, c.Headers.User, c.Headers.ForwardedFor))
		status = d.invoker.BuildResult(c, method, name, outer)
		slog.Debug(fmt.Sprintf("%s - finish command: %s, user: %s, forwarded for: %s",
			dispatchLogPrefix, name, c.Headers.User, c.Headers.ForwardedFor))
		return status, outer
	}

	return d.invoker.BuildResult(c, method, name, outer), outer
}
