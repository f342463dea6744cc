package perflog

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/morezero/ledger-gateway/pkg/natsutil"
)

const reporterLogPrefix = "perflog:reporter"

// Event kinds.
const (
	EventStart  = "start"
	EventFinish = "finish"
	EventError  = "error"
)

// Event is one rpc call lifecycle event.
type Event struct {
	Kind      string `json:"kind"`
	Method    string `json:"method"`
	RequestID uint64 `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// Reporter publishes call events.
type Reporter interface {
	Report(event Event)
}

// NoOpReporter discards events (for in-process usage without a bus).
type NoOpReporter struct{}

// Report is a no-op.
func (NoOpReporter) Report(_ Event) {}

// CallbackReporter calls a callback per event (for testing).
type CallbackReporter struct {
	callback func(event Event)
}

// NewCallbackReporter creates a CallbackReporter.
func NewCallbackReporter(cb func(event Event)) *CallbackReporter {
	return &CallbackReporter{callback: cb}
}

// Report calls the callback.
func (r *CallbackReporter) Report(event Event) {
	r.callback(event)
}

// NATSReporter publishes call events to a NATS subject. Publishing is
// fire-and-forget: a failed publish is logged and dropped, never surfaced
// to the request path.
type NATSReporter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSReporter creates a NATSReporter. An empty subject uses the default
// events subject.
func NewNATSReporter(nc *nats.Conn, subject string) *NATSReporter {
	if subject == "" {
		subject = natsutil.SubjectEvents
	}
	return &NATSReporter{nc: nc, subject: subject}
}

// Report publishes the event.
func (r *NATSReporter) Report(event Event) {
	data, err := natsutil.EncodePayload(event)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode event: %v", reporterLogPrefix, err))
		return
	}
	if err := r.nc.Publish(r.subject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", reporterLogPrefix, r.subject, err))
	}
}
