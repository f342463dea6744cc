// Package rpc implements the admission and dispatch core of the ledger
// gateway. Every incoming command passes the ordered admission pipeline,
// runs inside the invocation wrapper, and leaves as a well-formed result
// envelope; no handler failure escapes this package.
package rpc

// Status identifies the outcome of admission or handler execution. The zero
// value means success. Numeric codes and tokens are part of the wire
// contract: never renumber or rename an existing entry.
type Status int

const (
	Success          Status = 0
	Internal         Status = 1
	TooBusy          Status = 9
	NoPermission     Status = 13
	NoNetwork        Status = 16
	NoCurrent        Status = 17
	NoClosed         Status = 18
	AmendmentBlocked Status = 19
	CommandMissing   Status = 25
	UnknownCommand   Status = 26
)

type statusInfo struct {
	token   string
	message string
}

var statusTable = map[Status]statusInfo{
	Success:          {"", ""},
	Internal:         {"internal", "Internal error."},
	TooBusy:          {"tooBusy", "The server is too busy to help you now."},
	NoPermission:     {"noPermission", "You don't have permission for this command."},
	NoNetwork:        {"noNetwork", "Not synced to the network."},
	NoCurrent:        {"noCurrent", "Current ledger is unavailable."},
	NoClosed:         {"noClosed", "Closed ledger is unavailable."},
	AmendmentBlocked: {"amendmentBlocked", "Amendment blocked, need upgrade."},
	CommandMissing:   {"commandMissing", "Missing command entry."},
	UnknownCommand:   {"unknownCmd", "Unknown command."},
}

// OK reports whether s denotes success.
func (s Status) OK() bool { return s == Success }

// Token returns the canonical wire token for s, empty for success.
func (s Status) Token() string { return statusTable[s].token }

// Message returns the canonical human-readable message for s.
func (s Status) Message() string { return statusTable[s].message }

// String formats s for logs.
func (s Status) String() string {
	if s.OK() {
		return "success"
	}
	return s.Token()
}

// Inject writes the error triple for s into result. Handlers use the same
// shape for their own error fields, so an injected result is
// indistinguishable from a handler-reported error on the wire.
func (s Status) Inject(result map[string]any) {
	result["error"] = s.Token()
	result["error_code"] = int(s)
	result["error_message"] = s.Message()
}
