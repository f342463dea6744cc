package natsutil

// Default gateway subjects.
const (
	// SubjectCommands receives request/reply command envelopes.
	SubjectCommands = "ledger.gateway.rpc.v1"
	// SubjectEvents carries rpc call lifecycle events.
	SubjectEvents = "ledger.gateway.rpc.events"
	// SubjectNodeStatus carries the fronted node's status reports.
	SubjectNodeStatus = "ledger.node.status"
)
