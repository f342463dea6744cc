package rpc

import "time"

// Load-accounting job kinds passed to JobMetrics.BeginLoadAccounting.
const (
	JobGeneric = "generic"
	JobClient  = "client"
)

// JobMetrics exposes queue depth and scoped load accounting from the job
// subsystem.
type JobMetrics interface {
	// PendingClientJobs returns the number of client-class jobs waiting to
	// run; the gate sheds non-unlimited callers above the tuned threshold.
	PendingClientJobs() int
	// BeginLoadAccounting opens a load-accounting scope for one unit of
	// work. The returned token must be closed exactly once when the work
	// finishes, on every exit path.
	BeginLoadAccounting(kind, label string) LoadToken
}

// LoadToken is a scoped load-accounting handle.
type LoadToken interface {
	Close()
}

// SyncMode is the node's synchronization state, ordered from least to most
// synced.
type SyncMode int

const (
	ModeDisconnected SyncMode = iota
	ModeConnected
	ModeSyncing
	ModeTracking
	ModeFull
)

var syncModeNames = map[SyncMode]string{
	ModeDisconnected: "disconnected",
	ModeConnected:    "connected",
	ModeSyncing:      "syncing",
	ModeTracking:     "tracking",
	ModeFull:         "full",
}

func (m SyncMode) String() string {
	if name, ok := syncModeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseSyncMode maps a mode name back to its SyncMode.
func ParseSyncMode(name string) (SyncMode, bool) {
	for mode, n := range syncModeNames {
		if n == name {
			return mode, true
		}
	}
	return ModeDisconnected, false
}

// LedgerState reports the node's synchronization and ledger availability.
type LedgerState interface {
	SyncMode() SyncMode
	ValidatedLedgerAge() time.Duration
	CurrentLedgerIndex() uint32
	ValidLedgerIndex() uint32
	HasClosedLedger() bool
	IsAmendmentBlocked() bool
	IsStandalone() bool
}

// PerfLogger receives call lifecycle events from the invocation wrapper.
// Every CallStart is matched by exactly one CallFinish or CallError.
type PerfLogger interface {
	CallStart(name string, id uint64)
	CallFinish(name string, id uint64)
	CallError(name string, id uint64)
}
