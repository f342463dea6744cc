// Package node tracks the gateway's view of the ledger node it fronts. The
// view is fed by node status events from the message bus (or by setters in
// tests) and read by the admission gate and the command handlers.
package node

import (
	"math"
	"sync"
	"time"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

// neverValidatedAge is reported while no validated ledger has been seen, so
// freshness checks fail closed.
const neverValidatedAge = time.Duration(math.MaxInt64)

// Node is an in-memory rpc.LedgerState implementation. All methods are safe
// for concurrent use.
type Node struct {
	mu               sync.RWMutex
	mode             rpc.SyncMode
	currentIndex     uint32
	validIndex       uint32
	validatedAt      time.Time
	closed           bool
	amendmentBlocked bool
	standalone       bool
}

// New creates a node view. A standalone node starts in full sync with a
// closed genesis ledger, matching how an offline node serves commands
// immediately; a networked node starts disconnected until status events
// arrive.
func New(standalone bool) *Node {
	n := &Node{standalone: standalone}
	if standalone {
		n.mode = rpc.ModeFull
		n.currentIndex = 2
		n.validIndex = 1
		n.validatedAt = time.Now()
		n.closed = true
	}
	return n
}

func (n *Node) SyncMode() rpc.SyncMode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.mode
}

func (n *Node) ValidatedLedgerAge() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.validatedAt.IsZero() {
		return neverValidatedAge
	}
	return time.Since(n.validatedAt)
}

func (n *Node) CurrentLedgerIndex() uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.currentIndex
}

func (n *Node) ValidLedgerIndex() uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.validIndex
}

func (n *Node) HasClosedLedger() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.closed
}

func (n *Node) IsAmendmentBlocked() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.amendmentBlocked
}

func (n *Node) IsStandalone() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.standalone
}

// SetSyncMode updates the reported synchronization state.
func (n *Node) SetSyncMode(mode rpc.SyncMode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mode = mode
}

// SetAmendmentBlocked flags or clears the amendment block.
func (n *Node) SetAmendmentBlocked(blocked bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.amendmentBlocked = blocked
}

// AdvanceLedger moves the in-progress ledger index forward.
func (n *Node) AdvanceLedger(current uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.currentIndex = current
}

// MarkValidated records a newly validated ledger, stamping the validation
// time locally on receipt.
func (n *Node) MarkValidated(valid uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.validIndex = valid
	n.validatedAt = time.Now()
}

// MarkClosed records that a closed ledger exists.
func (n *Node) MarkClosed() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

// StatusEvent is the node's status report as published on the bus.
type StatusEvent struct {
	SyncMode           string `json:"syncMode"`
	CurrentLedgerIndex uint32 `json:"currentLedgerIndex"`
	ValidLedgerIndex   uint32 `json:"validLedgerIndex"`
	HasClosedLedger    bool   `json:"hasClosedLedger"`
	AmendmentBlocked   bool   `json:"amendmentBlocked"`
}

// ApplyStatus folds one status event into the view. An unknown sync mode
// name leaves the mode unchanged. A ValidLedgerIndex advance restamps the
// validation time.
func (n *Node) ApplyStatus(ev StatusEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if mode, ok := rpc.ParseSyncMode(ev.SyncMode); ok {
		n.mode = mode
	}
	n.currentIndex = ev.CurrentLedgerIndex
	if ev.ValidLedgerIndex != n.validIndex || n.validatedAt.IsZero() {
		n.validatedAt = time.Now()
	}
	n.validIndex = ev.ValidLedgerIndex
	n.closed = ev.HasClosedLedger
	n.amendmentBlocked = ev.AmendmentBlocked
}
