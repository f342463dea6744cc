package node

import (
	"testing"
	"time"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const nodeTestPrefix = "node:node_test"

func TestNew_Standalone(t *testing.T) {
	n := New(true)

	if !n.IsStandalone() {
		t.Errorf("%s - not standalone", nodeTestPrefix)
	}
	if n.SyncMode() != rpc.ModeFull {
		t.Errorf("%s - mode = %v, want full", nodeTestPrefix, n.SyncMode())
	}
	if !n.HasClosedLedger() {
		t.Errorf("%s - standalone node must have a closed genesis ledger", nodeTestPrefix)
	}
	if n.ValidatedLedgerAge() > time.Minute {
		t.Errorf("%s - standalone validated age too old", nodeTestPrefix)
	}
}

func TestNew_Networked(t *testing.T) {
	n := New(false)

	if n.SyncMode() != rpc.ModeDisconnected {
		t.Errorf("%s - mode = %v, want disconnected", nodeTestPrefix, n.SyncMode())
	}
	if n.HasClosedLedger() {
		t.Errorf("%s - fresh networked node has a closed ledger", nodeTestPrefix)
	}
	// Freshness checks must fail closed before the first validation.
	if n.ValidatedLedgerAge() < 100*24*time.Hour {
		t.Errorf("%s - never-validated age = %v, want effectively infinite", nodeTestPrefix, n.ValidatedLedgerAge())
	}
}

func TestSetters(t *testing.T) {
	n := New(false)

	n.SetSyncMode(rpc.ModeTracking)
	n.AdvanceLedger(42)
	n.MarkValidated(41)
	n.MarkClosed()
	n.SetAmendmentBlocked(true)

	if n.SyncMode() != rpc.ModeTracking {
		t.Errorf("%s - mode = %v", nodeTestPrefix, n.SyncMode())
	}
	if n.CurrentLedgerIndex() != 42 || n.ValidLedgerIndex() != 41 {
		t.Errorf("%s - indices = %d/%d", nodeTestPrefix, n.CurrentLedgerIndex(), n.ValidLedgerIndex())
	}
	if !n.HasClosedLedger() || !n.IsAmendmentBlocked() {
		t.Errorf("%s - closed/blocked flags wrong", nodeTestPrefix)
	}
	if n.ValidatedLedgerAge() > time.Minute {
		t.Errorf("%s - validated age = %v", nodeTestPrefix, n.ValidatedLedgerAge())
	}
}

func TestApplyStatus(t *testing.T) {
	n := New(false)

	n.ApplyStatus(StatusEvent{
		SyncMode:           "syncing",
		CurrentLedgerIndex: 1000,
		ValidLedgerIndex:   995,
		HasClosedLedger:    true,
	})

	if n.SyncMode() != rpc.ModeSyncing {
		t.Errorf("%s - mode = %v, want syncing", nodeTestPrefix, n.SyncMode())
	}
	if n.CurrentLedgerIndex() != 1000 || n.ValidLedgerIndex() != 995 {
		t.Errorf("%s - indices = %d/%d", nodeTestPrefix, n.CurrentLedgerIndex(), n.ValidLedgerIndex())
	}
	if !n.HasClosedLedger() {
		t.Errorf("%s - closed flag not applied", nodeTestPrefix)
	}
	if n.ValidatedLedgerAge() > time.Minute {
		t.Errorf("%s - validation not restamped", nodeTestPrefix)
	}

	// Unknown mode names leave the mode unchanged.
	n.ApplyStatus(StatusEvent{SyncMode: "warp", CurrentLedgerIndex: 1001, ValidLedgerIndex: 996, HasClosedLedger: true})
	if n.SyncMode() != rpc.ModeSyncing {
		t.Errorf("%s - unknown mode name changed the mode to %v", nodeTestPrefix, n.SyncMode())
	}
}
