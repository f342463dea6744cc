package handlers

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

// Handler bodies are deliberately thin reads of the request context's
// collaborators; everything they report comes from the node view and the
// job queue the transport wired in.

func doPing(_ *rpc.Context, _ map[string]any) rpc.Status {
	// A bare success envelope is the entire response.
	return rpc.Success
}

func doRandom(_ *rpc.Context, result map[string]any) rpc.Status {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		rpc.Internal.Inject(result)
		return rpc.Internal
	}
	result["random"] = hex.EncodeToString(b[:])
	return rpc.Success
}

func doServerInfo(c *rpc.Context, result map[string]any) rpc.Status {
	info := map[string]any{
		"server_state":         c.Ledger.SyncMode().String(),
		"validated_ledger_age": int64(c.Ledger.ValidatedLedgerAge().Seconds()),
		"pending_jobs":         c.Jobs.PendingClientJobs(),
	}
	if c.Ledger.IsAmendmentBlocked() {
		info["amendment_blocked"] = true
	}
	if c.Ledger.IsStandalone() {
		info["standalone"] = true
	}
	result["info"] = info
	return rpc.Success
}

func doServerState(c *rpc.Context, result map[string]any) rpc.Status {
	result["state"] = map[string]any{
		"server_state":           c.Ledger.SyncMode().String(),
		"current_ledger_index":   c.Ledger.CurrentLedgerIndex(),
		"validated_ledger_index": c.Ledger.ValidLedgerIndex(),
		"closed_ledger":          c.Ledger.HasClosedLedger(),
	}
	return rpc.Success
}

func doLedger(c *rpc.Context, result map[string]any) rpc.Status {
	index := c.Ledger.CurrentLedgerIndex()
	if v, ok := c.Params["ledger_index"]; ok {
		if f, ok := v.(float64); ok && f >= 0 {
			index = uint32(f)
		}
	}
	result["ledger_index"] = index
	result["validated"] = index <= c.Ledger.ValidLedgerIndex()
	return rpc.Success
}

func doLedgerCurrent(c *rpc.Context, result map[string]any) rpc.Status {
	result["ledger_current_index"] = c.Ledger.CurrentLedgerIndex()
	return rpc.Success
}

func doLedgerClosed(c *rpc.Context, result map[string]any) rpc.Status {
	result["ledger_index"] = c.Ledger.ValidLedgerIndex()
	return rpc.Success
}

func doStop(shutdown func()) rpc.HandlerFunc {
	return func(_ *rpc.Context, result map[string]any) rpc.Status {
		result["message"] = "gateway stopping"
		if shutdown != nil {
			shutdown()
		}
		return rpc.Success
	}
}
