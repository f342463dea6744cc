package rpc

import "time"

// Tuning holds the gate's admission thresholds.
type Tuning struct {
	// MaxQueuedClientJobs is the pending client-job count above which
	// non-unlimited callers are shed with TooBusy.
	MaxQueuedClientJobs int
	// MaxValidatedLedgerAge is the oldest the validated ledger may be before
	// commands needing a current ledger fail with NoCurrent.
	MaxValidatedLedgerAge time.Duration
}

// ledgerLagTolerance is how many ledgers the current index may trail the
// validated index before NoCurrent. Fixed; evaluated independently of
// MaxValidatedLedgerAge.
const ledgerLagTolerance = 10

// DefaultTuning returns the production thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		MaxQueuedClientJobs:   500,
		MaxValidatedLedgerAge: 2 * time.Minute,
	}
}
