package rpc

import (
	"fmt"
	"log/slog"
)

const gateLogPrefix = "rpc:gate"

// Gate is the ordered admission pipeline. The check order is an observable
// contract: a request failing several conditions reports the first failing
// check, never an arbitrary one. Cheap global checks run before
// identity-dependent checks, which run before stateful ledger checks.
type Gate struct {
	Tuning Tuning
}

// Resolve runs the pipeline against c and returns the resolved handler, or
// the status of the first failing check. No side effects beyond logging.
func (g *Gate) Resolve(c *Context) (Handler, Status) {
	if !c.Role.IsUnlimited() {
		if n := c.Jobs.PendingClientJobs(); n > g.Tuning.MaxQueuedClientJobs {
			slog.Debug(fmt.Sprintf("%s - too busy for command: %d pending client jobs", gateLogPrefix, n))
			return nil, TooBusy
		}
	}

	command, status := commandName(c.Params)
	if !status.OK() {
		return nil, status
	}
	slog.Debug(fmt.Sprintf("%s - command: %s", gateLogPrefix, command))

	handler, ok := c.Registry.Lookup(command)
	if !ok {
		return nil, UnknownCommand
	}

	if handler.RequiredRole() == RoleAdmin && c.Role != RoleAdmin {
		return nil, NoPermission
	}

	conditions := handler.Conditions()

	if conditions&NeedsNetworkConnection != 0 && c.Ledger.SyncMode() < ModeSyncing {
		slog.Info(fmt.Sprintf("%s - insufficient sync mode for %s: %s",
			gateLogPrefix, command, c.Ledger.SyncMode()))
		return nil, NoNetwork
	}

	if c.Ledger.IsAmendmentBlocked() &&
		conditions&(NeedsCurrentLedger|NeedsClosedLedger) != 0 {
		return nil, AmendmentBlocked
	}

	if !c.Ledger.IsStandalone() && conditions&NeedsCurrentLedger != 0 {
		if c.Ledger.ValidatedLedgerAge() > g.Tuning.MaxValidatedLedgerAge {
			return nil, NoCurrent
		}
		current, valid := c.Ledger.CurrentLedgerIndex(), c.Ledger.ValidLedgerIndex()
		if current+ledgerLagTolerance < valid {
			slog.Debug(fmt.Sprintf("%s - current ledger %d trails validated ledger %d",
				gateLogPrefix, current, valid))
			return nil, NoCurrent
		}
	}

	if conditions&NeedsClosedLedger != 0 && !c.Ledger.HasClosedLedger() {
		return nil, NoClosed
	}

	return handler, Success
}

// commandName extracts the command from the two accepted request fields.
// Both may be present but must agree textually.
func commandName(params map[string]any) (string, Status) {
	command, hasCommand := stringField(params, "command")
	method, hasMethod := stringField(params, "method")
	switch {
	case !hasCommand && !hasMethod:
		return "", CommandMissing
	case hasCommand && hasMethod && command != method:
		return "", UnknownCommand
	case hasCommand:
		return command, Success
	default:
		return method, Success
	}
}

func stringField(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	// Non-string values resolve to no name and fail handler lookup.
	s, _ := v.(string)
	return s, true
}
