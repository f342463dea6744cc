// Package handlers provides the gateway's built-in command table: the
// handler registry the admission gate resolves command names against.
package handlers

import (
	"sort"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

// entry implements rpc.Handler for one registered command.
type entry struct {
	name       string
	role       rpc.Role
	conditions rpc.Condition
	method     rpc.HandlerFunc
}

func (e *entry) Name() string               { return e.name }
func (e *entry) RequiredRole() rpc.Role     { return e.role }
func (e *entry) Conditions() rpc.Condition  { return e.conditions }
func (e *entry) Method() rpc.HandlerFunc    { return e.method }

// Options customizes table construction.
type Options struct {
	// Shutdown is invoked by the admin stop command. Nil disables the
	// effect; stop still responds.
	Shutdown func()
}

// Table is the static command registry. Built once at startup, read-only
// afterwards, safe for concurrent lookups.
type Table struct {
	entries map[string]*entry
}

// NewTable builds the command table.
func NewTable(opts Options) *Table {
	t := &Table{entries: map[string]*entry{}}
	t.add("ping", rpc.RoleUser, 0, doPing)
	t.add("random", rpc.RoleUser, 0, doRandom)
	t.add("server_info", rpc.RoleUser, 0, doServerInfo)
	t.add("server_state", rpc.RoleUser, 0, doServerState)
	t.add("ledger", rpc.RoleUser, rpc.NeedsNetworkConnection|rpc.NeedsCurrentLedger, doLedger)
	t.add("ledger_current", rpc.RoleUser, rpc.NeedsCurrentLedger, doLedgerCurrent)
	t.add("ledger_closed", rpc.RoleUser, rpc.NeedsClosedLedger, doLedgerClosed)
	t.add("stop", rpc.RoleAdmin, 0, doStop(opts.Shutdown))
	// Subscriptions are served by the transport's streaming side; the entry
	// exists so role resolution works, but it has no value method.
	t.add("subscribe", rpc.RoleUser, rpc.NeedsNetworkConnection, nil)
	return t
}

func (t *Table) add(name string, role rpc.Role, conditions rpc.Condition, method rpc.HandlerFunc) {
	t.entries[name] = &entry{name: name, role: role, conditions: conditions, method: method}
}

// Lookup implements rpc.Registry.
func (t *Table) Lookup(command string) (rpc.Handler, bool) {
	e, ok := t.entries[command]
	if !ok {
		return nil, false
	}
	return e, true
}

// Names returns all registered command names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
