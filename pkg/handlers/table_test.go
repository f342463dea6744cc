package handlers

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/morezero/ledger-gateway/internal/jobq"
	"github.com/morezero/ledger-gateway/internal/node"
	"github.com/morezero/ledger-gateway/pkg/perflog"
	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const tableTestPrefix = "handlers:table_test"

// syncedNode is a networked node in full sync with a fresh validated ledger.
func syncedNode() *node.Node {
	n := node.New(false)
	n.SetSyncMode(rpc.ModeFull)
	n.MarkValidated(10300870)
	n.AdvanceLedger(10300871)
	n.MarkClosed()
	return n
}

func newRequestContext(t *Table, n *node.Node, params map[string]any, role rpc.Role) *rpc.Context {
	return &rpc.Context{
		Ctx:      context.Background(),
		Role:     role,
		Params:   params,
		Jobs:     jobq.New(),
		Ledger:   n,
		Registry: t,
		Perf:     perflog.New(nil),
	}
}

func dispatch(t *Table, n *node.Node, params map[string]any, role rpc.Role) (rpc.Status, map[string]any) {
	d := rpc.NewDispatcher(rpc.DefaultTuning(), &rpc.RequestIDs{})
	return d.DoCommand(newRequestContext(t, n, params, role))
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable(Options{})

	if _, ok := table.Lookup("ping"); !ok {
		t.Errorf("%s - ping not registered", tableTestPrefix)
	}
	if _, ok := table.Lookup("no_such_command"); ok {
		t.Errorf("%s - unexpected handler for unknown command", tableTestPrefix)
	}

	names := table.Names()
	if len(names) == 0 {
		t.Fatalf("%s - Names returned nothing", tableTestPrefix)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("%s - Names not sorted: %v", tableTestPrefix, names)
		}
	}
}

func TestLedger_Success(t *testing.T) {
	table := NewTable(Options{})
	params := map[string]any{"command": "ledger", "ledger_index": float64(10300865)}

	status, outer := dispatch(table, syncedNode(), params, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - status = %v, want success", tableTestPrefix, status)
	}

	result := outer["result"].(map[string]any)
	if result["status"] != "success" {
		t.Errorf("%s - result.status = %v", tableTestPrefix, result["status"])
	}
	if result["ledger_index"] != uint32(10300865) {
		t.Errorf("%s - ledger_index = %v", tableTestPrefix, result["ledger_index"])
	}
	if result["validated"] != true {
		t.Errorf("%s - validated = %v, want true", tableTestPrefix, result["validated"])
	}
	if _, ok := result["request"]; ok {
		t.Errorf("%s - success result carries a request echo", tableTestPrefix)
	}
}

func TestLedger_AmendmentBlocked(t *testing.T) {
	table := NewTable(Options{})
	n := syncedNode()
	n.SetAmendmentBlocked(true)
	params := map[string]any{"command": "ledger", "ledger_index": float64(10300865)}

	status, outer := dispatch(table, n, params, rpc.RoleUser)
	if status != rpc.AmendmentBlocked {
		t.Fatalf("%s - status = %v, want AmendmentBlocked", tableTestPrefix, status)
	}

	// Admission failure: the triple sits directly in the output object.
	if outer["error"] != "amendmentBlocked" {
		t.Errorf("%s - error = %v", tableTestPrefix, outer["error"])
	}
	if outer["error_code"] != int(rpc.AmendmentBlocked) {
		t.Errorf("%s - error_code = %v", tableTestPrefix, outer["error_code"])
	}
}

func TestPing(t *testing.T) {
	table := NewTable(Options{})
	status, outer := dispatch(table, syncedNode(), map[string]any{"command": "ping"}, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - status = %v", tableTestPrefix, status)
	}
	result := outer["result"].(map[string]any)
	if len(result) != 1 || result["status"] != "success" {
		t.Errorf("%s - ping result = %v, want bare success", tableTestPrefix, result)
	}
}

func TestRandom(t *testing.T) {
	table := NewTable(Options{})
	status, outer := dispatch(table, syncedNode(), map[string]any{"command": "random"}, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - status = %v", tableTestPrefix, status)
	}
	random, ok := outer["result"].(map[string]any)["random"].(string)
	if !ok || len(random) != 64 {
		t.Fatalf("%s - random = %v, want 64 hex chars", tableTestPrefix, random)
	}
	if _, err := hex.DecodeString(random); err != nil {
		t.Errorf("%s - random not hex: %v", tableTestPrefix, err)
	}
}

func TestServerInfo(t *testing.T) {
	table := NewTable(Options{})
	status, outer := dispatch(table, syncedNode(), map[string]any{"command": "server_info"}, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - status = %v", tableTestPrefix, status)
	}
	info, ok := outer["result"].(map[string]any)["info"].(map[string]any)
	if !ok {
		t.Fatalf("%s - no info object", tableTestPrefix)
	}
	if info["server_state"] != "full" {
		t.Errorf("%s - server_state = %v", tableTestPrefix, info["server_state"])
	}
	if _, ok := info["amendment_blocked"]; ok {
		t.Errorf("%s - amendment_blocked reported on a healthy node", tableTestPrefix)
	}
}

func TestLedgerCurrentAndClosed(t *testing.T) {
	table := NewTable(Options{})
	n := syncedNode()

	status, outer := dispatch(table, n, map[string]any{"command": "ledger_current"}, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - ledger_current status = %v", tableTestPrefix, status)
	}
	if outer["result"].(map[string]any)["ledger_current_index"] != uint32(10300871) {
		t.Errorf("%s - ledger_current_index wrong", tableTestPrefix)
	}

	status, outer = dispatch(table, n, map[string]any{"command": "ledger_closed"}, rpc.RoleUser)
	if !status.OK() {
		t.Fatalf("%s - ledger_closed status = %v", tableTestPrefix, status)
	}
	if outer["result"].(map[string]any)["ledger_index"] != uint32(10300870) {
		t.Errorf("%s - closed ledger_index wrong", tableTestPrefix)
	}
}

func TestStop(t *testing.T) {
	stopped := 0
	table := NewTable(Options{Shutdown: func() { stopped++ }})

	// Ordinary callers are refused before the handler runs.
	status, _ := dispatch(table, syncedNode(), map[string]any{"command": "stop"}, rpc.RoleUser)
	if status != rpc.NoPermission {
		t.Fatalf("%s - user stop status = %v, want NoPermission", tableTestPrefix, status)
	}
	if stopped != 0 {
		t.Fatalf("%s - shutdown invoked for refused caller", tableTestPrefix)
	}

	status, outer := dispatch(table, syncedNode(), map[string]any{"command": "stop"}, rpc.RoleAdmin)
	if !status.OK() {
		t.Fatalf("%s - admin stop status = %v", tableTestPrefix, status)
	}
	if stopped != 1 {
		t.Errorf("%s - shutdown invoked %d times, want 1", tableTestPrefix, stopped)
	}
	if outer["result"].(map[string]any)["message"] != "gateway stopping" {
		t.Errorf("%s - stop result = %v", tableTestPrefix, outer["result"])
	}
}

func TestSubscribe_NoValueMethod(t *testing.T) {
	table := NewTable(Options{})
	status, _ := dispatch(table, syncedNode(), map[string]any{"command": "subscribe"}, rpc.RoleUser)
	if status != rpc.UnknownCommand {
		t.Errorf("%s - status = %v, want UnknownCommand", tableTestPrefix, status)
	}
}

func TestRoleRequired(t *testing.T) {
	table := NewTable(Options{})
	if role := rpc.RoleRequired(table, "stop"); role != rpc.RoleAdmin {
		t.Errorf("%s - stop role = %v", tableTestPrefix, role)
	}
	if role := rpc.RoleRequired(table, "subscribe"); role != rpc.RoleUser {
		t.Errorf("%s - subscribe role = %v", tableTestPrefix, role)
	}
	if role := rpc.RoleRequired(table, "nope"); role != rpc.RoleForbidden {
		t.Errorf("%s - unknown role = %v", tableTestPrefix, role)
	}
}
