package rpc

import (
	"context"
	"fmt"
	"time"
)

// stubLedger is a settable LedgerState for pipeline tests.
type stubLedger struct {
	mode       SyncMode
	age        time.Duration
	current    uint32
	valid      uint32
	closed     bool
	blocked    bool
	standalone bool
}

func (l *stubLedger) SyncMode() SyncMode                { return l.mode }
func (l *stubLedger) ValidatedLedgerAge() time.Duration { return l.age }
func (l *stubLedger) CurrentLedgerIndex() uint32        { return l.current }
func (l *stubLedger) ValidLedgerIndex() uint32          { return l.valid }
func (l *stubLedger) HasClosedLedger() bool             { return l.closed }
func (l *stubLedger) IsAmendmentBlocked() bool          { return l.blocked }
func (l *stubLedger) IsStandalone() bool                { return l.standalone }

// healthyLedger is a fully synced node with a fresh current ledger.
func healthyLedger() *stubLedger {
	return &stubLedger{
		mode:    ModeFull,
		age:     10 * time.Second,
		current: 100,
		valid:   100,
		closed:  true,
	}
}

type stubToken struct {
	kind, label string
	closes      int
}

func (t *stubToken) Close() { t.closes++ }

type stubJobs struct {
	pending int
	tokens  []*stubToken
}

func (j *stubJobs) PendingClientJobs() int { return j.pending }

func (j *stubJobs) BeginLoadAccounting(kind, label string) LoadToken {
	token := &stubToken{kind: kind, label: label}
	j.tokens = append(j.tokens, token)
	return token
}

// stubPerf records lifecycle events as "kind:name:id" strings so tests can
// assert on exact ordering.
type stubPerf struct {
	events []string
}

func (p *stubPerf) CallStart(name string, id uint64) {
	p.events = append(p.events, fmt.Sprintf("start:%s:%d", name, id))
}

func (p *stubPerf) CallFinish(name string, id uint64) {
	p.events = append(p.events, fmt.Sprintf("finish:%s:%d", name, id))
}

func (p *stubPerf) CallError(name string, id uint64) {
	p.events = append(p.events, fmt.Sprintf("error:%s:%d", name, id))
}

type stubHandler struct {
	name       string
	role       Role
	conditions Condition
	method     HandlerFunc
}

func (h *stubHandler) Name() string        { return h.name }
func (h *stubHandler) RequiredRole() Role  { return h.role }
func (h *stubHandler) Conditions() Condition { return h.conditions }
func (h *stubHandler) Method() HandlerFunc { return h.method }

type stubRegistry map[string]*stubHandler

func (r stubRegistry) Lookup(command string) (Handler, bool) {
	h, ok := r[command]
	if !ok {
		return nil, false
	}
	return h, true
}

func okMethod(_ *Context, result map[string]any) Status {
	result["done"] = true
	return Success
}

// newTestContext builds a request context over the given fakes, filling
// healthy defaults for anything nil.
func newTestContext(params map[string]any, role Role, reg Registry, ledger LedgerState, jobs JobMetrics, perf PerfLogger) *Context {
	if ledger == nil {
		ledger = healthyLedger()
	}
	if jobs == nil {
		jobs = &stubJobs{}
	}
	if perf == nil {
		perf = &stubPerf{}
	}
	return &Context{
		Ctx:      context.Background(),
		Role:     role,
		Params:   params,
		Jobs:     jobs,
		Ledger:   ledger,
		Registry: reg,
		Perf:     perf,
	}
}
