// Package perflog implements the gateway's call telemetry: a slog-backed
// logger with per-method counters, and reporters that publish call
// lifecycle events to the message bus.
package perflog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const logPrefix = "perflog:logger"

// Counters is a point-in-time view of one method's call counts.
type Counters struct {
	Started  uint64 `json:"started"`
	Finished uint64 `json:"finished"`
	Errored  uint64 `json:"errored"`
}

// Logger records rpc call lifecycle events. It implements rpc.PerfLogger
// and is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	counters map[string]*Counters
	reporter Reporter
}

// New creates a Logger. A nil reporter disables event publishing.
func New(reporter Reporter) *Logger {
	if reporter == nil {
		reporter = NoOpReporter{}
	}
	return &Logger{counters: map[string]*Counters{}, reporter: reporter}
}

func (l *Logger) CallStart(name string, id uint64) {
	slog.Debug(fmt.Sprintf("%s - start %s id=%d", logPrefix, name, id))
	l.bump(name, func(c *Counters) { c.Started++ })
	l.reporter.Report(Event{Kind: EventStart, Method: name, RequestID: id, Timestamp: stamp()})
}

func (l *Logger) CallFinish(name string, id uint64) {
	slog.Debug(fmt.Sprintf("%s - finish %s id=%d", logPrefix, name, id))
	l.bump(name, func(c *Counters) { c.Finished++ })
	l.reporter.Report(Event{Kind: EventFinish, Method: name, RequestID: id, Timestamp: stamp()})
}

func (l *Logger) CallError(name string, id uint64) {
	slog.Warn(fmt.Sprintf("%s - error %s id=%d", logPrefix, name, id))
	l.bump(name, func(c *Counters) { c.Errored++ })
	l.reporter.Report(Event{Kind: EventError, Method: name, RequestID: id, Timestamp: stamp()})
}

// Snapshot returns a copy of all per-method counters.
func (l *Logger) Snapshot() map[string]Counters {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]Counters, len(l.counters))
	for name, c := range l.counters {
		out[name] = *c
	}
	return out
}

func (l *Logger) bump(name string, f func(*Counters)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.counters[name]
	if !ok {
		c = &Counters{}
		l.counters[name] = c
	}
	f(c)
}

func stamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
