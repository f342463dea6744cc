// Package server orchestrates all components: NATS transport, HTTP
// transport, node view, job queue, command table, dispatcher, telemetry,
// and the optional audit store.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/morezero/ledger-gateway/internal/audit"
	"github.com/morezero/ledger-gateway/internal/config"
	"github.com/morezero/ledger-gateway/internal/jobq"
	"github.com/morezero/ledger-gateway/internal/node"
	"github.com/morezero/ledger-gateway/pkg/handlers"
	"github.com/morezero/ledger-gateway/pkg/natsutil"
	"github.com/morezero/ledger-gateway/pkg/perflog"
	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const logPrefix = "server:server"

// Server is the ledger-gateway orchestrator.
type Server struct {
	cfg      *config.Config
	baseCtx  context.Context
	node     *node.Node
	jobs     *jobq.Queue
	perf     *perflog.Logger
	table    *handlers.Table
	disp     *rpc.Dispatcher
	recorder audit.Recorder

	stopOnce sync.Once
	stopCh   chan struct{}

	httpServer *http.Server
}

// newServer wires every in-process component; transports are attached by
// Run (or by tests).
func newServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		baseCtx:  context.Background(),
		node:     node.New(cfg.Standalone),
		jobs:     jobq.New(),
		perf:     perflog.New(nil),
		recorder: audit.NoOpRecorder{},
		stopCh:   make(chan struct{}),
	}
	s.table = handlers.NewTable(handlers.Options{Shutdown: s.requestStop})
	s.disp = rpc.NewDispatcher(cfg.Tuning(), &rpc.RequestIDs{})
	return s
}

// requestStop asks the serve loop to shut down; used by the admin stop
// command.
func (s *Server) requestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// newContext builds the per-request rpc context over the server's
// collaborators.
func (s *Server) newContext(ctx context.Context, role rpc.Role, headers rpc.Headers, params map[string]any) *rpc.Context {
	return &rpc.Context{
		Ctx:      ctx,
		Role:     role,
		Headers:  headers,
		Params:   params,
		Jobs:     s.jobs,
		Ledger:   s.node,
		Registry: s.table,
		Perf:     s.perf,
	}
}

// dispatch runs one decoded request through the core and records the audit
// entry for attributed calls.
func (s *Server) dispatch(ctx context.Context, role rpc.Role, headers rpc.Headers, params map[string]any) (rpc.Status, map[string]any) {
	c := s.newContext(ctx, role, headers, params)
	started := time.Now()
	status, outer := s.disp.DoCommand(c)

	if headers.Attributed() {
		command, _ := params["command"].(string)
		entry := audit.Entry{
			Command:      command,
			User:         headers.User,
			ForwardedFor: headers.ForwardedFor,
			StatusCode:   int(status),
			Duration:     time.Since(started),
		}
		if err := s.recorder.Record(ctx, entry); err != nil {
			slog.Error(fmt.Sprintf("%s - audit record failed: %v", logPrefix, err))
		}
	}
	return status, outer
}

// handleCommand serves one socket-style request from the command subject.
func (s *Server) handleCommand(msg *nats.Msg) {
	s.jobs.ClientJobStarted()
	defer s.jobs.ClientJobFinished()

	params := map[string]any{}
	if err := natsutil.DecodePayload(msg.Data, &params); err != nil {
		// An undecodable body carries no command field; the gate reports
		// CommandMissing through the normal path.
		slog.Warn(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
		params = map[string]any{}
	}

	headers := rpc.Headers{
		User:         msg.Header.Get("X-User"),
		ForwardedFor: msg.Header.Get("X-Forwarded-For"),
	}
	adminToken, _ := params["admin_token"].(string)
	delete(params, "admin_token")
	role := callerRole(adminToken, s.cfg.AdminToken, headers)

	reqCtx, cancel := context.WithTimeout(s.baseCtx, s.cfg.RequestTimeout)
	defer cancel()

	id := params["id"]
	_, outer := s.dispatch(reqCtx, role, headers, params)

	data, err := natsutil.EncodePayload(socketEnvelope(id, outer))
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
		return
	}
	msg.Respond(data)
}

// handleNodeStatus folds one node status report into the ledger view.
func (s *Server) handleNodeStatus(msg *nats.Msg) {
	var ev node.StatusEvent
	if err := natsutil.DecodePayload(msg.Data, &ev); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to decode node status: %v", logPrefix, err))
		return
	}
	s.node.ApplyStatus(ev)
}

// handleRPC serves the HTTP JSON-RPC placement: status stays inside result.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		params = map[string]any{}
	}

	headers := rpc.Headers{
		User:         r.Header.Get("X-User"),
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
	}
	role := callerRole(r.Header.Get("X-Admin-Token"), s.cfg.AdminToken, headers)

	// Authorization precheck on the bare command name, before a request
	// context is constructed.
	if command, ok := params["command"].(string); ok {
		if rpc.RoleRequired(s.table, command) == rpc.RoleAdmin && role != rpc.RoleAdmin {
			denied := map[string]any{}
			rpc.NoPermission.Inject(denied)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(httpEnvelope(denied))
			return
		}
	}

	s.jobs.ClientJobStarted()
	defer s.jobs.ClientJobFinished()

	reqCtx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	_, outer := s.dispatch(reqCtx, role, headers, params)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(httpEnvelope(outer))
}

// Run starts the gateway, blocks until a shutdown signal or an admin stop
// command, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("%s - Starting ledger-gateway", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newServer(cfg)
	s.baseCtx = ctx

	// Audit store (optional).
	if cfg.AuditDatabaseURL != "" {
		store, err := audit.NewStore(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			return fmt.Errorf("%s - failed to open audit store: %w", logPrefix, err)
		}
		defer store.Close()
		s.recorder = store
	}

	// NATS transport.
	nc, err := natsutil.Connect(cfg.NATSURL, cfg.NATSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	defer nc.Close()

	s.perf = perflog.New(perflog.NewNATSReporter(nc, cfg.EventSubject))

	commandSubject := cfg.CommandSubject
	if commandSubject == "" {
		commandSubject = natsutil.SubjectCommands
	}
	sub, err := nc.Subscribe(commandSubject, s.handleCommand)
	if err != nil {
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, commandSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, commandSubject))

	statusSubject := cfg.NodeStatusSubject
	if statusSubject == "" {
		statusSubject = natsutil.SubjectNodeStatus
	}
	statusSub, err := nc.Subscribe(statusSubject, s.handleNodeStatus)
	if err != nil {
		sub.Unsubscribe()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, statusSubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, statusSubject))

	// HTTP transport.
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":       "ok",
			"server_state": s.node.SyncMode().String(),
			"pending_jobs": s.jobs.PendingClientJobs(),
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.perf.Snapshot())
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Ledger-gateway is ready", logPrefix))

	// Wait for shutdown signal or admin stop.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))
	case <-s.stopCh:
		slog.Info(fmt.Sprintf("%s - Stop command received, shutting down", logPrefix))
	}

	// Graceful shutdown.
	sub.Unsubscribe()
	statusSub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// homeData feeds the HTML status page.
type homeData struct {
	ServerState      string
	CurrentIndex     uint32
	ValidIndex       uint32
	ClosedLedger     bool
	AmendmentBlocked bool
	Standalone       bool
	PendingJobs      int
	ActiveScopes     int
	Commands         []string
	Counters         map[string]perflog.Counters
}

func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data := homeData{
			ServerState:      s.node.SyncMode().String(),
			CurrentIndex:     s.node.CurrentLedgerIndex(),
			ValidIndex:       s.node.ValidLedgerIndex(),
			ClosedLedger:     s.node.HasClosedLedger(),
			AmendmentBlocked: s.node.IsAmendmentBlocked(),
			Standalone:       s.node.IsStandalone(),
			PendingJobs:      s.jobs.PendingClientJobs(),
			ActiveScopes:     s.jobs.ActiveScopes(),
			Commands:         s.table.Names(),
			Counters:         s.perf.Snapshot(),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home page render: %v", logPrefix, err))
		}
	}
}

// homePageTemplate is the HTML for the gateway status page (white bg,
// black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Ledger Gateway</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #0066cc; }
    table { border-collapse: collapse; max-width: 700px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.4rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .warn { color: #cc0000; font-weight: bold; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>Ledger Gateway</h1>

  <section>
    <h2>Node</h2>
    <p>Sync state: <span class="stat">{{.ServerState}}</span>{{if .Standalone}} (standalone){{end}}</p>
    <p>Current ledger: <span class="stat">{{.CurrentIndex}}</span>,
       validated: <span class="stat">{{.ValidIndex}}</span>,
       closed ledger: {{if .ClosedLedger}}yes{{else}}no{{end}}</p>
    {{if .AmendmentBlocked}}<p class="warn">Amendment blocked</p>{{end}}
  </section>

  <section>
    <h2>Load</h2>
    <p>Pending client jobs: <span class="stat">{{.PendingJobs}}</span>,
       active load scopes: <span class="stat">{{.ActiveScopes}}</span></p>
  </section>

  <section>
    <h2>Commands</h2>
    <table>
      <tr><th>Command</th><th>Started</th><th>Finished</th><th>Errored</th></tr>
      {{range .Commands}}
      <tr>
        <td>{{.}}</td>
        {{with index $.Counters .}}
        <td>{{.Started}}</td><td>{{.Finished}}</td><td>{{.Errored}}</td>
        {{else}}
        <td>0</td><td>0</td><td>0</td>
        {{end}}
      </tr>
      {{end}}
    </table>
  </section>
</body>
</html>
`
