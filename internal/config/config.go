// Package config provides gateway configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/ledger-gateway/pkg/rpc"
)

const logPrefix = "config:LoadConfig"

// Config holds ledger-gateway configuration.
type Config struct {
	// NATS connection.
	NATSURL  string `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`
	NATSName string `envconfig:"SERVICE_NAME" default:"ledger-gateway"`

	// Subject overrides (empty = package defaults).
	CommandSubject    string `envconfig:"GATEWAY_COMMAND_SUBJECT"`
	EventSubject      string `envconfig:"GATEWAY_EVENT_SUBJECT"`
	NodeStatusSubject string `envconfig:"GATEWAY_NODE_STATUS_SUBJECT"`

	// Timeouts.
	RequestTimeout time.Duration `envconfig:"GATEWAY_REQUEST_TIMEOUT" default:"25s"`

	// Admission thresholds.
	MaxQueuedClientJobs   int           `envconfig:"GATEWAY_MAX_QUEUED_CLIENT_JOBS" default:"500"`
	MaxValidatedLedgerAge time.Duration `envconfig:"GATEWAY_MAX_VALIDATED_LEDGER_AGE" default:"2m"`

	// Standalone runs the gateway against an offline node: ledger freshness
	// checks are skipped and a closed genesis ledger is assumed.
	Standalone bool `envconfig:"GATEWAY_STANDALONE" default:"false"`

	// AdminToken grants the admin role to envelopes carrying it. Empty
	// disables admin access over the transports.
	AdminToken string `envconfig:"GATEWAY_ADMIN_TOKEN"`

	// HTTP transport (JSON-RPC endpoint, health, metrics, status page).
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Audit trail database (optional; empty disables the store).
	AuditDatabaseURL string `envconfig:"AUDIT_DATABASE_URL"`

	// Logging.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the gateway.
func (c *Config) ValidateForServe() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - GATEWAY_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.MaxQueuedClientJobs <= 0 {
		return fmt.Errorf("%s - GATEWAY_MAX_QUEUED_CLIENT_JOBS must be positive", logPrefix)
	}
	if c.MaxValidatedLedgerAge <= 0 {
		return fmt.Errorf("%s - GATEWAY_MAX_VALIDATED_LEDGER_AGE must be positive", logPrefix)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("%s - HTTP_PORT must be a valid port", logPrefix)
	}
	return nil
}

// Tuning maps the configured thresholds onto the gate's tuning.
func (c *Config) Tuning() rpc.Tuning {
	return rpc.Tuning{
		MaxQueuedClientJobs:   c.MaxQueuedClientJobs,
		MaxValidatedLedgerAge: c.MaxValidatedLedgerAge,
	}
}
