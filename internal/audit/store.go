package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const logPrefix = "audit:store"

const schema = `CREATE TABLE IF NOT EXISTS rpc_audit (
	id BIGSERIAL PRIMARY KEY,
	command TEXT NOT NULL,
	caller TEXT NOT NULL DEFAULT '',
	forwarded_for TEXT NOT NULL DEFAULT '',
	status_code INT NOT NULL,
	duration_ms BIGINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store writes audit entries to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to databaseURL and ensures the audit schema exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	slog.Info(fmt.Sprintf("%s - Connecting to audit database", logPrefix))

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to parse database URL: %w", logPrefix, err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to create pool: %w", logPrefix, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s - failed to ping database: %w", logPrefix, err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s - failed to ensure audit schema: %w", logPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Audit store ready", logPrefix))
	return &Store{pool: pool}, nil
}

// Record implements Recorder.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rpc_audit (command, caller, forwarded_for, status_code, duration_ms)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.Command, e.User, e.ForwardedFor, e.StatusCode, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("%s - failed to insert audit row: %w", logPrefix, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
