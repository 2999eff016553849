package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects SQL placeholder syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is the ledger connection.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// ParseDSN maps a ledger DSN to its dialect and driver-level data source. postgres:// and
// postgresql:// select Postgres; sqlite://<path>, file:..., :memory: and bare paths select SQLite.
func ParseDSN(dsn string) (Dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	default:
		return DialectSQLite, dsn, nil
	}
}

// Open connects to the ledger and creates its tables if missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, source, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	db := &DB{Dialect: dialect, logger: logger}
	switch dialect {
	case DialectPostgres:
		logger.Info("connecting to ledger", "dialect", dialect)
		pc, err := pgxpool.ParseConfig(source)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			pc.MinConns = cfg.MinConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		if cfg.MaxConnIdleTime > 0 {
			pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"

		dctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dctx, pc)
		if err != nil {
			logger.Error("failed to connect to ledger", "error", err)
			return nil, err
		}
		db.pool = pool
		db.SQL = stdlib.OpenDBFromPool(pool)
	case DialectSQLite:
		logger.Info("opening ledger", "dialect", dialect, "path", source)
		sqldb, err := sql.Open("sqlite", source)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one connection keeps :memory: databases shared and serializes writers
		sqldb.SetMaxOpenConns(1)
		db.SQL = sqldb
	}

	if err := db.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	if err := db.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	logger.Info("ledger ready", "dialect", dialect)
	return db, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	if db == nil {
		return
	}
	if db.SQL != nil {
		if err := db.SQL.Close(); err != nil {
			db.logger.Error("failed to close ledger", "error", err)
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging ledger")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.SQL.PingContext(ctx)
}

// rebind rewrites '?' placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extract_run (
		id TEXT PRIMARY KEY,
		root_path TEXT NOT NULL,
		rules_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		status TEXT NOT NULL,
		documents_found INTEGER NOT NULL DEFAULT 0,
		documents_read INTEGER NOT NULL DEFAULT 0,
		documents_failed INTEGER NOT NULL DEFAULT 0,
		rows_retained INTEGER NOT NULL DEFAULT 0,
		rows_rejected INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS extract_job (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES extract_run(id),
		source_path TEXT NOT NULL,
		status TEXT NOT NULL,
		method TEXT,
		pages INTEGER NOT NULL DEFAULT 0,
		fields_found INTEGER NOT NULL DEFAULT 0,
		extracted_json TEXT,
		error_message TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS extract_job_run_idx ON extract_job (run_id)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// timestamps are stored as RFC 3339 text so both dialects share one schema
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
