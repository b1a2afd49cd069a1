// Package db owns the SQLite connection, schema migrations and the raw
// queries used by the stores.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the data directory.
const FileName = "remit.db"

// ping backoff: 100ms, 200ms, 400ms, 800ms between five attempts.
const (
	pingAttempts = 5
	pingBackoff  = 100 * time.Millisecond
)

// OpenOptions configures the connection pool.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
}

func DefaultOpenOptions() OpenOptions {
	return OpenOptions{MaxOpenConns: 2, MaxIdleConns: 2, BusyTimeout: 5000}
}

// dsn enables WAL, the busy timeout and foreign keys on every connection.
func (o OpenOptions) dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout))
	q.Add("_pragma", "foreign_keys(ON)")
	return "file:" + path + "?" + q.Encode()
}

// DB is the migrated connection plus its query set.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open creates dataDir if needed, opens remit.db inside it and applies
// pending migrations.
func Open(dataDir string, opts OpenOptions) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", opts.dsn(filepath.Join(dataDir, FileName)))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := ping(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &DB{conn: conn, queries: New(conn)}, nil
}

func ping(ctx context.Context, conn *sql.DB) error {
	var err error
	wait := pingBackoff
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", pingAttempts, err)
}

func (db *DB) Close() error  { return db.conn.Close() }
func (db *DB) Conn() *sql.DB { return db.conn }

// Queries returns the connection's queries, ignoring any transaction.
func (db *DB) Queries() *Queries { return db.queries }

type txKey struct{}

type txQueries struct {
	owner *DB
	q     *Queries
}

// QueriesFor returns the queries of the transaction InTx put on ctx, or
// the connection's queries outside one.
func (db *DB) QueriesFor(ctx context.Context) *Queries {
	if tx, ok := ctx.Value(txKey{}).(txQueries); ok && tx.owner == db {
		return tx.q
	}
	return db.queries
}

// InTx runs fn in one transaction. Store calls made with the context fn
// receives join it, and a nested InTx joins the outer transaction. The
// transaction commits only when fn returns nil.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(txQueries); ok && tx.owner == db {
		return fn(ctx)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(context.WithValue(ctx, txKey{}, txQueries{owner: db, q: db.queries.WithTx(tx)})); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WithTx is InTx for callers that only need the queries.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	return db.InTx(ctx, func(ctx context.Context) error {
		return fn(db.QueriesFor(ctx))
	})
}
