package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remit/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var migrationName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

// migration is one schema version. Both directions are required.
type migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// migrationFile is the parsed form of a file name like 0002_followups.up.sql.
type migrationFile struct {
	Version int
	Name    string
	Up      bool
}

func parseMigrationName(file string) (migrationFile, error) {
	m := migrationName.FindStringSubmatch(file)
	if m == nil {
		return migrationFile{}, fmt.Errorf("%q does not match NNNN_name.(up|down).sql", file)
	}
	v, _ := strconv.Atoi(m[1])
	if v == 0 {
		return migrationFile{}, fmt.Errorf("%q: version starts at 0001", file)
	}
	return migrationFile{Version: v, Name: m[2], Up: m[3] == "up"}, nil
}

// loadMigrations reads the embedded files, ordered by version.
func loadMigrations() ([]migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}

	byVersion := map[int]*migration{}
	for _, path := range files {
		mf, err := parseMigrationName(path[len("migrations/"):])
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(migrationsFS, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		m, ok := byVersion[mf.Version]
		if !ok {
			m = &migration{Version: mf.Version, Name: mf.Name}
			byVersion[mf.Version] = m
		}
		if m.Name != mf.Name {
			return nil, fmt.Errorf("version %04d has two names: %s and %s", mf.Version, m.Name, mf.Name)
		}

		dst := &m.Down
		if mf.Up {
			dst = &m.Up
		}
		if *dst != "" {
			return nil, fmt.Errorf("%s: direction defined twice", path)
		}
		*dst = string(body)
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b migration) int { return a.Version - b.Version })
	return out, nil
}

// schema applies and reverts migrations on one connection.
type schema struct {
	conn *sql.DB
	log  zerolog.Logger
	all  []migration
}

func newSchema(ctx context.Context, conn *sql.DB) (*schema, error) {
	all, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	return &schema{conn: conn, log: logging.Component("db"), all: all}, nil
}

// applied returns the recorded versions, ascending.
func (s *schema) applied(ctx context.Context) ([]int, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// step runs body and the version bookkeeping in one transaction.
func (s *schema) step(ctx context.Context, body string, record func(*sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if err := record(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *schema) up(ctx context.Context) error {
	done, err := s.applied(ctx)
	if err != nil {
		return err
	}

	for _, m := range s.all {
		if slices.Contains(done, m.Version) {
			continue
		}
		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		err := s.step(ctx, m.Up, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
				m.Version, m.Name, time.Now().UnixNano())
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %04d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (s *schema) down(ctx context.Context, steps int) error {
	done, err := s.applied(ctx)
	if err != nil {
		return err
	}
	if steps > len(done) {
		return fmt.Errorf("cannot roll back %d migrations, only %d applied", steps, len(done))
	}

	for _, v := range slices.Backward(done[len(done)-steps:]) {
		idx := slices.IndexFunc(s.all, func(m migration) bool { return m.Version == v })
		if idx < 0 {
			return fmt.Errorf("applied version %04d has no migration file", v)
		}
		m := s.all[idx]

		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		err := s.step(ctx, m.Down, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("revert %04d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// migrate applies every pending migration.
func migrate(ctx context.Context, conn *sql.DB) error {
	s, err := newSchema(ctx, conn)
	if err != nil {
		return err
	}
	return s.up(ctx)
}

// Rollback reverts the newest steps applied migrations.
func Rollback(ctx context.Context, conn *sql.DB, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	s, err := newSchema(ctx, conn)
	if err != nil {
		return err
	}
	return s.down(ctx, steps)
}
