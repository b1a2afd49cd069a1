package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(t.TempDir(), DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func openRawConn(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", dbPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func tableExists(t *testing.T, conn *sql.DB, name string) bool {
	t.Helper()
	var got string
	err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&got)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "versions are contiguous")
		assert.NotEmpty(t, m.Up, m.Name)
		assert.NotEmpty(t, m.Down, m.Name)
	}
}

func appliedCount(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	return n
}

func TestMigrate(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)

	t.Run("open applies everything", func(t *testing.T) {
		database := openTestDB(t)
		assert.Equal(t, len(migrations), appliedCount(t, database.Conn()))
		for _, table := range []string{"invoices", "activities", "sequence_rules", "scheduled_sends", "payments"} {
			assert.True(t, tableExists(t, database.Conn(), table), table)
		}
	})

	t.Run("rerun is a no-op", func(t *testing.T) {
		conn := openRawConn(t)
		ctx := context.Background()
		require.NoError(t, migrate(ctx, conn))
		require.NoError(t, migrate(ctx, conn))
		assert.Equal(t, len(migrations), appliedCount(t, conn))
	})
}

func TestRollback(t *testing.T) {
	conn := openRawConn(t)
	ctx := context.Background()
	require.NoError(t, migrate(ctx, conn))

	migrations, err := loadMigrations()
	require.NoError(t, err)
	total := len(migrations)

	require.NoError(t, Rollback(ctx, conn, 1))
	assert.False(t, tableExists(t, conn, "payments"))
	assert.True(t, tableExists(t, conn, "invoices"))
	assert.Equal(t, total-1, appliedCount(t, conn))

	assert.ErrorContains(t, Rollback(ctx, conn, total), "only")

	require.NoError(t, Rollback(ctx, conn, total-1))
	assert.False(t, tableExists(t, conn, "invoices"))
	assert.Zero(t, appliedCount(t, conn))

	require.NoError(t, migrate(ctx, conn))
	assert.True(t, tableExists(t, conn, "payments"))

	assert.Error(t, Rollback(ctx, conn, 0))
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		in      string
		want    migrationFile
		wantErr bool
	}{
		{in: "0001_invoices.up.sql", want: migrationFile{Version: 1, Name: "invoices", Up: true}},
		{in: "0012_add_payments.down.sql", want: migrationFile{Version: 12, Name: "add_payments"}},
		{in: "0001_invoices.sql", wantErr: true},
		{in: "abc_invoices.up.sql", wantErr: true},
		{in: "0000_zero.up.sql", wantErr: true},
		{in: "0001_.up.sql", wantErr: true},
		{in: "1_short.up.sql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMigrationName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCascadeDelete(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	q := database.Queries()

	require.NoError(t, q.UpsertInvoice(ctx, Invoice{ID: "INV-1", Kind: "patient", Patient: "A", Amount: "1.00", CreatedAt: 1, UpdatedAt: 1}))
	require.NoError(t, q.InsertActivity(ctx, Activity{ID: "a1", InvoiceID: "INV-1", Type: "sms", Description: "d", Author: "x", CreatedAt: 1}))

	n, err := q.DeleteInvoice(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	acts, err := q.ListActivitiesForInvoice(ctx, "INV-1")
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestWithTx_Rollback(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	err := database.WithTx(ctx, func(q *Queries) error {
		if err := q.UpsertInvoice(ctx, Invoice{ID: "INV-1", Kind: "patient", Patient: "A", Amount: "1.00", CreatedAt: 1, UpdatedAt: 1}); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	_, err = database.Queries().GetInvoice(ctx, "INV-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInTx(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	inv := func(id string) Invoice {
		return Invoice{ID: id, Kind: "patient", Patient: "A", Amount: "1.00", CreatedAt: 1, UpdatedAt: 1}
	}

	t.Run("nested calls roll back with the outer transaction", func(t *testing.T) {
		err := database.InTx(ctx, func(ctx context.Context) error {
			require.NoError(t, database.QueriesFor(ctx).UpsertInvoice(ctx, inv("INV-1")))
			err := database.WithTx(ctx, func(q *Queries) error {
				return q.UpsertInvoice(ctx, inv("INV-2"))
			})
			require.NoError(t, err)

			_, err = database.QueriesFor(ctx).GetInvoice(ctx, "INV-2")
			require.NoError(t, err, "inner write is visible inside the transaction")
			return fmt.Errorf("boom")
		})
		require.EqualError(t, err, "boom")

		for _, id := range []string{"INV-1", "INV-2"} {
			_, err := database.Queries().GetInvoice(ctx, id)
			assert.ErrorIs(t, err, sql.ErrNoRows, id)
		}
	})

	t.Run("commits when fn succeeds", func(t *testing.T) {
		err := database.InTx(ctx, func(ctx context.Context) error {
			return database.QueriesFor(ctx).UpsertInvoice(ctx, inv("INV-3"))
		})
		require.NoError(t, err)

		_, err = database.Queries().GetInvoice(ctx, "INV-3")
		assert.NoError(t, err)
	})

	t.Run("ignores another database's transaction", func(t *testing.T) {
		other := openTestDB(t)
		err := other.InTx(ctx, func(ctx context.Context) error {
			assert.Same(t, database.Queries(), database.QueriesFor(ctx))
			return nil
		})
		require.NoError(t, err)
	})
}
