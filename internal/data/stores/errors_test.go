package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/data/db"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}

func TestIsCorruptionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("database disk image is malformed"), true},
		{fmt.Errorf("open: %w", errors.New("file is not a database")), true},
		{errors.New("disk full"), false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCorruptionError(tt.err), "%v", tt.err)
	}
}

func TestIsConstraintError(t *testing.T) {
	assert.True(t, IsConstraintError(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, IsConstraintError(errors.New("disk full")))
	assert.False(t, IsConstraintError(nil))
}

func TestIsForeignKeyError(t *testing.T) {
	assert.True(t, IsForeignKeyError(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, IsForeignKeyError(errors.New("UNIQUE constraint failed: payments.id")))
	assert.False(t, IsForeignKeyError(nil))
}

func TestRecoverFromCorruption(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	backup, err := RecoverFromCorruption(dir)
	require.NoError(t, err)
	assert.FileExists(t, backup)
	assert.FileExists(t, backup+"-wal")
	assert.NoFileExists(t, dbPath)
	assert.NoFileExists(t, dbPath+"-wal")

	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err, "Open after recovery")
	_ = database.Close()
}

func TestRecoverFromCorruption_NoFile(t *testing.T) {
	backup, err := RecoverFromCorruption(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, backup)
}

func TestOpenWithRecovery(t *testing.T) {
	dir := t.TempDir()
	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = 'x'
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, db.FileName), garbage, 0o644))

	database, err := OpenWithRecovery(dir, db.DefaultOpenOptions(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	matches, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
