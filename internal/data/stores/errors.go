package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/remit/internal/data/db"
)

// corruptMessages are driver messages that indicate an unreadable file
// when no typed sqlite error is available.
var corruptMessages = []string{
	"database disk image is malformed",
	"file is not a database",
	"database corruption",
}

func sqliteCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

// IsBusyError reports a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_BUSY
}

// IsCorruptionError reports whether err means the database file cannot be
// used and should be moved aside.
func IsCorruptionError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CANTOPEN:
			return true
		}
	}
	msg := err.Error()
	for _, m := range corruptMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports a missing row.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsConstraintError reports a constraint violation, such as a missing
// parent invoice or a duplicate key.
func IsConstraintError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// IsForeignKeyError reports a row that references a missing parent, such
// as a payment for an unknown invoice.
func IsForeignKeyError(err error) bool {
	if code, ok := sqliteCode(err); ok {
		return code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// RecoverFromCorruption renames the database and its WAL and SHM files to
// <name>.corrupt.<timestamp> so a fresh database can be created. It returns
// the backup path of the main file, or "" when there was nothing to move.
func RecoverFromCorruption(dataDir string) (string, error) {
	base := filepath.Join(dataDir, db.FileName)
	backup := fmt.Sprintf("%s.corrupt.%s", base, time.Now().Format("20060102-150405"))

	moved := ""
	// The sidecar files must go too: SQLite would otherwise replay a WAL
	// that belongs to the old file.
	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(base+suffix, backup+suffix)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			if suffix == "" || os.Remove(base+suffix) != nil {
				return "", fmt.Errorf("move %s aside: %w", filepath.Base(base+suffix), err)
			}
			continue
		}
		if suffix == "" {
			moved = backup
		}
	}
	return moved, nil
}

// OpenWithRecovery opens the database, moving a corrupt file aside and
// starting over once. Invoice data lost this way can be reseeded with
// `remit seed`.
func OpenWithRecovery(dataDir string, opts db.OpenOptions, log zerolog.Logger) (*db.DB, error) {
	database, err := db.Open(dataDir, opts)
	if err == nil || !IsCorruptionError(err) {
		return database, err
	}

	backup, rerr := RecoverFromCorruption(dataDir)
	if rerr != nil {
		return nil, errors.Join(err, rerr)
	}
	log.Warn().Err(err).Str("backup", backup).Msg("database was corrupt, started a new one")

	return db.Open(dataDir, opts)
}
