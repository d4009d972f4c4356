// Package stores provides SQLite-backed implementations of the domain
// persistence interfaces.
package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/redline/internal/data/db"
)

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsCorruptionError returns true if the error indicates database corruption.
func IsCorruptionError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CORRUPT ||
			code == sqlite3.SQLITE_NOTADB ||
			code == sqlite3.SQLITE_CANTOPEN
	}

	// Also check for common corruption error messages
	errStr := err.Error()
	return strings.Contains(errStr, "database disk image is malformed") ||
		strings.Contains(errStr, "file is not a database") ||
		strings.Contains(errStr, "database corruption")
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsConstraintError returns true if the error is a uniqueness or foreign
// key constraint violation.
func IsConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// RecoverFromCorruption attempts to recover from database corruption by backing up
// the corrupted file and creating a new database.
func RecoverFromCorruption(dataDir string) error {
	dbPath := filepath.Join(dataDir, db.Filename)

	// Create backup filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(dataDir, fmt.Sprintf("%s.corrupt.%s", db.Filename, timestamp))

	// Backup the corrupted database
	if err := os.Rename(dbPath, backupPath); err != nil {
		// If file doesn't exist, that's ok
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to backup corrupted database: %w", err)
		}
	}

	// Also backup WAL and SHM files if they exist.
	// These MUST be moved/deleted for recovery to work, otherwise SQLite
	// will find orphaned WAL/SHM files that don't match the new database.
	for _, suffix := range []string{"-wal", "-shm"} {
		sidecar := dbPath + suffix
		if _, err := os.Stat(sidecar); err != nil {
			continue
		}
		if err := os.Rename(sidecar, backupPath+suffix); err != nil {
			if delErr := os.Remove(sidecar); delErr != nil {
				return fmt.Errorf("failed to backup or remove %s file: %w", suffix, err)
			}
		}
	}

	return nil
}
