// Package db wraps the SQLite connection used for review session
// persistence.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	maxRetries   = 5
	initialWait  = 100 * time.Millisecond
	maxOpenConns = 10
	maxIdleConns = 5
	busyTimeout  = 5000 // milliseconds
)

// Filename is the database file created inside the data directory.
const Filename = "redline.db"

// DB wraps a SQL database connection with retry logic and the query layer.
type DB struct {
	conn    *sql.DB
	queries *Queries
}

// Open creates a new database connection with connection pooling and retry logic.
// The database file is created in the specified data directory.
func Open(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, Filename)

	// WAL mode, busy timeout, and enforced foreign keys so suggestion rows
	// cascade with their session.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dbPath, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(0) // Connections live forever

	db := &DB{
		conn:    conn,
		queries: New(conn),
	}

	// Verify connectivity with retry
	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Apply pending migrations
	if err := migrateUp(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Queries returns the query layer.
func (db *DB) Queries() *Queries {
	return db.queries
}

// Conn exposes the raw connection for migration tooling.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// WithTx executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
func (db *DB) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := db.queries.WithTx(tx)
	if err := fn(queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err := db.conn.PingContext(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("failed to ping database after %d retries", maxRetries)
}
