// Package cache keeps a small SQLite record of past builds so unchanged
// inputs can skip artifact rewriting.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no build record exists for the key.
var ErrNotFound = errors.New("build record not found")

// Cache handles SQLite storage of build records.
type Cache struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Record is one remembered build.
type Record struct {
	RunID      string
	SourceHash string
	OutputHash string
	Namespace  string
	BuiltAt    time.Time
}

// Open creates or opens the build cache at dbPath.
func Open(dbPath string) (*Cache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS builds (
		run_id TEXT PRIMARY KEY,
		source_hash TEXT NOT NULL,
		output_hash TEXT NOT NULL,
		namespace TEXT NOT NULL,
		built_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating builds table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS builds_source
		ON builds (source_hash, namespace)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating builds index: %w", err)
	}

	return &Cache{db: db, dbPath: dbPath}, nil
}

// OpenDefault opens the cache at its default location under the project dir.
func OpenDefault(projectDir string) (*Cache, error) {
	return Open(filepath.Join(projectDir, ".mcfn", "build.db"))
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// RecordBuild remembers a completed build and returns its run ID.
func (c *Cache) RecordBuild(sourceHash, outputHash, namespace string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	runID := uuid.New().String()
	_, err := c.db.Exec(
		"INSERT INTO builds (run_id, source_hash, output_hash, namespace, built_at) VALUES (?, ?, ?, ?, ?)",
		runID, sourceHash, outputHash, namespace, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("recording build: %w", err)
	}
	return runID, nil
}

// Latest returns the most recent build record for a source fingerprint and
// namespace, or ErrNotFound when no build of that input is remembered.
func (c *Cache) Latest(sourceHash, namespace string) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var r Record
	err := c.db.QueryRow(
		`SELECT run_id, source_hash, output_hash, namespace, built_at
		 FROM builds WHERE source_hash = ? AND namespace = ?
		 ORDER BY built_at DESC LIMIT 1`,
		sourceHash, namespace,
	).Scan(&r.RunID, &r.SourceHash, &r.OutputHash, &r.Namespace, &r.BuiltAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying build: %w", err)
	}
	return &r, nil
}

// Prune drops all records older than keep.
func (c *Cache) Prune(keep time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec("DELETE FROM builds WHERE built_at < ?", time.Now().UTC().Add(-keep))
	if err != nil {
		return fmt.Errorf("pruning builds: %w", err)
	}
	return nil
}
