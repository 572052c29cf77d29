package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no sync has been recorded yet
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// In-memory databases do not support WAL
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// A single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// RecordSync appends a sync attempt
func (s *SQLiteStorage) RecordSync(ctx context.Context, sync *SyncRecord) error {
	if sync.LocalPath == "" {
		return errors.New("sync record requires a local path")
	}
	if sync.StartedAt.IsZero() {
		sync.StartedAt = time.Now()
	}

	query := `
		INSERT INTO repository_syncs
			(repo_url, branch, local_path, action, commit_sha, success, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		sync.RepoURL, sync.Branch, sync.LocalPath, string(sync.Action), sync.CommitSHA,
		boolToInt(sync.Success), sync.Error, sync.StartedAt.UnixMilli(), sync.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sync ID: %w", err)
	}
	sync.ID = id
	return nil
}

// LastSync returns the most recent sync attempt for a checkout path
func (s *SQLiteStorage) LastSync(ctx context.Context, localPath string) (*SyncRecord, error) {
	query := selectSyncColumns + `
		WHERE local_path = ?
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`
	return scanSync(s.db.QueryRowContext(ctx, query, localPath))
}

// LastSuccessfulSync returns the most recent successful sync for a checkout path
func (s *SQLiteStorage) LastSuccessfulSync(ctx context.Context, localPath string) (*SyncRecord, error) {
	query := selectSyncColumns + `
		WHERE local_path = ? AND success = 1
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`
	return scanSync(s.db.QueryRowContext(ctx, query, localPath))
}

// ListSyncs returns up to limit sync attempts, newest first
func (s *SQLiteStorage) ListSyncs(ctx context.Context, localPath string, limit int) ([]*SyncRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := selectSyncColumns + `
		WHERE local_path = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, localPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list syncs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var syncs []*SyncRecord
	for rows.Next() {
		sync, err := scanSync(rows)
		if err != nil {
			return nil, err
		}
		syncs = append(syncs, sync)
	}
	return syncs, rows.Err()
}

const selectSyncColumns = `
	SELECT id, repo_url, branch, local_path, action, commit_sha, success, error, started_at, duration_ms
	FROM repository_syncs
`

// rowScanner is implemented by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSync(row rowScanner) (*SyncRecord, error) {
	var (
		sync       SyncRecord
		action     string
		success    int
		startedAt  int64
		durationMs int64
	)
	err := row.Scan(&sync.ID, &sync.RepoURL, &sync.Branch, &sync.LocalPath, &action,
		&sync.CommitSHA, &success, &sync.Error, &startedAt, &durationMs)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync: %w", err)
	}
	sync.Action = SyncAction(action)
	sync.Success = success != 0
	sync.StartedAt = time.UnixMilli(startedAt)
	sync.Duration = time.Duration(durationMs) * time.Millisecond
	return &sync, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
