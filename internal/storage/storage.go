package storage

import (
	"context"
	"time"
)

// Storage records repository synchronization attempts.
//
// Only sync metadata is persisted here; the component index itself lives in
// memory and is rebuilt on every run.
type Storage interface {
	// RecordSync appends a sync attempt and assigns its ID
	RecordSync(ctx context.Context, sync *SyncRecord) error
	// LastSync returns the most recent attempt for a checkout path
	LastSync(ctx context.Context, localPath string) (*SyncRecord, error)
	// LastSuccessfulSync returns the most recent successful attempt for a checkout path
	LastSuccessfulSync(ctx context.Context, localPath string) (*SyncRecord, error)
	// ListSyncs returns up to limit attempts for a checkout path, newest first
	ListSyncs(ctx context.Context, localPath string, limit int) ([]*SyncRecord, error)

	Close() error
}

// SyncRecord is one clone, fetch or local-checkout verification
type SyncRecord struct {
	ID        int64
	RepoURL   string
	Branch    string
	LocalPath string
	Action    SyncAction
	CommitSHA string
	Success   bool
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// SyncAction names what a sync attempt did
type SyncAction string

const (
	ActionClone  SyncAction = "clone"
	ActionFetch  SyncAction = "fetch"
	ActionLocal  SyncAction = "local"
	ActionReused SyncAction = "reused"
)
