package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndLastSync(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.LastSync(ctx, "/repo")
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Now().Add(-time.Hour)
	clone := &SyncRecord{
		RepoURL:   "https://github.com/MudBlazor/MudBlazor.git",
		Branch:    "dev",
		LocalPath: "/repo",
		Action:    ActionClone,
		CommitSHA: "abc123",
		Success:   true,
		StartedAt: base,
		Duration:  1500 * time.Millisecond,
	}
	require.NoError(t, s.RecordSync(ctx, clone))
	assert.NotZero(t, clone.ID)

	failed := &SyncRecord{
		LocalPath: "/repo",
		Action:    ActionFetch,
		Success:   false,
		Error:     "network unreachable",
		StartedAt: base.Add(30 * time.Minute),
	}
	require.NoError(t, s.RecordSync(ctx, failed))

	last, err := s.LastSync(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, failed.ID, last.ID)
	assert.Equal(t, ActionFetch, last.Action)
	assert.False(t, last.Success)
	assert.Equal(t, "network unreachable", last.Error)

	ok, err := s.LastSuccessfulSync(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, clone.ID, ok.ID)
	assert.Equal(t, ActionClone, ok.Action)
	assert.Equal(t, "abc123", ok.CommitSHA)
	assert.Equal(t, "dev", ok.Branch)
	assert.Equal(t, 1500*time.Millisecond, ok.Duration)
	assert.Equal(t, base.UnixMilli(), ok.StartedAt.UnixMilli())
}

func TestLastSuccessfulSyncScopedByPath(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.RecordSync(ctx, &SyncRecord{LocalPath: "/a", Action: ActionLocal, Success: true}))

	_, err := s.LastSuccessfulSync(ctx, "/b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordSyncDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	err := s.RecordSync(ctx, &SyncRecord{Action: ActionLocal})
	assert.Error(t, err, "local path is required")

	rec := &SyncRecord{LocalPath: "/repo", Action: ActionReused, Success: true}
	require.NoError(t, s.RecordSync(ctx, rec))
	assert.False(t, rec.StartedAt.IsZero())
}

func TestListSyncs(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordSync(ctx, &SyncRecord{
			LocalPath: "/repo",
			Action:    ActionFetch,
			Success:   true,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	syncs, err := s.ListSyncs(ctx, "/repo", 3)
	require.NoError(t, err)
	require.Len(t, syncs, 3)
	assert.True(t, syncs[0].StartedAt.After(syncs[1].StartedAt))
	assert.True(t, syncs[1].StartedAt.After(syncs[2].StartedAt))

	all, err := s.ListSyncs(ctx, "/repo", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.ListSyncs(ctx, "/other", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordSync(ctx, &SyncRecord{LocalPath: "/repo", Action: ActionClone, Success: true}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	last, err := s.LastSuccessfulSync(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, ActionClone, last.Action)
}

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	current, err := currentSchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, current.String())

	// Re-applying is a no-op
	require.NoError(t, ApplyMigrations(ctx, s.db))

	require.NoError(t, rollbackMigration(ctx, s.db))
	current, err = currentSchemaVersion(ctx, s.db)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", current.String())

	var count int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='repository_syncs'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.Error(t, rollbackMigration(ctx, s.db))

	require.NoError(t, ApplyMigrations(ctx, s.db))
	require.NoError(t, s.RecordSync(ctx, &SyncRecord{LocalPath: "/repo", Action: ActionLocal, Success: true}))
}
