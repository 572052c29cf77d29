// Package storage provides the SQLite-backed repository sync ledger.
//
// Each clone, fetch or local-checkout verification performed by the
// repository manager is appended to the repository_syncs table. The manager
// consults the most recent successful sync to decide whether a fetch is due.
// The component index itself is never persisted.
//
// # Basic Usage
//
//	ledger, err := storage.NewSQLiteStorage("~/.mudcontext/mudcontext.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ledger.Close()
//
//	last, err := ledger.LastSuccessfulSync(ctx, "/path/to/checkout")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // never synced
//	}
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite
//   - No C compiler needed
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo"
//
// Schema versions are tracked in schema_version and applied in semver order
// by ApplyMigrations.
package storage
