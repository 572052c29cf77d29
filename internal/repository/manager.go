package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/mudcontext-mcp/internal/storage"
)

// ErrNotCheckout is returned when LocalPath holds files but no git checkout,
// so cloning there would overwrite them
var ErrNotCheckout = errors.New("directory exists and is not a git checkout")

// Options configures a Manager
type Options struct {
	// URL is the git remote; empty means LocalPath is used as-is
	URL    string
	Branch string
	// LocalPath is where the checkout lives
	LocalPath string
	// RefreshInterval is the minimum age of the last successful sync before
	// another fetch is attempted
	RefreshInterval time.Duration
	// FetchTimeout bounds a single clone or fetch attempt
	FetchTimeout time.Duration
	Retry        RetryConfig

	// Ledger records sync attempts; nil disables throttling and history
	Ledger storage.Storage
	Logger *log.Logger
}

// gitFunc runs git with args in dir and returns trimmed stdout
type gitFunc func(ctx context.Context, dir string, args ...string) (string, error)

// Manager keeps a local checkout of the component library in sync
type Manager struct {
	opts   Options
	git    gitFunc
	logger *log.Logger
	now    func() time.Time

	mu        sync.Mutex // serializes EnsureRepository
	available atomic.Bool
}

// NewManager creates a repository manager
func NewManager(opts Options) *Manager {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Retry.MaxRetries == 0 {
		opts.Retry = DefaultRetryConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		opts:   opts,
		git:    runGit,
		logger: logger,
		now:    time.Now,
	}
}

// Path returns the local checkout path
func (m *Manager) Path() string {
	return m.opts.LocalPath
}

// IsAvailable reports whether the last EnsureRepository succeeded
func (m *Manager) IsAvailable() bool {
	return m.available.Load()
}

// EnsureRepository makes sure the checkout exists and is reasonably fresh.
// It returns false when no usable checkout could be produced.
func (m *Manager) EnsureRepository(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ok, err := m.ensure(ctx)
	m.available.Store(ok)
	return ok, err
}

func (m *Manager) ensure(ctx context.Context) (bool, error) {
	path := m.opts.LocalPath
	if path == "" {
		return false, errors.New("repository local path is not configured")
	}

	if m.opts.URL == "" {
		return m.ensureLocal(ctx)
	}

	if !isCheckout(path) {
		return m.clone(ctx)
	}

	if m.isFresh(ctx) {
		m.record(ctx, &storage.SyncRecord{
			Action:    storage.ActionReused,
			CommitSHA: m.headCommit(ctx),
			Success:   true,
			StartedAt: m.now(),
		})
		return true, nil
	}

	if err := m.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		// A stale checkout is still indexable
		m.logger.Printf("Warning: failed to update %s, using existing checkout: %v", path, err)
		return true, nil
	}
	return true, nil
}

// ensureLocal handles offline mode where the checkout is managed externally
func (m *Manager) ensureLocal(ctx context.Context) (bool, error) {
	start := m.now()
	info, err := os.Stat(m.opts.LocalPath)
	rec := &storage.SyncRecord{
		Action:    storage.ActionLocal,
		StartedAt: start,
	}

	switch {
	case err != nil:
		rec.Error = err.Error()
	case !info.IsDir():
		err = fmt.Errorf("%s is not a directory", m.opts.LocalPath)
		rec.Error = err.Error()
	default:
		rec.Success = true
		if isCheckout(m.opts.LocalPath) {
			rec.CommitSHA = m.headCommit(ctx)
		}
	}
	m.record(ctx, rec)

	if !rec.Success {
		return false, fmt.Errorf("local repository unavailable: %w", err)
	}
	return true, nil
}

// clone checks the remote out into a sibling temporary directory and moves
// it into place. An existing LocalPath is replaced only when it is empty.
func (m *Manager) clone(ctx context.Context) (bool, error) {
	path := m.opts.LocalPath
	start := m.now()
	rec := &storage.SyncRecord{
		Action:    storage.ActionClone,
		StartedAt: start,
	}

	if err := checkCloneTarget(path); err != nil {
		rec.Error = err.Error()
		m.record(ctx, rec)
		return false, err
	}

	m.logger.Printf("Cloning %s (%s) into %s", m.opts.URL, m.opts.Branch, path)

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return false, fmt.Errorf("failed to create repository parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(path)+".clone-")
	if err != nil {
		return false, fmt.Errorf("failed to create clone staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()
	target := filepath.Join(staging, "checkout")

	_, err = retryWithBackoff(ctx, m.opts.Retry, func() (struct{}, error) {
		// A failed clone can leave a partial directory behind
		if err := os.RemoveAll(target); err != nil {
			return struct{}{}, err
		}
		attemptCtx, cancel := m.attemptContext(ctx)
		defer cancel()
		_, err := m.git(attemptCtx, staging,
			"clone", "--depth", "1", "--branch", m.opts.Branch, m.opts.URL, target)
		return struct{}{}, err
	})
	if err == nil {
		err = moveIntoPlace(target, path)
	}

	rec.Duration = m.now().Sub(start)
	if err != nil {
		rec.Error = err.Error()
		m.record(ctx, rec)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("failed to clone %s: %w", m.opts.URL, err)
	}

	rec.Success = true
	rec.CommitSHA = m.headCommit(ctx)
	m.record(ctx, rec)
	return true, nil
}

// checkCloneTarget refuses to clone over a directory holding anything
func checkCloneTarget(path string) error {
	entries, err := os.ReadDir(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("cannot inspect %s: %w", path, err)
	case len(entries) > 0:
		return fmt.Errorf("%s: %w", path, ErrNotCheckout)
	}
	return nil
}

// moveIntoPlace renames a finished clone to path, replacing an empty directory
func moveIntoPlace(src, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	if err := os.Rename(src, path); err != nil {
		return fmt.Errorf("failed to move clone into %s: %w", path, err)
	}
	return nil
}

func (m *Manager) fetch(ctx context.Context) error {
	path := m.opts.LocalPath
	start := m.now()
	m.logger.Printf("Updating %s from %s (%s)", path, m.opts.URL, m.opts.Branch)

	_, err := retryWithBackoff(ctx, m.opts.Retry, func() (struct{}, error) {
		attemptCtx, cancel := m.attemptContext(ctx)
		defer cancel()
		if _, err := m.git(attemptCtx, path, "fetch", "--depth", "1", "origin", m.opts.Branch); err != nil {
			return struct{}{}, err
		}
		_, err := m.git(attemptCtx, path, "reset", "--hard", "origin/"+m.opts.Branch)
		return struct{}{}, err
	})

	rec := &storage.SyncRecord{
		Action:    storage.ActionFetch,
		StartedAt: start,
		Duration:  m.now().Sub(start),
		CommitSHA: m.headCommit(ctx),
	}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Success = true
	}
	m.record(ctx, rec)
	return err
}

// isFresh reports whether the last successful sync is within RefreshInterval
func (m *Manager) isFresh(ctx context.Context) bool {
	if m.opts.Ledger == nil || m.opts.RefreshInterval <= 0 {
		return false
	}
	last, err := m.opts.Ledger.LastSuccessfulSync(ctx, m.opts.LocalPath)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Printf("Warning: failed to read sync ledger: %v", err)
		}
		return false
	}
	return m.now().Sub(last.StartedAt) < m.opts.RefreshInterval
}

func (m *Manager) headCommit(ctx context.Context) string {
	sha, err := m.git(ctx, m.opts.LocalPath, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return sha
}

func (m *Manager) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.opts.FetchTimeout > 0 {
		return context.WithTimeout(ctx, m.opts.FetchTimeout)
	}
	return context.WithCancel(ctx)
}

// record appends to the ledger; failures are logged, never returned
func (m *Manager) record(ctx context.Context, rec *storage.SyncRecord) {
	if m.opts.Ledger == nil {
		return
	}
	rec.RepoURL = m.opts.URL
	rec.Branch = m.opts.Branch
	rec.LocalPath = m.opts.LocalPath
	// Record even when the sync itself was cancelled
	if err := m.opts.Ledger.RecordSync(context.WithoutCancel(ctx), rec); err != nil {
		m.logger.Printf("Warning: failed to record %s sync: %v", rec.Action, err)
	}
}

// isCheckout reports whether path holds a git working tree
func isCheckout(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}
