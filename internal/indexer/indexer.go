package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/mudcontext-mcp/internal/index"
	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// maxErrorMessages bounds Statistics.ErrorMessages
const maxErrorMessages = 50

// ErrBuildInProgress is returned by TryRebuild when another build holds the lock
var ErrBuildInProgress = errors.New("index build already in progress")

// Repository provides the source checkout
type Repository interface {
	EnsureRepository(ctx context.Context) (bool, error)
	Path() string
}

// SourceParser extracts component metadata from a source file.
// It returns nil, nil for files that declare no component.
type SourceParser interface {
	ParseComponentFile(ctx context.Context, path string) (*types.ParseResult, error)
}

// DocParser extracts metadata from a documentation page.
// It returns nil, nil for missing files.
type DocParser interface {
	ParseDocumentationFile(ctx context.Context, path string) (*types.DocResult, error)
}

// ExampleExtractor finds usage examples for a component
type ExampleExtractor interface {
	ExtractExamples(ctx context.Context, rootPath, componentName string) ([]types.ComponentExample, error)
}

// Taxonomy resolves component categories
type Taxonomy interface {
	Initialize()
	GetCategoryName(componentName string) (string, bool)
	InferCategoryFromName(componentName string) string
}

// Dependencies are the collaborators an Indexer drives
type Dependencies struct {
	Repository Repository
	Parser     SourceParser
	Docs       DocParser
	Examples   ExampleExtractor
	Taxonomy   Taxonomy
}

// Config contains configuration for the indexer
type Config struct {
	ComponentRoots []string // Repository-relative component roots
	DocsRoot       string   // Repository-relative documentation root
	NamingPrefix   string   // Component name prefix, e.g. "Mud"
	DocsBaseURL    string
	SourceBaseURL  string
	Workers        int  // Concurrent phase-one parsers (default: runtime.NumCPU())
	Verbose        bool // Log per-item progress
	Logger         *log.Logger
}

// Statistics contains statistics about a build
type Statistics struct {
	ComponentsIndexed      int           `json:"components_indexed"`
	DirectoriesSkipped     int           `json:"directories_skipped"`
	DirectoriesFailed      int           `json:"directories_failed"`
	DocsMerged             int           `json:"docs_merged"`
	DocsSkipped            int           `json:"docs_skipped"`
	DocsFailed             int           `json:"docs_failed"`
	ComponentsWithExamples int           `json:"components_with_examples"`
	TotalExamples          int           `json:"total_examples"`
	ExamplesFailed         int           `json:"examples_failed"`
	Duration               time.Duration `json:"duration_ns"`
	ErrorMessages          []string      `json:"error_messages"`
}

func (s *Statistics) clone() *Statistics {
	if s == nil {
		return nil
	}
	dst := *s
	dst.ErrorMessages = append([]string{}, s.ErrorMessages...)
	return &dst
}

// Indexer drives the three-phase build of the component index:
// components, then documentation enrichment, then example enrichment
type Indexer struct {
	deps    Dependencies
	store   *index.Store
	config  Config
	builder EntityBuilder
	logger  *log.Logger

	lock    *BuildLock
	indexed atomic.Bool
	builds  atomic.Int64 // completed builds

	mu          sync.RWMutex // guards lastIndexed and lastStats
	lastIndexed time.Time
	lastStats   *Statistics
}

// New creates a new Indexer writing into store
func New(deps Dependencies, store *index.Store, config Config) *Indexer {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Indexer{
		deps:   deps,
		store:  store,
		config: config,
		builder: EntityBuilder{
			NamingPrefix:  config.NamingPrefix,
			DocsBaseURL:   config.DocsBaseURL,
			SourceBaseURL: config.SourceBaseURL,
		},
		logger: logger,
		lock:   NewBuildLock(),
	}
}

// Store returns the store the indexer writes into
func (idx *Indexer) Store() *index.Store {
	return idx.store
}

// IsIndexed reports whether a build has completed successfully
func (idx *Indexer) IsIndexed() bool {
	return idx.indexed.Load()
}

// IsBuilding reports whether a build is in progress
func (idx *Indexer) IsBuilding() bool {
	return idx.lock.IsLocked()
}

// LastIndexed returns the completion time of the last successful build
func (idx *Indexer) LastIndexed() (time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastIndexed, !idx.lastIndexed.IsZero()
}

// LastStats returns a copy of the statistics of the last successful build
func (idx *Indexer) LastStats() *Statistics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastStats.clone()
}

// BuildCount returns the number of builds completed by this process
func (idx *Indexer) BuildCount() int64 {
	return idx.builds.Load()
}

// BuildIndex builds the index once. A caller arriving while a build is in
// flight waits for it; if that build succeeded its statistics are returned
// without building again.
func (idx *Indexer) BuildIndex(ctx context.Context) (*Statistics, error) {
	if err := idx.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer idx.lock.Release()

	if idx.indexed.Load() {
		return idx.LastStats(), nil
	}
	// Drop whatever an earlier failed attempt left behind
	idx.store.Reset()
	stats, err := idx.build(ctx, idx.store)
	if err != nil {
		return nil, err
	}
	idx.commit(stats)
	return stats, nil
}

// Rebuild builds a fresh index and swaps it in once every phase has
// completed. Until then the current index keeps serving queries, and a
// failed or cancelled rebuild leaves it untouched.
func (idx *Indexer) Rebuild(ctx context.Context) (*Statistics, error) {
	if err := idx.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer idx.lock.Release()
	return idx.rebuild(ctx)
}

// TryRebuild is Rebuild without waiting: it returns ErrBuildInProgress when
// another build holds the lock
func (idx *Indexer) TryRebuild(ctx context.Context) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrBuildInProgress
	}
	defer idx.lock.Release()
	return idx.rebuild(ctx)
}

func (idx *Indexer) rebuild(ctx context.Context) (*Statistics, error) {
	staging := index.New()
	stats, err := idx.build(ctx, staging)
	if err != nil {
		return nil, err
	}
	idx.store.Replace(staging)
	idx.commit(stats)
	return stats, nil
}

// commit records a successful build
func (idx *Indexer) commit(stats *Statistics) {
	idx.mu.Lock()
	idx.lastIndexed = time.Now()
	idx.lastStats = stats.clone()
	idx.mu.Unlock()
	idx.indexed.Store(true)
	idx.builds.Add(1)

	idx.logger.Printf("Indexed %d components (%d docs merged, %d with examples) in %v",
		stats.ComponentsIndexed, stats.DocsMerged, stats.ComponentsWithExamples, stats.Duration.Round(time.Millisecond))
}

// build runs every phase into target; the caller holds the lock
func (idx *Indexer) build(ctx context.Context, target *index.Store) (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	ok, err := idx.deps.Repository.EnsureRepository(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrRepositoryUnavailable, err)
	}
	if !ok {
		return nil, types.ErrRepositoryUnavailable
	}
	root := idx.deps.Repository.Path()

	idx.deps.Taxonomy.Initialize()

	disc := newDiscoverer(root, idx.config.NamingPrefix)

	if err := idx.indexComponents(ctx, target, root, disc, stats); err != nil {
		return nil, err
	}
	if err := idx.enrichWithDocumentation(ctx, target, disc, stats); err != nil {
		return nil, err
	}
	if err := idx.enrichWithExamples(ctx, target, root, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// indexComponents is phase one: parse every component directory concurrently
func (idx *Indexer) indexComponents(ctx context.Context, target *index.Store, root string, disc *discoverer, stats *Statistics) error {
	dirs, errs := disc.componentDirs(idx.config.ComponentRoots)
	for _, err := range errs {
		idx.logger.Printf("Warning: component discovery: %v", err)
		idx.addError(stats, err.Error())
	}
	idx.debugf("Discovered %d component directories", len(dirs))

	var (
		indexed atomic.Int32
		skipped atomic.Int32
		failed  atomic.Int32
		mu      sync.Mutex // protects stats.ErrorMessages
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.config.Workers)

	for _, dir := range dirs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stored, err := idx.indexComponentDir(gctx, target, root, dir)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				idx.logger.Printf("Warning: failed to index %s: %v", dir.MainFile, err)
				mu.Lock()
				idx.addError(stats, fmt.Sprintf("%s: %v", dir.MainFile, err))
				mu.Unlock()
				return nil
			}
			if stored {
				indexed.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()

	stats.ComponentsIndexed = int(indexed.Load())
	stats.DirectoriesSkipped = int(skipped.Load())
	stats.DirectoriesFailed = int(failed.Load())

	if err != nil {
		return err
	}
	return ctx.Err()
}

// indexComponentDir parses one directory's main file and stores the result.
// It reports false when the file declares no component.
func (idx *Indexer) indexComponentDir(ctx context.Context, target *index.Store, root string, dir componentDir) (bool, error) {
	result, err := idx.deps.Parser.ParseComponentFile(ctx, dir.MainFile)
	if err != nil {
		return false, err
	}
	if result == nil || result.ClassName == "" {
		idx.debugf("No component class in %s", dir.MainFile)
		return false, nil
	}

	category, ok := idx.deps.Taxonomy.GetCategoryName(result.ClassName)
	if !ok {
		category = idx.deps.Taxonomy.InferCategoryFromName(result.ClassName)
	}

	relPath, err := filepath.Rel(root, dir.MainFile)
	if err != nil {
		relPath = dir.MainFile
	}

	component, apiRef := idx.builder.BuildEntities(result, category, filepath.ToSlash(relPath))
	target.PutComponent(component)
	target.PutAPIReference(apiRef)
	idx.debugf("Indexed %s (%s)", component.Name, category)
	return true, nil
}

// enrichWithDocumentation is phase two: merge docs pages into stored entities
func (idx *Indexer) enrichWithDocumentation(ctx context.Context, target *index.Store, disc *discoverer, stats *Statistics) error {
	if idx.config.DocsRoot == "" {
		return nil
	}

	pages, err := disc.docsPages(idx.config.DocsRoot)
	if err != nil {
		idx.logger.Printf("Warning: documentation discovery: %v", err)
		idx.addError(stats, err.Error())
		return nil
	}
	idx.debugf("Discovered %d documentation pages", len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := idx.deps.Docs.ParseDocumentationFile(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.DocsFailed++
			idx.logger.Printf("Warning: failed to parse %s: %v", page, err)
			idx.addError(stats, fmt.Sprintf("%s: %v", page, err))
			continue
		}
		if !doc.HasComponent() {
			stats.DocsSkipped++
			continue
		}

		merged := target.UpdateComponent(doc.ComponentName, func(c *types.ComponentEntity) *types.ComponentEntity {
			if doc.Description != "" {
				c.Description = doc.Description
			}
			c.RelatedComponents = append([]string{}, doc.RelatedComponents...)
			return c
		})
		if merged {
			stats.DocsMerged++
		} else {
			stats.DocsSkipped++
			idx.debugf("No indexed component %s for %s", doc.ComponentName, page)
		}
	}
	return nil
}

// enrichWithExamples is phase three: attach examples to every stored entity
func (idx *Indexer) enrichWithExamples(ctx context.Context, target *index.Store, root string, stats *Statistics) error {
	for _, name := range target.ComponentNames() {
		if err := ctx.Err(); err != nil {
			return err
		}

		examples, err := idx.deps.Examples.ExtractExamples(ctx, root, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.ExamplesFailed++
			idx.logger.Printf("Warning: failed to extract examples for %s: %v", name, err)
			idx.addError(stats, fmt.Sprintf("%s examples: %v", name, err))
			continue
		}
		if len(examples) == 0 {
			continue
		}

		updated := target.UpdateComponent(name, func(c *types.ComponentEntity) *types.ComponentEntity {
			c.Examples = examples
			return c
		})
		if updated {
			stats.ComponentsWithExamples++
			stats.TotalExamples += len(examples)
		}
	}
	return nil
}

func (idx *Indexer) addError(stats *Statistics, msg string) {
	if len(stats.ErrorMessages) < maxErrorMessages {
		stats.ErrorMessages = append(stats.ErrorMessages, msg)
	}
}

func (idx *Indexer) debugf(format string, args ...interface{}) {
	if idx.config.Verbose {
		idx.logger.Printf(format, args...)
	}
}
