// Package indexer builds the in-memory component index from a checkout of
// the component library.
//
// # Basic Usage
//
//	idx := indexer.New(indexer.Dependencies{
//	    Repository: repoManager,
//	    Parser:     parser.New(),
//	    Docs:       docs.New("Mud"),
//	    Examples:   examples.New("src/Docs/Pages/Components", "Mud"),
//	    Taxonomy:   taxonomy.New(),
//	}, index.New(), indexer.Config{
//	    ComponentRoots: []string{"src/Components"},
//	    DocsRoot:       "src/Docs/Pages/Components",
//	    NamingPrefix:   "Mud",
//	})
//
//	stats, err := idx.BuildIndex(ctx)
//
// # Build Phases
//
// A build makes sure the repository is available, initializes the category
// taxonomy and then runs three phases strictly in order:
//
//  1. Components: every component directory is parsed concurrently
//     (Config.Workers at a time) and its entity and API reference stored.
//  2. Documentation: each *Page.razor page is parsed and merged into the
//     component it names. Pages naming an unknown component are skipped.
//  3. Examples: each stored component gets the examples found for it.
//
// Failures of single directories, pages or example sets are logged and
// counted in Statistics. Only an unavailable repository
// (types.ErrRepositoryUnavailable) and context cancellation abort a build.
//
// # Concurrency
//
// At most one build runs at a time. BuildIndex callers that arrive while a
// build is in flight wait for it and reuse its result. Rebuild always builds
// again, into a separate store that replaces the live one only when every
// phase has succeeded; a failed or cancelled rebuild leaves the current
// index serving. TryRebuild returns ErrBuildInProgress instead of waiting.
// Queries never take the build lock: the store is safe for concurrent reads
// while a build writes to it.
package indexer
