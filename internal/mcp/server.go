package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/mudcontext-mcp/internal/config"
	"github.com/dshills/mudcontext-mcp/internal/docs"
	"github.com/dshills/mudcontext-mcp/internal/examples"
	"github.com/dshills/mudcontext-mcp/internal/index"
	"github.com/dshills/mudcontext-mcp/internal/indexer"
	"github.com/dshills/mudcontext-mcp/internal/parser"
	"github.com/dshills/mudcontext-mcp/internal/repository"
	"github.com/dshills/mudcontext-mcp/internal/searcher"
	"github.com/dshills/mudcontext-mcp/internal/storage"
	"github.com/dshills/mudcontext-mcp/internal/taxonomy"
)

const (
	// ServerName is the MCP server name
	ServerName = "mudcontext-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// shutdownTimeout bounds the HTTP transport's graceful shutdown
const shutdownTimeout = 10 * time.Second

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	config   *config.Config
	logger   *log.Logger
	storage  storage.Storage
	repo     *repository.Manager
	store    *index.Store
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
}

// Options tune NewServer
type Options struct {
	Logger  *log.Logger
	Verbose bool
}

// NewServer wires the sync ledger, repository manager, parsers, indexer and
// searcher described by cfg and registers the MCP tools
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ledger, err := storage.NewSQLiteStorage(cfg.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	retry := repository.DefaultRetryConfig()
	if cfg.Repository.MaxRetries > 0 {
		retry.MaxRetries = cfg.Repository.MaxRetries
	}
	repo := repository.NewManager(repository.Options{
		URL:             cfg.Repository.URL,
		Branch:          cfg.Repository.Branch,
		LocalPath:       cfg.Repository.LocalPath,
		RefreshInterval: cfg.Repository.RefreshInterval.Duration,
		FetchTimeout:    cfg.Repository.FetchTimeout.Duration,
		Retry:           retry,
		Ledger:          ledger,
		Logger:          logger,
	})

	prefix := cfg.Layout.NamingPrefix
	tax := taxonomy.NewWithDefinitions(prefix, taxonomy.DefaultDefinitions())
	store := index.New()

	idx := indexer.New(indexer.Dependencies{
		Repository: repo,
		Parser:     parser.New(),
		Docs:       docs.New(prefix),
		Examples:   examples.New(cfg.Layout.DocsRoot, prefix),
		Taxonomy:   tax,
	}, store, indexer.Config{
		ComponentRoots: cfg.Layout.ComponentRoots,
		DocsRoot:       cfg.Layout.DocsRoot,
		NamingPrefix:   prefix,
		DocsBaseURL:    cfg.URLs.DocsBase,
		SourceBaseURL:  cfg.URLs.SourceBase,
		Workers:        cfg.Indexer.Workers,
		Verbose:        opts.Verbose,
		Logger:         logger,
	})

	srch := searcher.New(store, idx, tax, searcher.Options{
		NamingPrefix: prefix,
		CacheSize:    cfg.Search.CacheSize,
		CacheTTL:     cfg.Search.CacheTTL.Duration,
	})

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:      mcpServer,
		config:   cfg,
		logger:   logger,
		storage:  ledger,
		repo:     repo,
		store:    store,
		indexer:  idx,
		searcher: srch,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// BuildIndex runs a build in the foreground
func (s *Server) BuildIndex(ctx context.Context) (*indexer.Statistics, error) {
	return s.indexer.BuildIndex(ctx)
}

// StartBackgroundBuild builds the index without blocking. Tools answer
// "not indexed" until the build completes.
func (s *Server) StartBackgroundBuild(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		stats, err := s.indexer.BuildIndex(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Printf("Error: initial index build failed: %v", err)
			}
			done <- err
			return
		}
		if len(stats.ErrorMessages) > 0 {
			s.logger.Printf("Initial index build finished with %d errors", len(stats.ErrorMessages))
		}
	}()
	return done
}

// ServeStdio serves MCP on stdin/stdout until ctx is cancelled
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is cancelled
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Serving MCP over HTTP on %s", addr)
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// Close releases the sync ledger
func (s *Server) Close() error {
	return s.storage.Close()
}

// tools returns every tool definition paired with its handler
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		// Component lookups
		{Tool: listComponentsTool(), Handler: s.handleListComponents},
		{Tool: getComponentTool(), Handler: s.handleGetComponent},
		{Tool: listCategoriesTool(), Handler: s.handleListCategories},

		// Search and traversal
		{Tool: searchComponentsTool(), Handler: s.handleSearchComponents},
		{Tool: getComponentExamplesTool(), Handler: s.handleGetComponentExamples},
		{Tool: getAPIReferenceTool(), Handler: s.handleGetAPIReference},
		{Tool: getRelatedComponentsTool(), Handler: s.handleGetRelatedComponents},

		// Index lifecycle
		{Tool: getIndexStatusTool(), Handler: s.handleGetIndexStatus},
		{Tool: rebuildIndexTool(), Handler: s.handleRebuildIndex},
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	tools := s.tools()
	if err := validateTools(tools); err != nil {
		return err
	}
	s.mcp.AddTools(tools...)
	return nil
}

// validateTools rejects unnamed, duplicate or incomplete tool definitions
func validateTools(tools []server.ServerTool) error {
	seen := make(map[string]bool, len(tools))
	for i, t := range tools {
		name := t.Tool.Name
		switch {
		case name == "":
			return fmt.Errorf("tool %d has no name", i)
		case seen[name]:
			return fmt.Errorf("duplicate tool name %q", name)
		case t.Handler == nil:
			return fmt.Errorf("tool %q has no handler", name)
		case t.Tool.InputSchema.Type != "object":
			return fmt.Errorf("tool %q input schema must be an object, got %q", name, t.Tool.InputSchema.Type)
		}
		seen[name] = true
	}
	return nil
}
