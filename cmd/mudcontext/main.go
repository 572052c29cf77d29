package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/mudcontext-mcp/internal/config"
	"github.com/dshills/mudcontext-mcp/internal/mcp"
	"github.com/dshills/mudcontext-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool
	flagHTTP    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "mudcontext",
	Short:         "MCP server exposing MudBlazor component knowledge",
	Long:          "mudcontext indexes the MudBlazor source and documentation and answers component queries over the Model Context Protocol.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdio (default) or streamable HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Sync the repository, build the index once and print statistics as JSON",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "MudContext MCP Server\n")
		fmt.Fprintf(out, "Version: %s\n", version)
		fmt.Fprintf(out, "Build Time: %s\n", buildTime)
		fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
		fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a TOML config file (default: $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log per-component build progress")

	rootCmd.Flags().StringVar(&flagHTTP, "http", "", "serve streamable HTTP on this address instead of stdio")
	serveCmd.Flags().StringVar(&flagHTTP, "http", "", "serve streamable HTTP on this address instead of stdio")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)
}

// newServer loads configuration and creates the MCP server. Logs go to
// stderr; stdout is reserved for the MCP protocol.
func newServer() (*mcp.Server, *log.Logger, error) {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	server, err := mcp.NewServer(cfg, mcp.Options{Logger: logger, Verbose: flagVerbose})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server, logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	server, logger, err := newServer()
	if err != nil {
		return err
	}
	defer func() { _ = server.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("MudContext MCP Server v%s starting (driver %s)", version, storage.DriverName)
	server.StartBackgroundBuild(ctx)

	if flagHTTP != "" {
		err = server.ServeHTTP(ctx, flagHTTP)
	} else {
		logger.Println("MCP server ready, listening on stdio...")
		err = server.ServeStdio(ctx)
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Println("Server stopped")
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	server, _, err := newServer()
	if err != nil {
		return err
	}
	defer func() { _ = server.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := server.BuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
