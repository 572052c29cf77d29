package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/mudcontext-mcp/internal/indexer"
	"github.com/dshills/mudcontext-mcp/internal/searcher"
	"github.com/dshills/mudcontext-mcp/internal/storage"
	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another index build is already running
	ErrorCodeNotIndexed         = -32003 // Index not built yet
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeNotFound           = -32005 // Named component or type does not exist
)

// recentSyncLimit bounds recent_syncs in get_index_status
const recentSyncLimit = 5

// handleListComponents handles the list_components tool invocation
func (s *Server) handleListComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	var components []*types.ComponentEntity
	category := strings.TrimSpace(getStringDefault(args, "category", ""))
	if category != "" {
		components, err = s.searcher.GetComponentsByCategory(category)
	} else {
		components, err = s.searcher.GetAllComponents()
	}
	if err != nil {
		return nil, queryError(err, "failed to list components")
	}

	summaries := make([]map[string]interface{}, 0, len(components))
	for _, c := range components {
		summaries = append(summaries, componentSummary(c))
	}

	response := map[string]interface{}{
		"count":      len(summaries),
		"components": summaries,
	}
	if category != "" {
		response["category"] = category
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetComponent handles the get_component tool invocation
func (s *Server) handleGetComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}

	component, err := s.searcher.GetComponent(name)
	if err != nil {
		return nil, queryError(err, "failed to get component")
	}
	return mcp.NewToolResultText(formatValue(component)), nil
}

// handleListCategories handles the list_categories tool invocation
func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categories, err := s.searcher.GetCategories()
	if err != nil {
		return nil, queryError(err, "failed to list categories")
	}

	response := map[string]interface{}{
		"count":      len(categories),
		"categories": categories,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchComponents handles the search_components tool invocation
func (s *Server) handleSearchComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	maxResults := getIntDefault(args, "max_results", searcher.DefaultMaxResults)
	if maxResults < 1 || maxResults > searcher.MaxResultsLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_results must be between 1 and 100", map[string]interface{}{
			"param": "max_results",
			"value": maxResults,
		})
	}

	fields, err := searcher.ParseSearchFields(getStringSlice(args, "fields"))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid fields", map[string]interface{}{
			"param":   "fields",
			"reason":  err.Error(),
			"allowed": []string{"name", "description", "parameters", "examples", "all"},
		})
	}

	resp, err := s.searcher.SearchComponents(ctx, searcher.SearchRequest{
		Query:      query,
		Fields:     fields,
		MaxResults: maxResults,
		UseCache:   true,
	})
	if err != nil {
		return nil, queryError(err, "search failed")
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		entry := componentSummary(r.Component)
		entry["score"] = r.Score
		results = append(results, entry)
	}

	response := map[string]interface{}{
		"query":         query,
		"fields":        fields.String(),
		"results":       results,
		"total_matches": resp.TotalMatches,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetComponentExamples handles the get_component_examples tool invocation
func (s *Server) handleGetComponentExamples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	limit := getIntDefault(args, "limit", 0)
	if limit < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit cannot be negative", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	examples, err := s.searcher.GetExamples(name)
	if err != nil {
		return nil, queryError(err, "failed to get examples")
	}

	total := len(examples)
	if limit > 0 && len(examples) > limit {
		examples = examples[:limit]
	}

	response := map[string]interface{}{
		"component": name,
		"count":     len(examples),
		"total":     total,
		"examples":  examples,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetAPIReference handles the get_api_reference tool invocation
func (s *Server) handleGetAPIReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	typeName, err := requireString(args, "type_name")
	if err != nil {
		return nil, err
	}

	var memberType types.MemberType
	if raw := strings.TrimSpace(getStringDefault(args, "member_type", "")); raw != "" {
		switch strings.ToLower(raw) {
		case "property":
			memberType = types.MemberProperty
		case "event":
			memberType = types.MemberEvent
		case "method":
			memberType = types.MemberMethod
		default:
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid member_type", map[string]interface{}{
				"param":   "member_type",
				"value":   raw,
				"allowed": []string{"Property", "Event", "Method"},
			})
		}
	}

	ref, err := s.searcher.GetApiReference(typeName)
	if err != nil {
		return nil, queryError(err, "failed to get api reference")
	}

	if memberType != "" {
		filtered := ref.Clone()
		filtered.Members = filtered.Members[:0]
		for _, m := range ref.Members {
			if m.MemberType == memberType {
				filtered.Members = append(filtered.Members, m)
			}
		}
		ref = filtered
	}
	return mcp.NewToolResultText(formatValue(ref)), nil
}

// handleGetRelatedComponents handles the get_related_components tool invocation
func (s *Server) handleGetRelatedComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}

	rel, err := searcher.ParseRelationshipType(getStringDefault(args, "relationship", ""))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid relationship", map[string]interface{}{
			"param":   "relationship",
			"reason":  err.Error(),
			"allowed": []string{"all", "sibling", "parent", "child"},
		})
	}

	related, err := s.searcher.GetRelatedComponents(name, rel)
	if err != nil {
		return nil, queryError(err, "failed to get related components")
	}

	summaries := make([]map[string]interface{}, 0, len(related))
	for _, c := range related {
		summaries = append(summaries, componentSummary(c))
	}

	response := map[string]interface{}{
		"component":    name,
		"relationship": string(rel),
		"count":        len(summaries),
		"related":      summaries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetIndexStatus handles the get_index_status tool invocation
func (s *Server) handleGetIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"indexed":         s.indexer.IsIndexed(),
		"building":        s.indexer.IsBuilding(),
		"component_count": s.store.Len(),
		"build_count":     s.indexer.BuildCount(),
		"cache":           s.searcher.CacheStats(),
		"repository": map[string]interface{}{
			"url":       s.config.Repository.URL,
			"branch":    s.config.Repository.Branch,
			"path":      s.repo.Path(),
			"available": s.repo.IsAvailable(),
		},
	}

	if at, ok := s.indexer.LastIndexed(); ok {
		response["last_indexed_at"] = at.Format(time.RFC3339)
	}
	if stats := s.indexer.LastStats(); stats != nil {
		response["statistics"] = statisticsSummary(stats)
	}

	lastSync, err := s.storage.LastSync(ctx, s.repo.Path())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// never synced
	case err != nil:
		return nil, newMCPError(ErrorCodeInternalError, "failed to read sync history", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		response["last_sync"] = syncSummary(lastSync)
	}

	recent, err := s.storage.ListSyncs(ctx, s.repo.Path(), recentSyncLimit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read sync history", map[string]interface{}{
			"error": err.Error(),
		})
	}
	recentSyncs := make([]map[string]interface{}, 0, len(recent))
	for _, rec := range recent {
		recentSyncs = append(recentSyncs, syncSummary(rec))
	}
	response["recent_syncs"] = recentSyncs

	if !s.indexer.IsIndexed() && !s.indexer.IsBuilding() {
		response["message"] = "Index not built. Use rebuild_index to build it."
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRebuildIndex handles the rebuild_index tool invocation
func (s *Server) handleRebuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.indexer.TryRebuild(ctx)
	if err != nil {
		if errors.Is(err, indexer.ErrBuildInProgress) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "an index build is already in progress", nil)
		}
		if errors.Is(err, types.ErrRepositoryUnavailable) {
			return nil, newMCPError(ErrorCodeInternalError, "repository unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.searcher.InvalidateCache()

	response := statisticsSummary(stats)
	response["indexed"] = true
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// queryError maps a searcher error onto an MCP error code
func queryError(err error, message string) error {
	switch {
	case errors.Is(err, types.ErrIndexNotBuilt):
		return newMCPError(ErrorCodeNotIndexed, "index not built yet; retry once get_index_status reports indexed", nil)
	case errors.Is(err, types.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, err.Error(), nil)
	case errors.Is(err, searcher.ErrEmptyQuery):
		return newMCPError(ErrorCodeEmptyQuery, err.Error(), nil)
	default:
		return newMCPError(ErrorCodeInternalError, message, map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// toolArguments returns the argument map; tools without required
// parameters may be called with no arguments at all
func toolArguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requireString extracts a non-blank string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return strings.TrimSpace(val), nil
}

func componentSummary(c *types.ComponentEntity) map[string]interface{} {
	return map[string]interface{}{
		"name":              c.Name,
		"category":          c.Category,
		"summary":           c.Summary,
		"documentation_url": c.DocumentationURL,
	}
}

func statisticsSummary(stats *indexer.Statistics) map[string]interface{} {
	summary := map[string]interface{}{
		"components_indexed":       stats.ComponentsIndexed,
		"directories_skipped":      stats.DirectoriesSkipped,
		"directories_failed":       stats.DirectoriesFailed,
		"docs_merged":              stats.DocsMerged,
		"docs_skipped":             stats.DocsSkipped,
		"docs_failed":              stats.DocsFailed,
		"components_with_examples": stats.ComponentsWithExamples,
		"total_examples":           stats.TotalExamples,
		"examples_failed":          stats.ExamplesFailed,
		"duration_ms":              stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			summary["errors"] = stats.ErrorMessages[:5]
		} else {
			summary["errors"] = stats.ErrorMessages
		}
		summary["error_count"] = errorCount
	}
	return summary
}

func syncSummary(rec *storage.SyncRecord) map[string]interface{} {
	summary := map[string]interface{}{
		"action":      string(rec.Action),
		"success":     rec.Success,
		"started_at":  rec.StartedAt.Format(time.RFC3339),
		"duration_ms": rec.Duration.Milliseconds(),
	}
	if rec.CommitSHA != "" {
		summary["commit"] = rec.CommitSHA
	}
	if rec.Error != "" {
		summary["error"] = rec.Error
	}
	return summary
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	return formatValue(data)
}

// formatValue formats any value as indented JSON
func formatValue(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter. A single string is
// treated as a one-element list.
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, v := range val {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(val, ",")
	}
	return nil
}
