package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/mudcontext-mcp/internal/searcher"
)

// listComponentsTool returns the tool definition for list_components
func listComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_components",
		Description: "List indexed MudBlazor components, optionally filtered by category",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Category name or title to filter by (see list_categories)",
				},
			},
		},
	}
}

// getComponentTool returns the tool definition for get_component
func getComponentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_component",
		Description: "Get full details of a component: parameters, events, methods, examples and links",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Component name, with or without the Mud prefix (e.g. MudButton or Button)",
				},
			},
			Required: []string{"name"},
		},
	}
}

// listCategoriesTool returns the tool definition for list_categories
func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_categories",
		Description: "List component categories and their members",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// searchComponentsTool returns the tool definition for search_components
func searchComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_components",
		Description: "Search components by keyword across names, descriptions, parameters and examples",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Keyword to search for (case-insensitive)",
				},
				"fields": map[string]interface{}{
					"type":        "array",
					"description": "Fields to search; defaults to all",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"name", "description", "parameters", "examples", "all"},
					},
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     searcher.DefaultMaxResults,
					"minimum":     1,
					"maximum":     searcher.MaxResultsLimit,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getComponentExamplesTool returns the tool definition for get_component_examples
func getComponentExamplesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_component_examples",
		Description: "Get usage examples for a component extracted from the documentation site",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Component name",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of examples to return; 0 returns all",
					"default":     0,
					"minimum":     0,
				},
			},
			Required: []string{"name"},
		},
	}
}

// getAPIReferenceTool returns the tool definition for get_api_reference
func getAPIReferenceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_api_reference",
		Description: "Get the API member listing (properties, events, methods) of a component type",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type_name": map[string]interface{}{
					"type":        "string",
					"description": "Component type name",
				},
				"member_type": map[string]interface{}{
					"type":        "string",
					"description": "Only return members of this kind",
					"enum":        []string{"Property", "Event", "Method"},
				},
			},
			Required: []string{"type_name"},
		},
	}
}

// getRelatedComponentsTool returns the tool definition for get_related_components
func getRelatedComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_related_components",
		Description: "Find components related to a component by documentation links, category, or inheritance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Component name",
				},
				"relationship": map[string]interface{}{
					"type":        "string",
					"description": "Relationship to follow",
					"enum":        []string{"all", "sibling", "parent", "child"},
					"default":     "all",
				},
			},
			Required: []string{"name"},
		},
	}
}

// getIndexStatusTool returns the tool definition for get_index_status
func getIndexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_index_status",
		Description: "Report whether the component index is built, with build statistics and repository sync state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// rebuildIndexTool returns the tool definition for rebuild_index
func rebuildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rebuild_index",
		Description: "Refresh the repository checkout and rebuild the component index from scratch",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
