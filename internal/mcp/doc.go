// Package mcp implements the Model Context Protocol (MCP) server for
// mudcontext.
//
// The server exposes the component index to AI coding assistants through
// these tools:
//   - list_components: List components, optionally by category
//   - get_component: Full details of one component
//   - list_categories: The category taxonomy
//   - search_components: Scored keyword search
//   - get_component_examples: Usage examples from the docs site
//   - get_api_reference: Member listing of a component type
//   - get_related_components: Links, siblings, base type and derived types
//   - get_index_status: Build state, statistics and last repository sync
//   - rebuild_index: Refresh the checkout and rebuild
//
// # Basic Usage
//
//	cfg, _ := config.Load("")
//	srv, err := mcp.NewServer(cfg, mcp.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//
//	srv.StartBackgroundBuild(ctx)
//	err = srv.ServeStdio(ctx)
//
// The index is built in the background so the client handshake is not held
// up by the initial clone. Until the build completes, query tools fail with
// ErrorCodeNotIndexed and get_index_status reports building.
//
// # Tool: search_components
//
//	Request:
//	{
//	  "name": "search_components",
//	  "arguments": {
//	    "query": "date",
//	    "fields": ["name", "parameters"],
//	    "max_results": 5
//	  }
//	}
//
//	Response:
//	{
//	  "query": "date",
//	  "fields": "name,parameters",
//	  "total_matches": 3,
//	  "results": [
//	    {"name": "MudDatePicker", "category": "Form", "score": 70, ...}
//	  ]
//	}
//
// # Error Handling
//
// Handlers return *MCPError values:
//
//	-32602  invalid params
//	-32603  internal error
//	-32002  an index build is already in progress
//	-32003  index not built yet
//	-32004  empty query
//	-32005  component or type not found
//
// # Transports
//
// ServeStdio speaks MCP over stdin/stdout. ServeHTTP serves the streamable
// HTTP transport at /mcp on the given address.
package mcp
