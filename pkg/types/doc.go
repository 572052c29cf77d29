// Package types provides shared type definitions for the MudContext MCP server.
//
// This package defines the domain entities produced by the indexer and served
// by the searcher, plus the results returned by the parsing collaborators.
//
// # Core Types
//
// ComponentEntity is the canonical, fully merged record for a UI component:
//
//	entity := &types.ComponentEntity{
//	    Name:      "MudButton",
//	    Namespace: "MudBlazor",
//	    Category:  "Buttons",
//	    BaseType:  "MudBaseButton",
//	}
//
// ApiReferenceEntity is a flat projection of the same component's members,
// where every parameter, event and method becomes an ApiMember:
//
//	member := types.ApiMember{
//	    Name:       "OnClick",
//	    MemberType: types.MemberEvent,
//	    ReturnType: "EventCallback<MouseEventArgs>",
//	}
//
// CategoryEntity groups components for browsing.
//
// # Collaborator Results
//
// ParseResult is produced by the C# source parser and DocResult by the
// documentation page parser. Both are raw inputs to the indexer's entity
// builder and are never stored directly.
//
// # Ownership
//
// Entities are owned by the index store. Everything handed to callers is a
// deep copy produced by Clone, so callers may mutate what they receive.
package types
