// Package searcher implements the read side of the component index: lookups,
// category filtering, scored keyword search and relationship traversal.
//
// # Basic Usage
//
//	s := searcher.New(store, idx, tax, searcher.Options{NamingPrefix: "Mud"})
//
//	resp, err := s.SearchComponents(ctx, searcher.SearchRequest{
//	    Query:      "date",
//	    Fields:     searcher.FieldName | searcher.FieldParameters,
//	    MaxResults: 5,
//	    UseCache:   true,
//	})
//
//	for _, r := range resp.Results {
//	    fmt.Printf("%3d %s\n", r.Score, r.Component.Name)
//	}
//
// Every operation returns types.ErrIndexNotBuilt until the indexer reports
// a completed build.
//
// # Name Lookup
//
// Names match ignoring case. When a name misses and lacks the naming prefix
// the lookup is retried with the prefix, so "button" resolves to MudButton.
//
// # Relevance Scoring
//
// Scores are additive integers over the selected fields:
//
//	Name         exact match 100, otherwise substring 50
//	Description  summary substring 30, description substring 20
//	Parameters   10 per matching name, 5 per matching description
//	Examples     5 per matching example name
//
// Components scoring zero are dropped. Results are ordered by score with
// ties kept in index order, so repeated queries return identical lists.
//
// # Caching
//
// Search responses are held in an LRU (hashicorp/golang-lru) keyed by a
// SHA-256 of the normalized request and the store version. Entries expire
// after Options.CacheTTL, and any write to the store changes the version, so
// a rebuilt index never serves stale results. Cached responses are deep
// copied in both directions.
package searcher
