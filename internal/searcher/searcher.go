package searcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dshills/mudcontext-mcp/internal/index"
	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// Score weights
const (
	scoreExactName     = 100
	scoreNameContains  = 50
	scoreSummary       = 30
	scoreDescription   = 20
	scoreParameterName = 10
	scoreParameterDesc = 5
	scoreExampleName   = 5
)

const (
	DefaultMaxResults = 10
	MaxResultsLimit   = 100
	MaxRelatedResults = 10

	defaultCacheEntries = 1000
	defaultCacheTTL     = time.Hour
)

// ErrEmptyQuery is returned by SearchComponents for a blank query
var ErrEmptyQuery = errors.New("search query is empty")

// IndexState reports whether the index has been built
type IndexState interface {
	IsIndexed() bool
}

// CategorySource lists the component categories
type CategorySource interface {
	GetCategories() []types.CategoryEntity
}

// Options configures a Searcher
type Options struct {
	// NamingPrefix is prepended when a lookup by the bare name misses
	NamingPrefix string
	CacheSize    int
	CacheTTL     time.Duration
}

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query      string
	Fields     SearchFields // zero means FieldAll
	MaxResults int          // zero means DefaultMaxResults
	UseCache   bool
}

// SearchResult is a scored component
type SearchResult struct {
	Component *types.ComponentEntity `json:"component"`
	Score     int                    `json:"score"`
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalMatches int            `json:"total_matches"`
	Duration     time.Duration  `json:"duration_ns"`
	CacheHit     bool           `json:"cache_hit"`
}

// Searcher answers queries against the component index. Every operation
// returns types.ErrIndexNotBuilt until the first build has completed.
type Searcher struct {
	store      *index.Store
	state      IndexState
	categories CategorySource
	prefix     string
	cache      *queryCache
}

// New creates a Searcher over store
func New(store *index.Store, state IndexState, categories CategorySource, opts Options) *Searcher {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheEntries
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &Searcher{
		store:      store,
		state:      state,
		categories: categories,
		prefix:     opts.NamingPrefix,
		cache:      newQueryCache(opts.CacheSize, opts.CacheTTL),
	}
}

func (s *Searcher) ready() error {
	if s.state == nil || !s.state.IsIndexed() {
		return types.ErrIndexNotBuilt
	}
	return nil
}

// GetAllComponents returns every component in index order
func (s *Searcher) GetAllComponents() ([]*types.ComponentEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.AllComponents(), nil
}

// GetComponent looks a component up by name, ignoring case. A name without
// the naming prefix is retried with it ("Button" finds "MudButton").
func (s *Searcher) GetComponent(name string) (*types.ComponentEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	c, ok := lookup(name, s.prefix, s.store.GetComponent)
	if !ok {
		return nil, fmt.Errorf("component %q: %w", name, types.ErrNotFound)
	}
	return c, nil
}

// GetCategories returns the category taxonomy
func (s *Searcher) GetCategories() ([]types.CategoryEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.categories == nil {
		return []types.CategoryEntity{}, nil
	}
	return s.categories.GetCategories(), nil
}

// GetComponentsByCategory returns the components whose category matches,
// ignoring case. A category title is accepted in place of its name.
func (s *Searcher) GetComponentsByCategory(category string) ([]*types.ComponentEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	category = s.resolveCategory(strings.TrimSpace(category))

	out := []*types.ComponentEntity{}
	for _, c := range s.store.AllComponents() {
		if strings.EqualFold(c.Category, category) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Searcher) resolveCategory(category string) string {
	if s.categories == nil {
		return category
	}
	for _, c := range s.categories.GetCategories() {
		if strings.EqualFold(c.Name, category) {
			return c.Name
		}
	}
	for _, c := range s.categories.GetCategories() {
		if strings.EqualFold(c.Title, category) {
			return c.Name
		}
	}
	return category
}

// SearchComponents scores every component against the query and returns the
// best matches, highest score first. Ties keep index order.
func (s *Searcher) SearchComponents(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	key := cacheKey(req, s.store.Version())
	if req.UseCache {
		if cached, ok := s.cache.get(key); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	query := strings.ToLower(req.Query)
	var results []SearchResult
	for _, c := range s.store.AllComponents() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if score := scoreComponent(c, query, req.Fields); score > 0 {
			results = append(results, SearchResult{Component: c, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	response := &SearchResponse{
		TotalMatches: len(results),
		Results:      results,
	}
	if len(response.Results) > req.MaxResults {
		response.Results = response.Results[:req.MaxResults]
	}
	if response.Results == nil {
		response.Results = []SearchResult{}
	}
	response.Duration = time.Since(startTime)

	if req.UseCache {
		s.cache.put(key, response)
	}
	return response, nil
}

func validateRequest(req *SearchRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return ErrEmptyQuery
	}
	if req.Fields == 0 {
		req.Fields = FieldAll
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.MaxResults > MaxResultsLimit {
		req.MaxResults = MaxResultsLimit
	}
	return nil
}

// scoreComponent computes the additive relevance score; query is lower-case
func scoreComponent(c *types.ComponentEntity, query string, fields SearchFields) int {
	score := 0

	if fields.Has(FieldName) {
		name := strings.ToLower(c.Name)
		switch {
		case name == query:
			score += scoreExactName
		case strings.Contains(name, query):
			score += scoreNameContains
		}
	}

	if fields.Has(FieldDescription) {
		if contains(c.Summary, query) {
			score += scoreSummary
		}
		if contains(c.Description, query) {
			score += scoreDescription
		}
	}

	if fields.Has(FieldParameters) {
		for _, p := range c.Parameters {
			if contains(p.Name, query) {
				score += scoreParameterName
			}
			if contains(p.Description, query) {
				score += scoreParameterDesc
			}
		}
	}

	if fields.Has(FieldExamples) {
		for _, ex := range c.Examples {
			if contains(ex.Name, query) {
				score += scoreExampleName
			}
		}
	}

	return score
}

func contains(s, lowerQuery string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerQuery)
}

// GetExamples returns the examples of a component; an unknown component
// has none
func (s *Searcher) GetExamples(name string) ([]types.ComponentExample, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	c, ok := lookup(name, s.prefix, s.store.GetComponent)
	if !ok {
		return []types.ComponentExample{}, nil
	}
	return c.Examples, nil
}

// GetApiReference returns the member listing of a component type, with the
// same prefix retry as GetComponent
func (s *Searcher) GetApiReference(typeName string) (*types.ApiReferenceEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	ref, ok := lookup(typeName, s.prefix, s.store.GetAPIReference)
	if !ok {
		return nil, fmt.Errorf("api reference %q: %w", typeName, types.ErrNotFound)
	}
	return ref, nil
}

// GetRelatedComponents collects components related to name. Candidates are
// gathered in order: explicit links, then category siblings, then the base
// type, then components deriving from this one. Names that do not resolve
// are dropped and at most MaxRelatedResults are returned.
func (s *Searcher) GetRelatedComponents(name string, rel RelationshipType) ([]*types.ComponentEntity, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if rel == "" {
		rel = RelationAll
	}

	target, ok := lookup(name, s.prefix, s.store.GetComponent)
	if !ok {
		return nil, fmt.Errorf("component %q: %w", name, types.ErrNotFound)
	}

	var candidates []string
	candidates = append(candidates, target.RelatedComponents...)

	all := s.store.AllComponents()
	if rel.includes(RelationSibling) && target.Category != "" {
		for _, c := range all {
			if !strings.EqualFold(c.Name, target.Name) && strings.EqualFold(c.Category, target.Category) {
				candidates = append(candidates, c.Name)
			}
		}
	}
	if rel.includes(RelationParent) && target.BaseType != "" {
		candidates = append(candidates, target.BaseType)
	}
	if rel.includes(RelationChild) {
		for _, c := range all {
			if strings.EqualFold(c.BaseType, target.Name) {
				candidates = append(candidates, c.Name)
			}
		}
	}

	seen := map[string]bool{strings.ToLower(target.Name): true}
	out := []*types.ComponentEntity{}
	for _, candidate := range candidates {
		if len(out) >= MaxRelatedResults {
			break
		}
		key := strings.ToLower(candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		if c, ok := s.store.GetComponent(candidate); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// InvalidateCache drops every cached search response
func (s *Searcher) InvalidateCache() {
	s.cache.purge()
}

// lookup tries name as given, then with the naming prefix prepended
func lookup[T any](name, prefix string, get func(string) (T, bool)) (T, bool) {
	name = strings.TrimSpace(name)
	if v, ok := get(name); ok {
		return v, true
	}
	if prefix != "" && name != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
		return get(prefix + name)
	}
	var zero T
	return zero, false
}
