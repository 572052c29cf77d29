package searcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mudcontext-mcp/internal/index"
	"github.com/dshills/mudcontext-mcp/pkg/types"
)

type fakeState struct {
	indexed atomic.Bool
}

func (f *fakeState) IsIndexed() bool { return f.indexed.Load() }

type fakeCategories []types.CategoryEntity

func (f fakeCategories) GetCategories() []types.CategoryEntity {
	out := make([]types.CategoryEntity, len(f))
	copy(out, f)
	return out
}

var testCategories = fakeCategories{
	{Name: "Widgets", Title: "Widget Things", ComponentNames: []string{"Alpha", "Beta"}},
	{Name: "Controls", Title: "Input Controls", ComponentNames: []string{"Gamma"}},
}

func entity(name, category, baseType string) *types.ComponentEntity {
	return &types.ComponentEntity{
		Name:              name,
		Namespace:         "Lib",
		Summary:           name + " component.",
		Category:          category,
		BaseType:          baseType,
		Parameters:        []types.ComponentParameter{},
		Events:            []types.ComponentEvent{},
		Methods:           []types.ComponentMethod{},
		Examples:          []types.ComponentExample{},
		RelatedComponents: []string{},
	}
}

// setupSearcher indexes Alpha, Beta (derives from Alpha) and Gamma
func setupSearcher(t *testing.T) (*Searcher, *index.Store, *fakeState) {
	t.Helper()
	store := index.New()
	store.PutComponent(entity("Alpha", "Widgets", ""))
	store.PutComponent(entity("Beta", "Widgets", "Alpha"))
	store.PutComponent(entity("Gamma", "Controls", ""))

	state := &fakeState{}
	state.indexed.Store(true)
	return New(store, state, testCategories, Options{}), store, state
}

func names(components []*types.ComponentEntity) []string {
	out := make([]string, len(components))
	for i, c := range components {
		out[i] = c.Name
	}
	return out
}

func resultNames(resp *SearchResponse) []string {
	out := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = r.Component.Name
	}
	return out
}

func TestQueriesBeforeBuild(t *testing.T) {
	s, _, state := setupSearcher(t)
	state.indexed.Store(false)
	ctx := context.Background()

	checks := map[string]func() error{
		"GetAllComponents": func() error { _, err := s.GetAllComponents(); return err },
		"GetComponent":     func() error { _, err := s.GetComponent("Alpha"); return err },
		"GetCategories":    func() error { _, err := s.GetCategories(); return err },
		"GetComponentsByCategory": func() error {
			_, err := s.GetComponentsByCategory("Widgets")
			return err
		},
		"SearchComponents": func() error {
			_, err := s.SearchComponents(ctx, SearchRequest{Query: "alpha"})
			return err
		},
		"GetExamples":     func() error { _, err := s.GetExamples("Alpha"); return err },
		"GetApiReference": func() error { _, err := s.GetApiReference("Alpha"); return err },
		"GetRelatedComponents": func() error {
			_, err := s.GetRelatedComponents("Alpha", RelationAll)
			return err
		},
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, check(), types.ErrIndexNotBuilt)
		})
	}
}

func TestNilStateIsNotBuilt(t *testing.T) {
	s := New(index.New(), nil, nil, Options{})
	_, err := s.GetAllComponents()
	assert.ErrorIs(t, err, types.ErrIndexNotBuilt)
}

func TestGetAllComponents(t *testing.T) {
	s, _, _ := setupSearcher(t)
	all, err := s.GetAllComponents()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names(all))
}

func TestGetComponent_CaseInsensitive(t *testing.T) {
	store := index.New()
	store.PutComponent(entity("MyButton", "Buttons", ""))
	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{NamingPrefix: "My"})

	for _, name := range []string{"mybutton", "MyButton", "MYBUTTON", "  MyButton "} {
		c, err := s.GetComponent(name)
		require.NoError(t, err, name)
		assert.Equal(t, "MyButton", c.Name)
	}
}

func TestGetComponent_PrefixFallback(t *testing.T) {
	store := index.New()
	store.PutComponent(entity("LibButton", "Buttons", ""))
	store.PutAPIReference(&types.ApiReferenceEntity{Name: "LibButton", Members: []types.ApiMember{}})
	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{NamingPrefix: "Lib"})

	c, err := s.GetComponent("Button")
	require.NoError(t, err)
	assert.Equal(t, "LibButton", c.Name)

	c, err = s.GetComponent("button")
	require.NoError(t, err)
	assert.Equal(t, "LibButton", c.Name)

	ref, err := s.GetApiReference("Button")
	require.NoError(t, err)
	assert.Equal(t, "LibButton", ref.Name)

	// Already prefixed names are not retried
	_, err = s.GetComponent("LibCard")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetComponent_NotFound(t *testing.T) {
	s, _, _ := setupSearcher(t)
	_, err := s.GetComponent("Delta")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, err.Error(), "Delta")
}

func TestGetCategories(t *testing.T) {
	s, _, _ := setupSearcher(t)
	cats, err := s.GetCategories()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Widgets", cats[0].Name)

	empty := New(index.New(), &fakeState{}, nil, Options{})
	empty.state.(*fakeState).indexed.Store(true)
	cats, err = empty.GetCategories()
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestGetComponentsByCategory(t *testing.T) {
	s, _, _ := setupSearcher(t)

	tests := []struct {
		category string
		want     []string
	}{
		{"Widgets", []string{"Alpha", "Beta"}},
		{"widgets", []string{"Alpha", "Beta"}},
		{"Widget Things", []string{"Alpha", "Beta"}},
		{"Controls", []string{"Gamma"}},
		{"Nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, err := s.GetComponentsByCategory(tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSearchComponents_Scoring(t *testing.T) {
	store := index.New()

	button := entity("MudButton", "Buttons", "")
	button.Summary = "A clickable button."
	button.Parameters = []types.ComponentParameter{
		{Name: "ButtonType", Description: "The HTML button type."},
		{Name: "Color"},
	}
	button.Examples = []types.ComponentExample{{Name: "Button Sizes"}}

	group := entity("MudButtonGroup", "Buttons", "")
	group.Summary = "Groups several buttons."
	group.Description = "Use with MudButton children."

	fab := entity("MudFab", "Buttons", "")
	fab.Summary = "A floating action button."

	store.PutComponent(fab)
	store.PutComponent(group)
	store.PutComponent(button)
	store.PutComponent(entity("MudCard", "Surfaces", ""))

	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{})

	t.Run("all fields", func(t *testing.T) {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "button"})
		require.NoError(t, err)
		// equal scores keep index order
		assert.Equal(t, []string{"MudButtonGroup", "MudButton", "MudFab"}, resultNames(resp))
		// name 50 + summary 30 + description 20
		assert.Equal(t, 100, resp.Results[0].Score)
		// name 50 + summary 30 + param name 10 + param desc 5 + example 5
		assert.Equal(t, 100, resp.Results[1].Score)
		assert.Equal(t, 30, resp.Results[2].Score)
		assert.Equal(t, 3, resp.TotalMatches)
	})

	t.Run("exact name outranks substring", func(t *testing.T) {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "MudButton", Fields: FieldName})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		assert.Equal(t, "MudButton", resp.Results[0].Component.Name)
		assert.Equal(t, 100, resp.Results[0].Score)
		assert.Equal(t, 50, resp.Results[1].Score)
	})

	t.Run("field selection", func(t *testing.T) {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "floating", Fields: FieldName})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
		assert.NotNil(t, resp.Results)

		resp, err = s.SearchComponents(context.Background(), SearchRequest{Query: "floating", Fields: FieldDescription})
		require.NoError(t, err)
		assert.Equal(t, []string{"MudFab"}, resultNames(resp))

		resp, err = s.SearchComponents(context.Background(), SearchRequest{Query: "sizes", Fields: FieldExamples})
		require.NoError(t, err)
		assert.Equal(t, []string{"MudButton"}, resultNames(resp))
		assert.Equal(t, scoreExampleName, resp.Results[0].Score)

		resp, err = s.SearchComponents(context.Background(), SearchRequest{Query: "color", Fields: FieldParameters})
		require.NoError(t, err)
		assert.Equal(t, []string{"MudButton"}, resultNames(resp))
		assert.Equal(t, scoreParameterName, resp.Results[0].Score)
	})

	t.Run("stable tie break", func(t *testing.T) {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "mud", Fields: FieldName})
		require.NoError(t, err)
		assert.Equal(t, []string{"MudFab", "MudButtonGroup", "MudButton", "MudCard"}, resultNames(resp))
	})

	t.Run("max results", func(t *testing.T) {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "mud", MaxResults: 2})
		require.NoError(t, err)
		assert.Len(t, resp.Results, 2)
		assert.Equal(t, 4, resp.TotalMatches)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := s.SearchComponents(context.Background(), SearchRequest{Query: "button"})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := s.SearchComponents(context.Background(), SearchRequest{Query: "button"})
			require.NoError(t, err)
			assert.Equal(t, resultNames(first), resultNames(again))
		}
	})
}

func TestSearchComponents_Validation(t *testing.T) {
	s, _, _ := setupSearcher(t)

	_, err := s.SearchComponents(context.Background(), SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	req := SearchRequest{Query: " x ", MaxResults: 1000}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, "x", req.Query)
	assert.Equal(t, FieldAll, req.Fields)
	assert.Equal(t, MaxResultsLimit, req.MaxResults)

	req = SearchRequest{Query: "x"}
	require.NoError(t, validateRequest(&req))
	assert.Equal(t, DefaultMaxResults, req.MaxResults)
}

func TestSearchComponents_Cancelled(t *testing.T) {
	s, _, _ := setupSearcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SearchComponents(ctx, SearchRequest{Query: "alpha"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearchComponents_Cache(t *testing.T) {
	s, store, _ := setupSearcher(t)
	ctx := context.Background()
	req := SearchRequest{Query: "alpha", UseCache: true}

	first, err := s.SearchComponents(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.SearchComponents(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, resultNames(first), resultNames(second))

	// Mutating a cached copy must not leak into the cache
	second.Results[0].Component.Name = "mutated"
	third, err := s.SearchComponents(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", third.Results[0].Component.Name)

	// Any store write changes the version and misses the cache
	store.PutComponent(entity("Alphabet", "Widgets", ""))
	fourth, err := s.SearchComponents(ctx, req)
	require.NoError(t, err)
	assert.False(t, fourth.CacheHit)
	assert.Equal(t, []string{"Alpha", "Alphabet"}, resultNames(fourth))

	stats := s.CacheStats()
	assert.Equal(t, int64(4), stats.Lookups)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 2, stats.Entries)

	s.InvalidateCache()
	assert.Equal(t, 0, s.cache.len())
}

func TestSearchComponents_CacheDisabled(t *testing.T) {
	s, _, _ := setupSearcher(t)
	for i := 0; i < 2; i++ {
		resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "alpha"})
		require.NoError(t, err)
		assert.False(t, resp.CacheHit)
	}
	assert.Equal(t, 0, s.cache.len())
}

func TestQueryCache_Expiry(t *testing.T) {
	c := newQueryCache(10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	key := cacheKey(SearchRequest{Query: "x"}, 1)
	c.put(key, &SearchResponse{Results: []SearchResult{}})

	_, ok := c.get(key)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
}

func TestQueryCache_Eviction(t *testing.T) {
	c := newQueryCache(2, time.Hour)
	for i := 0; i < 3; i++ {
		c.put(cacheKey(SearchRequest{Query: fmt.Sprint(i)}, 0), &SearchResponse{})
	}
	assert.Equal(t, 2, c.len())
	_, ok := c.get(cacheKey(SearchRequest{Query: "0"}, 0))
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestCacheKey(t *testing.T) {
	base := SearchRequest{Query: "button", Fields: FieldAll, MaxResults: 10}
	assert.Equal(t, cacheKey(base, 1), cacheKey(SearchRequest{Query: "BUTTON", Fields: FieldAll, MaxResults: 10}, 1))
	assert.NotEqual(t, cacheKey(base, 1), cacheKey(base, 2))

	other := base
	other.Fields = FieldName
	assert.NotEqual(t, cacheKey(base, 1), cacheKey(other, 1))

	other = base
	other.MaxResults = 5
	assert.NotEqual(t, cacheKey(base, 1), cacheKey(other, 1))
}

func TestGetExamples(t *testing.T) {
	s, store, _ := setupSearcher(t)
	store.UpdateComponent("Alpha", func(c *types.ComponentEntity) *types.ComponentEntity {
		c.Examples = []types.ComponentExample{{Name: "Basic", Features: []string{}}}
		return c
	})

	examples, err := s.GetExamples("alpha")
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "Basic", examples[0].Name)

	examples, err = s.GetExamples("Delta")
	require.NoError(t, err)
	assert.NotNil(t, examples)
	assert.Empty(t, examples)
}

func TestGetApiReference(t *testing.T) {
	s, store, _ := setupSearcher(t)
	store.PutAPIReference(&types.ApiReferenceEntity{
		Name:    "Alpha",
		Members: []types.ApiMember{{Name: "Color", MemberType: types.MemberProperty}},
	})

	ref, err := s.GetApiReference("ALPHA")
	require.NoError(t, err)
	assert.Len(t, ref.Members, 1)

	_, err = s.GetApiReference("Beta")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetRelatedComponents_Scenario(t *testing.T) {
	s, _, _ := setupSearcher(t)

	widgets, err := s.GetComponentsByCategory("Widgets")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alpha", "Beta"}, names(widgets))

	related, err := s.GetRelatedComponents("Beta", RelationChild)
	require.NoError(t, err)
	assert.Empty(t, related)

	related, err = s.GetRelatedComponents("Alpha", RelationChild)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, names(related))

	related, err = s.GetRelatedComponents("Beta", RelationParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names(related))

	related, err = s.GetRelatedComponents("Alpha", RelationSibling)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, names(related))

	related, err = s.GetRelatedComponents("Gamma", RelationAll)
	require.NoError(t, err)
	assert.Empty(t, related)

	resp, err := s.SearchComponents(context.Background(), SearchRequest{Query: "alpha", Fields: FieldName, MaxResults: 10})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "Alpha", resp.Results[0].Component.Name)
	for _, r := range resp.Results[1:] {
		assert.Less(t, r.Score, resp.Results[0].Score)
	}
}

func TestGetRelatedComponents_OrderAndDedup(t *testing.T) {
	store := index.New()
	base := entity("MudBase", "Core", "")
	target := entity("MudTarget", "Widgets", "MudBase")
	target.RelatedComponents = []string{"MudChild", "MudMissing", "mudsibling", "MudTarget"}
	store.PutComponent(base)
	store.PutComponent(target)
	store.PutComponent(entity("MudSibling", "Widgets", ""))
	store.PutComponent(entity("MudOther", "widgets", ""))
	store.PutComponent(entity("MudChild", "Leaves", "MudTarget"))

	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{NamingPrefix: "Mud"})

	related, err := s.GetRelatedComponents("target", "")
	require.NoError(t, err)
	// explicit (child, sibling), sibling (other), parent (base); child deduped
	assert.Equal(t, []string{"MudChild", "MudSibling", "MudOther", "MudBase"}, names(related))

	// Explicit links are followed for every relationship type
	related, err = s.GetRelatedComponents("MudTarget", RelationParent)
	require.NoError(t, err)
	assert.Equal(t, []string{"MudChild", "MudSibling", "MudBase"}, names(related))
}

func TestGetRelatedComponents_Directional(t *testing.T) {
	store := index.New()
	a := entity("A", "One", "")
	a.RelatedComponents = []string{"B"}
	store.PutComponent(a)
	store.PutComponent(entity("B", "Two", ""))

	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{})

	related, err := s.GetRelatedComponents("A", RelationAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, names(related))

	related, err = s.GetRelatedComponents("B", RelationAll)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestGetRelatedComponents_Cap(t *testing.T) {
	store := index.New()
	store.PutComponent(entity("Hub", "Big", ""))
	for i := 0; i < 20; i++ {
		store.PutComponent(entity(fmt.Sprintf("Spoke%02d", i), "Big", ""))
	}
	state := &fakeState{}
	state.indexed.Store(true)
	s := New(store, state, nil, Options{})

	related, err := s.GetRelatedComponents("Hub", RelationSibling)
	require.NoError(t, err)
	assert.Len(t, related, MaxRelatedResults)
	assert.Equal(t, "Spoke00", related[0].Name)
}

func TestGetRelatedComponents_NotFound(t *testing.T) {
	s, _, _ := setupSearcher(t)
	_, err := s.GetRelatedComponents("Delta", RelationAll)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestConcurrentQueries(t *testing.T) {
	s, store, _ := setupSearcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := s.SearchComponents(context.Background(), SearchRequest{Query: "a", UseCache: true})
				assert.NoError(t, err)
				_, err = s.GetRelatedComponents("Alpha", RelationAll)
				assert.NoError(t, err)
				if i == 0 {
					store.PutComponent(entity(fmt.Sprintf("Extra%d", j), "Widgets", ""))
				}
			}
		}(i)
	}
	wg.Wait()
}
