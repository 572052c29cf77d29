package index

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// Store is the in-memory component index.
//
// It holds two independent tables keyed by lower-cased component name:
// components and API references. Both preserve insertion order and the
// casing of the first write. All reads return deep copies, and every write
// replaces a whole entity under the write lock, so readers never observe a
// partially updated entity.
type Store struct {
	mu         sync.RWMutex
	components table[*types.ComponentEntity]
	apiRefs    table[*types.ApiReferenceEntity]

	version atomic.Uint64
}

// table is an insertion-ordered, case-insensitive map
type table[T any] struct {
	positions map[string]int
	keys      []string
	values    []T
}

func (t *table[T]) get(name string) (T, bool) {
	var zero T
	pos, ok := t.positions[strings.ToLower(name)]
	if !ok {
		return zero, false
	}
	return t.values[pos], true
}

// put inserts or replaces; it returns the canonical key
func (t *table[T]) put(name string, value T) string {
	if t.positions == nil {
		t.positions = make(map[string]int)
	}
	lower := strings.ToLower(name)
	if pos, ok := t.positions[lower]; ok {
		t.values[pos] = value
		return t.keys[pos]
	}
	t.positions[lower] = len(t.values)
	t.keys = append(t.keys, name)
	t.values = append(t.values, value)
	return name
}

func (t *table[T]) reset() {
	t.positions = nil
	t.keys = nil
	t.values = nil
}

// New creates an empty Store
func New() *Store {
	return &Store{}
}

// PutComponent stores a copy of the entity, replacing any entry with the
// same name. The stored name keeps the casing of the first write.
func (s *Store) PutComponent(entity *types.ComponentEntity) {
	if entity == nil || entity.Name == "" {
		return
	}
	c := entity.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.components.get(c.Name); ok {
		c.Name = existing.Name
	}
	s.components.put(c.Name, c)
	s.version.Add(1)
}

// GetComponent returns a copy of the named component, ignoring case
func (s *Store) GetComponent(name string) (*types.ComponentEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.components.get(name)
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// AllComponents returns a snapshot of every component in insertion order
func (s *Store) AllComponents() []*types.ComponentEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ComponentEntity, len(s.components.values))
	for i, c := range s.components.values {
		out[i] = c.Clone()
	}
	return out
}

// ComponentNames returns the canonical names in insertion order
func (s *Store) ComponentNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.components.keys))
	copy(names, s.components.keys)
	return names
}

// UpdateComponent applies a copy-on-write update to an existing component.
// fn receives a private copy and returns the replacement. It returns false
// when no component has that name; enrichment never creates entities.
func (s *Store) UpdateComponent(name string, fn func(*types.ComponentEntity) *types.ComponentEntity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.components.get(name)
	if !ok {
		return false
	}

	updated := fn(current.Clone())
	if updated == nil {
		return true
	}
	updated = updated.Clone()
	updated.Name = current.Name
	s.components.put(current.Name, updated)
	s.version.Add(1)
	return true
}

// PutAPIReference stores a copy of the API reference
func (s *Store) PutAPIReference(ref *types.ApiReferenceEntity) {
	if ref == nil || ref.Name == "" {
		return
	}
	r := ref.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.apiRefs.get(r.Name); ok {
		r.Name = existing.Name
	}
	s.apiRefs.put(r.Name, r)
	s.version.Add(1)
}

// GetAPIReference returns a copy of the named API reference, ignoring case
func (s *Store) GetAPIReference(name string) (*types.ApiReferenceEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.apiRefs.get(name)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Len returns the number of components
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.components.values)
}

// Reset removes every entry from both tables
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.components.reset()
	s.apiRefs.reset()
	s.version.Add(1)
}

// Replace takes over the contents of src in one step, so readers see either
// the old entries or the new ones and never a mix. src is left empty.
func (s *Store) Replace(src *Store) {
	if src == nil || src == s {
		return
	}

	src.mu.Lock()
	components, apiRefs := src.components, src.apiRefs
	src.components.reset()
	src.apiRefs.reset()
	src.version.Add(1)
	src.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.components = components
	s.apiRefs = apiRefs
	s.version.Add(1)
}

// Version is a counter that changes on every write. Callers use it to
// detect that cached query results are stale.
func (s *Store) Version() uint64 {
	return s.version.Load()
}
