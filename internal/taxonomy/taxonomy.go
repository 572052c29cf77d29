package taxonomy

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// DefaultPrefix is the naming prefix shared by every library component
const DefaultPrefix = "Mud"

// Fallback is the catch-all category returned when inference finds no rule
const Fallback = "Extras"

// Definition describes one category before initialization
type Definition struct {
	Name        string
	Title       string
	Description string
	Components  []string
}

// rule maps name fragments to a category; rules are evaluated in order
type rule struct {
	category  string
	fragments []string
}

// inferenceRules is the ordered substring table used by InferCategoryFromName.
// Earlier rules win, so "buttongroup" resolves to Buttons before Layouts sees "group".
var inferenceRules = []rule{
	{"Buttons", []string{"button", "fab", "toggle"}},
	{"Inputs", []string{"textfield", "input", "select", "dropdown", "picker", "checkbox", "radio",
		"switch", "slider", "autocomplete", "field", "form", "upload", "rating", "numeric", "mask"}},
	{"Navs", []string{"nav", "menu", "breadcrumb", "tabs", "tabpanel", "link", "pagination", "stepper", "drawer", "appbar"}},
	{"Notifications", []string{"alert", "snackbar", "message", "badge", "dialog", "tooltip", "popover", "overlay"}},
	{"Progress", []string{"progress", "skeleton", "loading", "spinner"}},
	{"Lists", []string{"list", "table", "datagrid", "tree", "timeline", "carousel", "chip", "virtualize"}},
	{"Surfaces", []string{"card", "paper", "panel", "expansion", "toolbar"}},
	{"Layouts", []string{"container", "layout", "stack", "grid", "spacer", "divider", "item", "main", "hidden", "group"}},
	{"Utilities", []string{"provider", "theme", "focus", "scroll", "resize", "swipe", "dropzone", "render", "element", "icon", "image", "avatar"}},
}

// Taxonomy maps component names to categories
type Taxonomy struct {
	prefix      string
	definitions []Definition

	once  sync.Once
	state atomic.Pointer[snapshot]
}

// snapshot is the initialized, read-only taxonomy
type snapshot struct {
	categories []types.CategoryEntity
	byName     map[string]string // lower component name -> category name
}

// New creates a Taxonomy with the default component library categories
func New() *Taxonomy {
	return NewWithDefinitions(DefaultPrefix, DefaultDefinitions())
}

// NewWithDefinitions creates a Taxonomy over custom categories
func NewWithDefinitions(prefix string, defs []Definition) *Taxonomy {
	return &Taxonomy{
		prefix:      prefix,
		definitions: defs,
	}
}

// Initialize populates the category list and the explicit name map.
// Only the first call has any effect.
func (t *Taxonomy) Initialize() {
	t.once.Do(func() {
		categories := make([]types.CategoryEntity, 0, len(t.definitions))
		byName := make(map[string]string)
		for _, def := range t.definitions {
			names := make([]string, len(def.Components))
			copy(names, def.Components)
			categories = append(categories, types.CategoryEntity{
				Name:           def.Name,
				Title:          def.Title,
				Description:    def.Description,
				ComponentNames: names,
			})
			for _, component := range def.Components {
				key := strings.ToLower(component)
				if _, exists := byName[key]; !exists {
					byName[key] = def.Name
				}
			}
		}
		t.state.Store(&snapshot{categories: categories, byName: byName})
	})
}

// GetCategoryName returns the explicitly mapped category for a component
func (t *Taxonomy) GetCategoryName(componentName string) (string, bool) {
	s := t.state.Load()
	if s == nil {
		return "", false
	}
	name, ok := s.byName[strings.ToLower(componentName)]
	return name, ok
}

// InferCategoryFromName guesses a category from naming patterns.
// It always returns a category; unmatched names fall back to Fallback.
func (t *Taxonomy) InferCategoryFromName(componentName string) string {
	name := componentName
	if t.prefix != "" && len(name) > len(t.prefix) && strings.EqualFold(name[:len(t.prefix)], t.prefix) {
		name = name[len(t.prefix):]
	}
	name = strings.ToLower(name)

	for _, r := range inferenceRules {
		for _, fragment := range r.fragments {
			if strings.Contains(name, fragment) {
				return r.category
			}
		}
	}
	return Fallback
}

// GetComponentsInCategory returns the member list of the category whose
// name or title matches, ignoring case
func (t *Taxonomy) GetComponentsInCategory(nameOrTitle string) []string {
	s := t.state.Load()
	if s == nil {
		return []string{}
	}
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, nameOrTitle) || strings.EqualFold(c.Title, nameOrTitle) {
			names := make([]string, len(c.ComponentNames))
			copy(names, c.ComponentNames)
			return names
		}
	}
	return []string{}
}

// GetCategories returns all categories in definition order
func (t *Taxonomy) GetCategories() []types.CategoryEntity {
	s := t.state.Load()
	if s == nil {
		return []types.CategoryEntity{}
	}
	out := make([]types.CategoryEntity, len(s.categories))
	for i, c := range s.categories {
		out[i] = c.Clone()
	}
	return out
}
