package types

// ComponentEntity is the indexed metadata for one UI component
type ComponentEntity struct {
	// Identification
	Name      string `json:"name"`
	Namespace string `json:"namespace"`

	// Descriptive
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	BaseType    string `json:"base_type,omitempty"`

	// Members
	Parameters []ComponentParameter `json:"parameters"`
	Events     []ComponentEvent     `json:"events"`
	Methods    []ComponentMethod    `json:"methods"`

	// Enrichment (phases 2 and 3)
	Examples          []ComponentExample `json:"examples"`
	RelatedComponents []string           `json:"related_components"`

	// Derived
	DocumentationURL string `json:"documentation_url"`
	SourceURL        string `json:"source_url"`
}

// ComponentParameter is a bindable component property
type ComponentParameter struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	IsRequired   bool   `json:"is_required"`
	IsCascading  bool   `json:"is_cascading"`
	Category     string `json:"category,omitempty"`
}

// ComponentEvent is an event callback exposed by a component
type ComponentEvent struct {
	Name          string `json:"name"`
	EventArgsType string `json:"event_args_type,omitempty"`
	Description   string `json:"description,omitempty"`
}

// ComponentMethod is a public method exposed by a component
type ComponentMethod struct {
	Name        string            `json:"name"`
	ReturnType  string            `json:"return_type"`
	Description string            `json:"description,omitempty"`
	Parameters  []MethodParameter `json:"parameters"`
	IsAsync     bool              `json:"is_async"`
}

// MethodParameter is a name/type pair in a method signature
type MethodParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MaxExampleFeatures caps the feature tags attached to an example
const MaxExampleFeatures = 5

// ComponentExample is a usage sample extracted from the demo sources
type ComponentExample struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Markup      string   `json:"markup,omitempty"`
	Code        string   `json:"code,omitempty"`
	SourceFile  string   `json:"source_file"`
	Features    []string `json:"features"`
}

// Clone returns a deep copy of the entity
func (c *ComponentEntity) Clone() *ComponentEntity {
	if c == nil {
		return nil
	}
	dst := *c
	dst.Parameters = cloneSlice(c.Parameters)
	dst.Events = cloneSlice(c.Events)
	dst.Methods = make([]ComponentMethod, len(c.Methods))
	for i, m := range c.Methods {
		m.Parameters = cloneSlice(m.Parameters)
		dst.Methods[i] = m
	}
	dst.Examples = make([]ComponentExample, len(c.Examples))
	for i, ex := range c.Examples {
		ex.Features = cloneSlice(ex.Features)
		dst.Examples[i] = ex
	}
	dst.RelatedComponents = cloneSlice(c.RelatedComponents)
	return &dst
}

// cloneSlice copies a slice of values, mapping nil to an empty slice so JSON
// output always carries arrays
func cloneSlice[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}
