package types

// ParseResult represents the output of parsing a component source file
type ParseResult struct {
	// Class declaration
	ClassName string
	Namespace string
	BaseType  string

	// Doc comments
	Summary string
	Remarks string

	// Members
	Parameters []ComponentParameter
	Events     []ComponentEvent
	Methods    []ComponentMethod

	// FilePath is the absolute path of the parsed file
	FilePath string
}

// DocResult represents the output of parsing a documentation page
type DocResult struct {
	// ComponentName is empty when the page does not document a component
	ComponentName     string
	Title             string
	Description       string
	Sections          []DocSection
	RelatedComponents []string
	FilePath          string
}

// DocSection is a titled block of a documentation page
type DocSection struct {
	Title   string
	Content string
}

// HasComponent returns true if the page names the component it documents
func (dr *DocResult) HasComponent() bool {
	return dr != nil && dr.ComponentName != ""
}
