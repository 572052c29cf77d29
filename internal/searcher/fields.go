package searcher

import (
	"fmt"
	"strings"
)

// SearchFields selects which parts of a component a search inspects
type SearchFields uint8

const (
	FieldName        SearchFields = 1 << iota // component name
	FieldDescription                          // summary and description
	FieldParameters                           // parameter names and descriptions
	FieldExamples                             // example names

	FieldAll = FieldName | FieldDescription | FieldParameters | FieldExamples
)

var fieldNames = []struct {
	name  string
	field SearchFields
}{
	{"name", FieldName},
	{"description", FieldDescription},
	{"parameters", FieldParameters},
	{"examples", FieldExamples},
}

// Has reports whether every field in f2 is selected
func (f SearchFields) Has(f2 SearchFields) bool {
	return f&f2 == f2
}

// String renders the selection as a comma separated list
func (f SearchFields) String() string {
	if f == FieldAll {
		return "all"
	}
	var parts []string
	for _, n := range fieldNames {
		if f.Has(n.field) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseSearchFields converts field names to a selection. An empty list, or
// one containing "all", selects every field.
func ParseSearchFields(names []string) (SearchFields, error) {
	var fields SearchFields
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if name == "all" {
			return FieldAll, nil
		}
		matched := false
		for _, n := range fieldNames {
			// accept singular forms too: "parameter", "example"
			if name == n.name || name+"s" == n.name {
				fields |= n.field
				matched = true
				break
			}
		}
		if !matched {
			return 0, fmt.Errorf("unknown search field %q (valid: name, description, parameters, examples, all)", raw)
		}
	}
	if fields == 0 {
		return FieldAll, nil
	}
	return fields, nil
}

// RelationshipType selects which relations GetRelatedComponents follows
type RelationshipType string

const (
	RelationAll     RelationshipType = "all"
	RelationSibling RelationshipType = "sibling"
	RelationParent  RelationshipType = "parent"
	RelationChild   RelationshipType = "child"
)

// ParseRelationshipType parses a relationship name, ignoring case.
// The empty string means RelationAll.
func ParseRelationshipType(s string) (RelationshipType, error) {
	switch RelationshipType(strings.ToLower(strings.TrimSpace(s))) {
	case "", RelationAll:
		return RelationAll, nil
	case RelationSibling, "siblings":
		return RelationSibling, nil
	case RelationParent:
		return RelationParent, nil
	case RelationChild, "children":
		return RelationChild, nil
	}
	return "", fmt.Errorf("unknown relationship type %q (valid: all, sibling, parent, child)", s)
}

func (r RelationshipType) includes(other RelationshipType) bool {
	return r == RelationAll || r == other
}
