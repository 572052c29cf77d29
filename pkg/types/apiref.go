package types

// MemberType classifies an API reference member
type MemberType string

const (
	MemberProperty MemberType = "Property"
	MemberEvent    MemberType = "Event"
	MemberMethod   MemberType = "Method"
)

// ApiReferenceEntity is the flat member listing of a component
type ApiReferenceEntity struct {
	Name      string      `json:"name"`
	Namespace string      `json:"namespace"`
	Summary   string      `json:"summary"`
	BaseType  string      `json:"base_type,omitempty"`
	Members   []ApiMember `json:"members"`
}

// ApiMember is one property, event or method of a component
type ApiMember struct {
	Name               string     `json:"name"`
	MemberType         MemberType `json:"member_type"`
	ReturnType         string     `json:"return_type"`
	Description        string     `json:"description,omitempty"`
	ParameterSignature string     `json:"parameter_signature,omitempty"`
}

// Clone returns a deep copy of the reference
func (a *ApiReferenceEntity) Clone() *ApiReferenceEntity {
	if a == nil {
		return nil
	}
	dst := *a
	dst.Members = cloneSlice(a.Members)
	return &dst
}

// CategoryEntity is a named group of components
type CategoryEntity struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ComponentNames []string `json:"component_names"`
}

// Clone returns a deep copy of the category
func (c CategoryEntity) Clone() CategoryEntity {
	c.ComponentNames = cloneSlice(c.ComponentNames)
	return c
}
