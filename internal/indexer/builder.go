package indexer

import (
	"strings"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// EntityBuilder turns parse results into index entities. It performs no I/O
// and its output depends only on its inputs.
type EntityBuilder struct {
	// NamingPrefix is stripped from component names to form docs slugs
	NamingPrefix  string
	DocsBaseURL   string
	SourceBaseURL string
}

// BuildEntities creates the component entity and its API reference from a
// parse result. relPath is the repository-relative source path.
func (b EntityBuilder) BuildEntities(result *types.ParseResult, category, relPath string) (*types.ComponentEntity, *types.ApiReferenceEntity) {
	params := cloneOrEmpty(result.Parameters)
	events := cloneOrEmpty(result.Events)
	methods := make([]types.ComponentMethod, len(result.Methods))
	for i, m := range result.Methods {
		m.Parameters = cloneOrEmpty(m.Parameters)
		methods[i] = m
	}

	component := &types.ComponentEntity{
		Name:              result.ClassName,
		Namespace:         result.Namespace,
		Summary:           result.Summary,
		Description:       result.Remarks,
		Category:          category,
		BaseType:          result.BaseType,
		Parameters:        params,
		Events:            events,
		Methods:           methods,
		Examples:          []types.ComponentExample{},
		RelatedComponents: []string{},
		DocumentationURL:  b.DocumentationURL(result.ClassName),
		SourceURL:         b.SourceURL(relPath),
	}

	members := make([]types.ApiMember, 0, len(params)+len(events)+len(methods))
	for _, p := range params {
		members = append(members, types.ApiMember{
			Name:        p.Name,
			MemberType:  types.MemberProperty,
			ReturnType:  p.Type,
			Description: p.Description,
		})
	}
	for _, e := range events {
		members = append(members, types.ApiMember{
			Name:        e.Name,
			MemberType:  types.MemberEvent,
			ReturnType:  eventCallbackType(e.EventArgsType),
			Description: e.Description,
		})
	}
	for _, m := range methods {
		members = append(members, types.ApiMember{
			Name:               m.Name,
			MemberType:         types.MemberMethod,
			ReturnType:         m.ReturnType,
			Description:        m.Description,
			ParameterSignature: parameterSignature(m.Parameters),
		})
	}

	apiRef := &types.ApiReferenceEntity{
		Name:      result.ClassName,
		Namespace: result.Namespace,
		Summary:   result.Summary,
		BaseType:  result.BaseType,
		Members:   members,
	}
	return component, apiRef
}

// DocumentationURL returns <DocsBaseURL>/components/<slug>, where slug is
// the name without the naming prefix, lower-cased
func (b EntityBuilder) DocumentationURL(name string) string {
	slug := name
	if b.NamingPrefix != "" && len(slug) > len(b.NamingPrefix) && strings.EqualFold(slug[:len(b.NamingPrefix)], b.NamingPrefix) {
		slug = slug[len(b.NamingPrefix):]
	}
	return strings.TrimRight(b.DocsBaseURL, "/") + "/components/" + strings.ToLower(slug)
}

// SourceURL returns <SourceBaseURL>/<relPath>
func (b EntityBuilder) SourceURL(relPath string) string {
	return strings.TrimRight(b.SourceBaseURL, "/") + "/" + strings.TrimLeft(relPath, "/")
}

func eventCallbackType(argsType string) string {
	if argsType == "" {
		return "EventCallback"
	}
	return "EventCallback<" + argsType + ">"
}

// parameterSignature renders "type name, type name"; empty for no parameters
func parameterSignature(params []types.MethodParameter) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strings.TrimSpace(p.Type + " " + p.Name)
	}
	return strings.Join(parts, ", ")
}

func cloneOrEmpty[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
