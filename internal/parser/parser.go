package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// Parser extracts component metadata from C# source files
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseComponentFile parses a component source file. It returns nil, nil when
// the file declares no public, non-static class.
func (p *Parser) ParseComponentFile(ctx context.Context, filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(ctx, filePath, content)
}

// ParseSource parses already loaded C# source
func (p *Parser) ParseSource(ctx context.Context, filePath string, content []byte) (*types.ParseResult, error) {
	// tree-sitter parsers are not safe for concurrent use
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(csharp.GetLanguage())

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	e := &extractor{content: content}
	class, namespace := e.findComponentClass(tree.RootNode(), "")
	if class == nil {
		return nil, nil
	}

	result := e.extractClass(class)
	result.Namespace = namespace
	result.FilePath = filePath
	return result, nil
}

// extractor walks a tree-sitter C# AST
type extractor struct {
	content []byte
}

// findComponentClass returns the first public, non-static class declaration
// and its enclosing namespace
func (e *extractor) findComponentClass(node *sitter.Node, namespace string) (*sitter.Node, string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_declaration":
			name := e.declName(child)
			body := child.ChildByFieldName("body")
			if body == nil {
				body = firstChildOfType(child, "declaration_list")
			}
			if body != nil {
				if class, ns := e.findComponentClass(body, name); class != nil {
					return class, ns
				}
			}
		case "file_scoped_namespace_declaration":
			namespace = e.declName(child)
			// Older grammars nest the declarations, newer ones make them siblings
			if class, ns := e.findComponentClass(child, namespace); class != nil {
				return class, ns
			}
		case "class_declaration":
			mods := e.modifiers(child)
			if mods["public"] && !mods["static"] {
				return child, namespace
			}
		}
	}
	return nil, ""
}

func (e *extractor) extractClass(node *sitter.Node) *types.ParseResult {
	result := &types.ParseResult{
		ClassName:  e.declName(node),
		Parameters: []types.ComponentParameter{},
		Events:     []types.ComponentEvent{},
		Methods:    []types.ComponentMethod{},
	}

	doc := parseXMLDoc(e.docComment(node))
	result.Summary = doc.summary
	result.Remarks = doc.remarks

	if bases := firstChildOfType(node, "base_list"); bases != nil {
		result.BaseType = baseClass(e.baseList(bases))
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		body = firstChildOfType(node, "declaration_list")
	}
	if body == nil {
		return result
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "property_declaration":
			e.extractProperty(child, result)
		case "method_declaration":
			if m, ok := e.extractMethod(child); ok {
				result.Methods = append(result.Methods, m)
			}
		}
	}
	return result
}

// extractProperty records [Parameter] and [CascadingParameter] properties as
// parameters, or as events when typed EventCallback
func (e *extractor) extractProperty(node *sitter.Node, result *types.ParseResult) {
	attrs := e.attributes(node)
	_, isParam := attrs["Parameter"]
	_, isCascading := attrs["CascadingParameter"]
	if !isParam && !isCascading {
		return
	}
	if !e.modifiers(node)["public"] {
		return
	}

	name := e.fieldText(node, "name")
	typ := e.fieldText(node, "type")
	if name == "" || typ == "" {
		name, typ = e.fallbackNameAndType(node)
	}
	if name == "" {
		return
	}

	doc := parseXMLDoc(e.docComment(node))

	if argsType, ok := eventArgsType(typ); ok {
		result.Events = append(result.Events, types.ComponentEvent{
			Name:          name,
			EventArgsType: argsType,
			Description:   doc.summary,
		})
		return
	}

	param := types.ComponentParameter{
		Name:        name,
		Type:        typ,
		Description: doc.summary,
		IsCascading: isCascading,
	}
	_, param.IsRequired = attrs["EditorRequired"]
	if category, ok := attrs["Category"]; ok {
		param.Category = lastSegment(category)
	}
	if value := node.ChildByFieldName("value"); value != nil && value.Type() != "arrow_expression_clause" {
		param.DefaultValue = strings.TrimSpace(e.text(value))
	}
	result.Parameters = append(result.Parameters, param)
}

// extractMethod returns public, non-static, non-override methods
func (e *extractor) extractMethod(node *sitter.Node) (types.ComponentMethod, bool) {
	mods := e.modifiers(node)
	if !mods["public"] || mods["static"] || mods["override"] {
		return types.ComponentMethod{}, false
	}

	name := e.fieldText(node, "name")
	returnType := e.fieldText(node, "returns")
	if returnType == "" {
		returnType = e.fieldText(node, "type")
	}
	if name == "" || returnType == "" {
		fbName, fbType := e.fallbackNameAndType(node)
		if name == "" {
			name = fbName
		}
		if returnType == "" {
			returnType = fbType
		}
	}
	if name == "" {
		return types.ComponentMethod{}, false
	}
	if returnType == "" {
		returnType = "void"
	}

	method := types.ComponentMethod{
		Name:        name,
		ReturnType:  returnType,
		Description: parseXMLDoc(e.docComment(node)).summary,
		Parameters:  []types.MethodParameter{},
		IsAsync:     mods["async"] || isTaskType(returnType),
	}

	params := node.ChildByFieldName("parameters")
	if params == nil {
		params = firstChildOfType(node, "parameter_list")
	}
	if params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() != "parameter" {
				continue
			}
			pName := e.fieldText(p, "name")
			pType := e.fieldText(p, "type")
			if pName == "" {
				pName, pType = e.fallbackNameAndType(p)
			}
			method.Parameters = append(method.Parameters, types.MethodParameter{Name: pName, Type: pType})
		}
	}
	return method, true
}

// modifiers returns the set of modifier keywords on a declaration
func (e *extractor) modifiers(node *sitter.Node) map[string]bool {
	mods := make(map[string]bool)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "modifier" {
			mods[strings.TrimSpace(e.text(child))] = true
		}
	}
	return mods
}

// attributes maps attribute names (without the Attribute suffix) to their
// raw argument text
func (e *extractor) attributes(node *sitter.Node) map[string]string {
	attrs := make(map[string]string)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		list := node.NamedChild(i)
		if list.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(list.NamedChildCount()); j++ {
			attr := list.NamedChild(j)
			if attr.Type() != "attribute" {
				continue
			}
			name, args := splitAttribute(e.text(attr))
			attrs[name] = args
		}
	}
	return attrs
}

func (e *extractor) baseList(node *sitter.Node) []string {
	var bases []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		text := strings.TrimSpace(e.text(node.NamedChild(i)))
		if text != "" && text != ":" {
			bases = append(bases, text)
		}
	}
	return bases
}

// docComment collects the /// lines immediately preceding a declaration
func (e *extractor) docComment(node *sitter.Node) string {
	var lines []string
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Type() != "comment" {
			break
		}
		text := e.text(prev)
		if !strings.HasPrefix(text, "///") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "///"))}, lines...)
	}
	return strings.Join(lines, "\n")
}

// declName returns the name of a class or namespace declaration
func (e *extractor) declName(node *sitter.Node) string {
	if name := e.fieldText(node, "name"); name != "" {
		return name
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier", "qualified_name":
			return e.text(child)
		}
	}
	return ""
}

// fallbackNameAndType handles grammars without field names: the last
// identifier is the name and the type-like node before it is the type
func (e *extractor) fallbackNameAndType(node *sitter.Node) (string, string) {
	var name, typ string
	var idents []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			idents = append(idents, e.text(child))
		case "predefined_type", "generic_name", "nullable_type", "array_type", "qualified_name":
			if typ == "" {
				typ = e.text(child)
			}
		case "accessor_list", "parameter_list", "block", "arrow_expression_clause":
			i = int(node.NamedChildCount())
		}
	}
	if len(idents) > 0 {
		name = idents[len(idents)-1]
		if typ == "" && len(idents) > 1 {
			typ = idents[0]
		}
	}
	return name, typ
}

func (e *extractor) fieldText(node *sitter.Node, field string) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(e.text(child))
}

func (e *extractor) text(node *sitter.Node) string {
	return node.Content(e.content)
}

func firstChildOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

// splitAttribute splits "Category(CategoryTypes.Button.Behavior)" into its
// name and argument text
func splitAttribute(attr string) (string, string) {
	attr = strings.TrimSpace(attr)
	name, args := attr, ""
	if idx := strings.Index(attr, "("); idx > 0 {
		name = attr[:idx]
		args = strings.TrimSuffix(strings.TrimSpace(attr[idx+1:]), ")")
	}
	name = lastSegment(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, "Attribute")
	return name, strings.TrimSpace(args)
}

// baseClass picks the first base that does not look like an interface and
// strips generic arguments
func baseClass(bases []string) string {
	for _, b := range bases {
		if isInterfaceName(lastSegment(b)) {
			continue
		}
		if idx := strings.Index(b, "<"); idx > 0 {
			b = b[:idx]
		}
		return b
	}
	return ""
}

// isInterfaceName follows the IDisposable naming convention
func isInterfaceName(name string) bool {
	return len(name) > 1 && name[0] == 'I' && name[1] >= 'A' && name[1] <= 'Z'
}

// eventArgsType reports whether typ is an EventCallback and returns its
// argument type, if any
func eventArgsType(typ string) (string, bool) {
	typ = strings.TrimSuffix(strings.TrimSpace(typ), "?")
	if typ == "EventCallback" {
		return "", true
	}
	if strings.HasPrefix(typ, "EventCallback<") && strings.HasSuffix(typ, ">") {
		return strings.TrimSpace(typ[len("EventCallback<") : len(typ)-1]), true
	}
	return "", false
}

func isTaskType(typ string) bool {
	for _, prefix := range []string{"Task", "ValueTask"} {
		if typ == prefix || strings.HasPrefix(typ, prefix+"<") {
			return true
		}
	}
	return false
}

func lastSegment(s string) string {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
