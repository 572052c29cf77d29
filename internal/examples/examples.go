package examples

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// FileSuffix is the file-name suffix of example sources
const FileSuffix = "Example.razor"

var (
	razorCommentPattern = regexp.MustCompile(`(?s)@\*(.*?)\*@`)
	directivePattern    = regexp.MustCompile(`(?m)^\s*@(?:namespace|using|inject|page|inherits|implements|attribute|layout|typeparam)\b.*$`)
	codeStartPattern    = regexp.MustCompile(`@code\s*\{`)
	blankLinesPattern   = regexp.MustCompile(`\n{3,}`)
)

// feature is a tag detected from example markup
type feature struct {
	name    string
	pattern *regexp.Regexp
}

// features are checked in order; the first MaxExampleFeatures matches win
var features = []feature{
	{"Variants", regexp.MustCompile(`\bVariant="`)},
	{"Colors", regexp.MustCompile(`\bColor="`)},
	{"Sizes", regexp.MustCompile(`\bSize="`)},
	{"Icons", regexp.MustCompile(`\b(?:Start|End|Adornment)?Icon="|Icons\.`)},
	{"Two-way binding", regexp.MustCompile(`@bind-`)},
	{"Disabled state", regexp.MustCompile(`\bDisabled(?:="|\s|/?>)`)},
	{"Click events", regexp.MustCompile(`\bOnClick="|@onclick`)},
	{"Dense", regexp.MustCompile(`\bDense(?:="|\s|/?>)`)},
	{"Loading state", regexp.MustCompile(`\bLoading\b|ProgressCircular|ProgressLinear`)},
	{"Validation", regexp.MustCompile(`\bValidation="|\bRequired="|<MudForm\b|<EditForm\b`)},
}

// Extractor reads usage samples from the documentation examples folders
type Extractor struct {
	docsRoot string
	prefix   string
}

// New creates an extractor; docsRoot is relative to the repository root
func New(docsRoot, prefix string) *Extractor {
	return &Extractor{docsRoot: docsRoot, prefix: prefix}
}

// ExtractExamples returns the examples for componentName found under
// <rootPath>/<docsRoot>/<name without prefix>/Examples. A missing folder
// yields an empty list.
func (x *Extractor) ExtractExamples(ctx context.Context, rootPath, componentName string) ([]types.ComponentExample, error) {
	short := x.stripPrefix(componentName)
	if short == "" {
		return []types.ComponentExample{}, nil
	}

	dir := filepath.Join(rootPath, x.docsRoot, short, "Examples")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.ComponentExample{}, nil
		}
		return nil, fmt.Errorf("failed to read examples directory: %w", err)
	}

	examples := []types.ComponentExample{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileSuffix) {
			continue
		}
		// Only files named after this component, e.g. ButtonFilledExample.razor
		if !strings.HasPrefix(strings.ToLower(entry.Name()), strings.ToLower(short)) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read example %s: %w", entry.Name(), err)
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			rel = path
		}

		example := Parse(string(content))
		example.Name = exampleName(entry.Name(), short)
		example.SourceFile = filepath.ToSlash(rel)
		examples = append(examples, example)
	}
	return examples, nil
}

func (x *Extractor) stripPrefix(name string) string {
	if x.prefix != "" && len(name) > len(x.prefix) && strings.EqualFold(name[:len(x.prefix)], x.prefix) {
		return name[len(x.prefix):]
	}
	return name
}

// Parse splits example source into description, markup and code and
// detects its features. Name and SourceFile are left to the caller.
func Parse(content string) types.ComponentExample {
	example := types.ComponentExample{Features: []string{}}

	if m := razorCommentPattern.FindStringSubmatchIndex(content); m != nil && isLeading(content[:m[0]]) {
		example.Description = strings.Join(strings.Fields(content[m[2]:m[3]]), " ")
		content = content[:m[0]] + content[m[1]:]
	}

	markup, code := splitCode(content)
	markup = directivePattern.ReplaceAllString(markup, "")
	markup = blankLinesPattern.ReplaceAllString(strings.TrimSpace(markup), "\n\n")

	example.Markup = markup
	example.Code = dedent(code)
	example.Features = detectFeatures(markup)
	return example
}

// isLeading reports whether only directives and whitespace precede a comment
func isLeading(prefix string) bool {
	return strings.TrimSpace(directivePattern.ReplaceAllString(prefix, "")) == ""
}

// splitCode separates the @code { ... } block from the markup using brace
// matching that skips string and character literals and comments
func splitCode(content string) (markup, code string) {
	loc := codeStartPattern.FindStringIndex(content)
	if loc == nil {
		return content, ""
	}

	open := loc[1] - 1
	end := matchBrace(content, open)
	if end < 0 {
		// Unbalanced block: treat the remainder as code
		return content[:loc[0]], strings.TrimSpace(content[open+1:])
	}
	return content[:loc[0]] + content[end+1:], content[open+1 : end]
}

// matchBrace returns the index of the brace closing the one at open, or -1
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'':
			i = skipLiteral(s, i)
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
					i += nl
				} else {
					return -1
				}
			} else if i+1 < len(s) && s[i+1] == '*' {
				if endIdx := strings.Index(s[i+2:], "*/"); endIdx >= 0 {
					i += endIdx + 3
				} else {
					return -1
				}
			}
		}
	}
	return -1
}

// skipLiteral returns the index of the quote closing the literal at start
func skipLiteral(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			// Unterminated literal; resume scanning on the next line
			return i
		}
	}
	return len(s)
}

// dedent trims surrounding blank lines and the common leading indentation
func dedent(code string) string {
	lines := strings.Split(strings.Trim(code, "\r\n"), "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.TrimSpace(code)
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n")
}

func detectFeatures(markup string) []string {
	found := []string{}
	for _, f := range features {
		if len(found) == types.MaxExampleFeatures {
			break
		}
		if f.pattern.MatchString(markup) {
			found = append(found, f.name)
		}
	}
	return found
}

// exampleName maps ButtonFilledExample.razor to "Filled"
func exampleName(fileName, short string) string {
	stem := strings.TrimSuffix(fileName, ".razor")
	stem = strings.TrimSuffix(stem, "Example")
	if len(stem) >= len(short) && strings.EqualFold(stem[:len(short)], short) {
		stem = stem[len(short):]
	}
	stem = strings.Trim(stem, "_-")
	if stem == "" {
		return "Default"
	}
	return stem
}
