package docs

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

// PageSuffix is the file-name suffix of component documentation pages
const PageSuffix = "Page.razor"

var (
	typeofPattern        = regexp.MustCompile(`typeof\(\s*([A-Za-z_][\w.]*)(?:<[^>]*>)?\s*\)`)
	headerPattern        = regexp.MustCompile(`(?s)<DocsPageHeader\b([^>]*)>(.*?)</DocsPageHeader>|<DocsPageHeader\b([^>]*)/>`)
	sectionPattern       = regexp.MustCompile(`(?s)<SectionHeader\b([^>]*?)(?:/>|>(.*?)</SectionHeader>)`)
	textPattern          = regexp.MustCompile(`(?s)<(?:Text|Description)\b[^>]*>(.*?)</(?:Text|Description)>`)
	componentLinkPattern = regexp.MustCompile(`<ComponentLink\b[^>]*?\bComponent="@?(?:typeof\()?([A-Za-z_][\w.]*)\)?"`)
	hrefPattern          = regexp.MustCompile(`href="/components/([A-Za-z0-9\-]+)(?:#[^"]*)?"`)
	tagPattern           = regexp.MustCompile(`<[^>]+>`)
	razorExprPattern     = regexp.MustCompile(`@\([^)]*\)|@[A-Za-z_][\w.]*`)
	spacePattern         = regexp.MustCompile(`\s+`)
	titleAttrPattern     = regexp.MustCompile(`\bTitle="([^"]*)"`)
	subTitleAttrPattern  = regexp.MustCompile(`\bSubTitle="([^"]*)"`)
)

// Parser extracts documentation metadata from Razor docs pages
type Parser struct {
	prefix string
}

// New creates a parser; prefix is the component naming prefix used to map
// page file names and /components/ links to component names
func New(prefix string) *Parser {
	return &Parser{prefix: prefix}
}

// ParseDocumentationFile parses a docs page. A missing file yields nil, nil.
func (p *Parser) ParseDocumentationFile(ctx context.Context, path string) (*types.DocResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read documentation file: %w", err)
	}
	return p.Parse(path, string(content)), nil
}

// Parse extracts documentation metadata from page content
func (p *Parser) Parse(path, content string) *types.DocResult {
	result := &types.DocResult{
		FilePath:          path,
		Sections:          []types.DocSection{},
		RelatedComponents: []string{},
	}

	result.ComponentName = p.componentName(path, content)

	if m := headerPattern.FindStringSubmatch(content); m != nil {
		attrs, body := m[1], m[2]
		if attrs == "" {
			attrs = m[3]
		}
		result.Title = attribute(attrs, titleAttrPattern)
		result.Description = attribute(attrs, subTitleAttrPattern)
		if result.Description == "" {
			if d := textPattern.FindStringSubmatch(body); d != nil {
				result.Description = cleanText(d[1])
			}
		}
	}

	matches := sectionPattern.FindAllStringSubmatchIndex(content, -1)
	for i, m := range matches {
		title := attribute(content[m[2]:m[3]], titleAttrPattern)
		if title == "" {
			continue
		}
		section := types.DocSection{Title: title}

		// Text inside the header, else the first text block before the next header
		scope := ""
		if m[4] >= 0 {
			scope = content[m[4]:m[5]]
		}
		if !textPattern.MatchString(scope) {
			end := len(content)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			scope = content[m[1]:end]
		}
		if t := textPattern.FindStringSubmatch(scope); t != nil {
			section.Content = cleanText(t[1])
		}
		result.Sections = append(result.Sections, section)
	}

	result.RelatedComponents = p.relatedComponents(content, result.ComponentName)
	return result
}

// componentName prefers an explicit typeof() reference, falling back to the
// page file name (ButtonPage.razor documents <prefix>Button)
func (p *Parser) componentName(path, content string) string {
	for _, m := range typeofPattern.FindAllStringSubmatch(content, -1) {
		name := lastSegment(m[1])
		if p.prefix == "" || strings.HasPrefix(name, p.prefix) {
			return name
		}
	}

	base := filepath.Base(path)
	if !strings.HasSuffix(base, PageSuffix) {
		return ""
	}
	stem := strings.TrimSuffix(base, PageSuffix)
	if stem == "" {
		return ""
	}
	if strings.HasPrefix(stem, p.prefix) {
		return stem
	}
	return p.prefix + stem
}

// relatedComponents collects ComponentLink targets, /components/ links and
// further typeof() references, deduplicated and excluding self
func (p *Parser) relatedComponents(content, self string) []string {
	related := []string{}
	seen := map[string]bool{strings.ToLower(self): true}
	add := func(name string) {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		related = append(related, name)
	}

	for _, m := range componentLinkPattern.FindAllStringSubmatch(content, -1) {
		add(lastSegment(m[1]))
	}
	for _, m := range hrefPattern.FindAllStringSubmatch(content, -1) {
		add(p.nameFromSlug(m[1]))
	}
	for _, m := range typeofPattern.FindAllStringSubmatch(content, -1) {
		name := lastSegment(m[1])
		if p.prefix == "" || strings.HasPrefix(name, p.prefix) {
			add(name)
		}
	}
	return related
}

// nameFromSlug maps "icon-button" to <prefix>IconButton. Slugs without
// separators keep their letters, so "iconbutton" maps to <prefix>Iconbutton;
// lookups are case-insensitive so either resolves.
func (p *Parser) nameFromSlug(slug string) string {
	var b strings.Builder
	b.WriteString(p.prefix)
	for _, part := range strings.Split(slug, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == len(p.prefix) {
		return ""
	}
	return b.String()
}

// attribute returns the cleaned value captured by pattern within a tag's
// attribute text
func attribute(attrs string, pattern *regexp.Regexp) string {
	if m := pattern.FindStringSubmatch(attrs); m != nil {
		return cleanText(m[1])
	}
	return ""
}

// cleanText strips markup and Razor expressions and collapses whitespace
func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = razorExprPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	// Punctuation left dangling by removed tags
	return strings.NewReplacer(" .", ".", " ,", ",").Replace(s)
}

func lastSegment(s string) string {
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
