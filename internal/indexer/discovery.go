package indexer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dshills/mudcontext-mcp/internal/docs"
)

// componentDir is a discovered component directory and its main source file
type componentDir struct {
	Dir      string
	MainFile string
}

// discoverer finds component directories and docs pages in a checkout
type discoverer struct {
	root   string
	prefix string
	ignore *ignore.GitIgnore
}

func newDiscoverer(root, prefix string) *discoverer {
	return &discoverer{
		root:   root,
		prefix: prefix,
		ignore: loadGitignore(root),
	}
}

// componentDirs scans each component root. A directory qualifies when it
// holds a main file; otherwise its subdirectories are checked one level down,
// covering both Category/Component/ and Component/ layouts.
func (d *discoverer) componentDirs(roots []string) ([]componentDir, []error) {
	var (
		dirs []componentDir
		errs []error
		seen = make(map[string]bool)
	)

	add := func(dir, main string) {
		key := strings.ToLower(filepath.Clean(dir))
		if seen[key] {
			return
		}
		seen[key] = true
		dirs = append(dirs, componentDir{Dir: dir, MainFile: main})
	}

	for _, root := range roots {
		base := filepath.Join(d.root, filepath.FromSlash(root))
		children, err := d.subdirs(base)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		for _, child := range children {
			if main := d.mainFile(child); main != "" {
				add(child, main)
				continue
			}
			nested, err := d.subdirs(child)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			for _, n := range nested {
				if main := d.mainFile(n); main != "" {
					add(n, main)
				}
			}
		}
	}
	return dirs, errs
}

// subdirs lists the visible, non-ignored directories directly under dir
func (d *discoverer) subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if d.ignored(path, true) {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs, nil
}

// mainFile returns <prefix><Dir>.razor.cs if present, else <prefix><Dir>.cs.
// File names are matched case-insensitively.
func (d *discoverer) mainFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files[strings.ToLower(entry.Name())] = entry.Name()
		}
	}

	name := filepath.Base(dir)
	stems := []string{d.prefix + name}
	if d.prefix != "" && strings.HasPrefix(strings.ToLower(name), strings.ToLower(d.prefix)) {
		stems = append(stems, name)
	}
	for _, ext := range []string{".razor.cs", ".cs"} {
		for _, stem := range stems {
			if actual, ok := files[strings.ToLower(stem+ext)]; ok {
				return filepath.Join(dir, actual)
			}
		}
	}
	return ""
}

// docsPages returns every *Page.razor file under docsRoot in path order.
// A missing docs root yields no pages.
func (d *discoverer) docsPages(docsRoot string) ([]string, error) {
	base := filepath.Join(d.root, filepath.FromSlash(docsRoot))
	var pages []string
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == base && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path != base && (strings.HasPrefix(entry.Name(), ".") || d.ignored(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(entry.Name(), docs.PageSuffix) && !d.ignored(path, false) {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	return pages, nil
}

// ignored checks a path against the checkout's .gitignore
func (d *discoverer) ignored(path string, isDir bool) bool {
	if d.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(d.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		// Directory patterns such as "obj/" only match with a trailing slash
		rel += "/"
	}
	return d.ignore.MatchesPath(rel)
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
