package robopages

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadOption adjusts how Load builds a Book.
type LoadOption func(*loadConfig)

type loadConfig struct {
	filter string
	strict bool
}

// WithFilter keeps only pages whose name or category labels contain the
// given substring, case-insensitively.
func WithFilter(filter string) LoadOption {
	return func(c *loadConfig) {
		c.filter = filter
	}
}

// WithStrict makes the first malformed manifest fail the whole load
// instead of being skipped and reported.
func WithStrict() LoadOption {
	return func(c *loadConfig) {
		c.strict = true
	}
}

// FunctionEntry is one (page, function) pair from a Book's stable
// iteration order.
type FunctionEntry struct {
	PageKey  string
	Page     *Page
	Function *Function
}

type functionRef struct {
	pageKey string
	page    *Page
	fn      *Function
}

// Book is the aggregate, read-only registry of pages. It is built once by
// Load and never mutated afterwards, so it is safe for concurrent reads.
type Book struct {
	keys  []string
	pages map[string]*Page
	index map[string]functionRef
}

// Load reads every page manifest under root (a .yml/.yaml file or a
// directory tree of them) into a Book. Malformed manifests are skipped and
// reported through the returned LoadError slice unless WithStrict is set.
// A function name appearing on two pages fails the load with a
// DuplicateFunctionError.
func Load(root string, opts ...LoadOption) (*Book, []LoadError, error) {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	paths, base, err := findManifests(root)
	if err != nil {
		return nil, nil, err
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no pages found in %s", root)
	}

	book := &Book{
		pages: make(map[string]*Page),
		index: make(map[string]functionRef),
	}
	var warnings []LoadError

	for _, path := range paths {
		page, err := loadPage(path, base)
		if err != nil {
			if cfg.strict {
				return nil, nil, &LoadError{Path: path, Err: err}
			}
			warnings = append(warnings, LoadError{Path: path, Err: err})
			continue
		}
		if !matchesFilter(page, cfg.filter) {
			continue
		}

		key := pageKey(path, base)
		for i := range page.Functions {
			fn := &page.Functions[i]
			if prior, dup := book.index[fn.Name]; dup {
				return nil, nil, &DuplicateFunctionError{
					Name:      fn.Name,
					Path:      key,
					PriorPath: prior.pageKey,
				}
			}
			book.index[fn.Name] = functionRef{pageKey: key, page: page, fn: fn}
		}
		book.keys = append(book.keys, key)
		book.pages[key] = page
	}

	return book, warnings, nil
}

// findManifests resolves root into the manifest paths to load and the base
// directory page keys are derived from.
func findManifests(root string) ([]string, string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, "", err
	}
	if !info.IsDir() {
		return []string{root}, filepath.Dir(root), nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isManifest(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	sort.Strings(paths)
	return paths, root, nil
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// loadPage parses one manifest, expanding ${cwd} to the manifest's parent
// directory first and applying name/category fallbacks from the path.
func loadPage(path, base string) (*Page, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator-chosen root
	if err != nil {
		return nil, err
	}

	parent, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "${cwd}", parent)

	page, err := ParsePage([]byte(text))
	if err != nil {
		return nil, err
	}

	if page.Name == "" {
		page.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(page.Categories) == 0 {
		page.Categories = categoriesFromPath(path, base)
	}
	return page, nil
}

func categoriesFromPath(path, base string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) <= 1 {
		return nil
	}
	return parts[:len(parts)-1]
}

func pageKey(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchesFilter(page *Page, filter string) bool {
	if filter == "" {
		return true
	}
	needle := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(page.Name), needle) {
		return true
	}
	for _, category := range page.Categories {
		if strings.Contains(strings.ToLower(category), needle) {
			return true
		}
	}
	return false
}

// Find returns the function registered under name, and the page that owns
// it. Lookup is exact; there is no fuzzy matching.
func (b *Book) Find(name string) (*Function, *Page, bool) {
	ref, ok := b.index[name]
	if !ok {
		return nil, nil, false
	}
	return ref.fn, ref.page, true
}

// Page returns the page stored under the given key.
func (b *Book) Page(key string) (*Page, bool) {
	page, ok := b.pages[key]
	return page, ok
}

// Keys returns the page keys in insertion order.
func (b *Book) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// Pages returns the pages in insertion order.
func (b *Book) Pages() []*Page {
	pages := make([]*Page, 0, len(b.keys))
	for _, key := range b.keys {
		pages = append(pages, b.pages[key])
	}
	return pages
}

// Functions returns every (page, function) pair, ordered by page insertion
// order then function declaration order within the page.
func (b *Book) Functions() []FunctionEntry {
	var entries []FunctionEntry
	for _, key := range b.keys {
		page := b.pages[key]
		for i := range page.Functions {
			entries = append(entries, FunctionEntry{
				PageKey:  key,
				Page:     page,
				Function: &page.Functions[i],
			})
		}
	}
	return entries
}

// Len returns the number of registered functions.
func (b *Book) Len() int {
	return len(b.index)
}

// Filtered returns a read-only view containing only the pages matching the
// given substring filter. The receiver is not modified.
func (b *Book) Filtered(filter string) *Book {
	if filter == "" {
		return b
	}
	out := &Book{
		pages: make(map[string]*Page),
		index: make(map[string]functionRef),
	}
	for _, key := range b.keys {
		page := b.pages[key]
		if !matchesFilter(page, filter) {
			continue
		}
		out.keys = append(out.keys, key)
		out.pages[key] = page
		for i := range page.Functions {
			fn := &page.Functions[i]
			out.index[fn.Name] = functionRef{pageKey: key, page: page, fn: fn}
		}
	}
	return out
}
