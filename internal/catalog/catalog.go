// Package catalog holds the immutable presentation pattern catalog: patterns,
// the adjacency compatibility table, per-type fallbacks, classifier keywords
// and the default design tokens.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mdslides/internal/logging"
	"mdslides/internal/types"
)

//go:embed catalog.yaml
var defaultYAML []byte

// file is the on-disk catalog layout.
type file struct {
	Version           int                            `yaml:"version"`
	ComplexityMarkers map[string]float64             `yaml:"complexity_markers"`
	Patterns          []types.Pattern                `yaml:"patterns"`
	Compatibility     map[string][]string            `yaml:"compatibility"`
	Fallbacks         map[types.ContentType][]string `yaml:"fallbacks"`
	Keywords          map[types.ContentType][]string `yaml:"keywords"`
	Design            types.Style                    `yaml:"design"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	version       int
	patterns      []types.Pattern
	byID          map[string]int
	byCategory    map[types.ContentType][]types.Pattern
	compatibility map[string][]string
	fallbacks     map[types.ContentType][]string
	keywords      map[types.ContentType][]string
	complexity    map[string]float64
	design        types.Style
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded pattern catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog override from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return build(f)
}

func build(f file) (*Catalog, error) {
	c := &Catalog{
		version:       f.Version,
		byID:          make(map[string]int, len(f.Patterns)),
		byCategory:    make(map[types.ContentType][]types.Pattern),
		compatibility: make(map[string][]string, len(f.Compatibility)),
		fallbacks:     make(map[types.ContentType][]string, len(f.Fallbacks)),
		keywords:      make(map[types.ContentType][]string, len(f.Keywords)),
		complexity:    make(map[string]float64, len(f.Patterns)),
		design:        f.Design,
	}

	for _, p := range f.Patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("pattern with empty id")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		if !p.Category.Valid() {
			return nil, fmt.Errorf("pattern %q has unknown category %q", p.ID, p.Category)
		}
		if p.Effectiveness < 1 || p.Effectiveness > 10 {
			return nil, fmt.Errorf("pattern %q effectiveness %v outside 1..10", p.ID, p.Effectiveness)
		}
		c.byID[p.ID] = len(c.patterns)
		c.patterns = append(c.patterns, p)
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
		c.complexity[p.ID] = templateComplexity(p.Template, f.ComplexityMarkers)
	}

	if len(c.patterns) == 0 {
		return nil, fmt.Errorf("catalog has no patterns")
	}
	for _, t := range types.AllContentTypes() {
		if len(c.byCategory[t]) == 0 {
			logging.Get(logging.CategorySelector).Warn("catalog has no patterns for category %q", t)
		}
	}

	for id, next := range f.Compatibility {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("compatibility entry for unknown pattern %q", id)
		}
		for _, n := range next {
			if _, ok := c.byID[n]; !ok {
				return nil, fmt.Errorf("compatibility of %q references unknown pattern %q", id, n)
			}
		}
		c.compatibility[id] = append([]string(nil), next...)
	}

	for t, ids := range f.Fallbacks {
		if !t.Valid() {
			return nil, fmt.Errorf("fallbacks for unknown category %q", t)
		}
		for _, id := range ids {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("fallback for %q references unknown pattern %q", t, id)
			}
		}
		c.fallbacks[t] = append([]string(nil), ids...)
	}

	for t, words := range f.Keywords {
		if !t.Valid() {
			return nil, fmt.Errorf("keywords for unknown category %q", t)
		}
		lowered := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				lowered = append(lowered, w)
			}
		}
		c.keywords[t] = lowered
	}

	return c, nil
}

// templateComplexity sums the weight of every marker present in the
// lower-cased template.
func templateComplexity(template string, markers map[string]float64) float64 {
	lower := strings.ToLower(template)
	names := make([]string, 0, len(markers))
	for m := range markers {
		names = append(names, m)
	}
	sort.Strings(names)

	total := 0.0
	for _, m := range names {
		if strings.Contains(lower, m) {
			total += markers[m]
		}
	}
	return total
}

// Version returns the catalog document version.
func (c *Catalog) Version() int { return c.version }

// Len returns the number of patterns.
func (c *Catalog) Len() int { return len(c.patterns) }

// Patterns returns every pattern in catalog order.
func (c *Catalog) Patterns() []types.Pattern {
	return append([]types.Pattern(nil), c.patterns...)
}

// Pattern looks up a pattern by id.
func (c *Catalog) Pattern(id string) (types.Pattern, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.Pattern{}, false
	}
	return c.patterns[i], true
}

// Index returns the catalog position of id, used as a stable tie-breaker.
func (c *Catalog) Index(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return len(c.patterns)
}

// ByCategory returns the patterns of one content type in catalog order.
func (c *Catalog) ByCategory(t types.ContentType) []types.Pattern {
	return append([]types.Pattern(nil), c.byCategory[t]...)
}

// Compatible reports whether next may follow prev.
func (c *Catalog) Compatible(prev, next string) bool {
	for _, id := range c.compatibility[prev] {
		if id == next {
			return true
		}
	}
	return false
}

// CompatibleNext returns the patterns that flow well after id.
func (c *Catalog) CompatibleNext(id string) []string {
	return append([]string(nil), c.compatibility[id]...)
}

// Fallbacks returns the fallback patterns of a content type.
func (c *Catalog) Fallbacks(t types.ContentType) []types.Pattern {
	var out []types.Pattern
	for _, id := range c.fallbacks[t] {
		if p, ok := c.Pattern(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Keywords returns the lower-cased keyword list of a content type.
func (c *Catalog) Keywords(t types.ContentType) []string {
	return append([]string(nil), c.keywords[t]...)
}

// Complexity returns the implementation complexity of a pattern.
func (c *Catalog) Complexity(id string) float64 {
	return c.complexity[id]
}

// Design returns the default slide style.
func (c *Catalog) Design() types.Style {
	return c.design
}
