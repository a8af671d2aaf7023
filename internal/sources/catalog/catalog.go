// Package catalog lists the news categories the frontend shows and resolves
// the names clients use for them.
package catalog

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Category is a browsable news category
type Category struct {
	Slug    string   `json:"slug"`
	Label   string   `json:"label"`
	Aliases []string `json:"aliases,omitempty"`
}

// Catalog is an immutable, ordered set of categories
type Catalog struct {
	categories []Category
	lookup     map[string]int // lower-cased slug or alias -> position
}

// Default is the catalog used when no file is configured.
func Default() *Catalog {
	c, err := New(File{Categories: []CategoryProps{
		{Slug: "world"},
		{Slug: "art"},
		{Slug: "tech"},
		{Slug: "science"},
		{Slug: "gaming"},
		{Slug: "sport", Label: "Sports", Aliases: []string{"sports"}},
		{Slug: "business"},
	}})
	if err != nil {
		panic(err)
	}
	return c
}

// New validates file and builds a Catalog. Slugs and aliases must be unique,
// case-insensitively, across the whole catalog.
func New(file File) (*Catalog, error) {
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	c := &Catalog{
		categories: make([]Category, 0, len(file.Categories)),
		lookup:     make(map[string]int),
	}

	for i, props := range file.Categories {
		slug := strings.ToLower(strings.TrimSpace(props.Slug))
		if slug == "" {
			return nil, fmt.Errorf("category #%d has no slug", i+1)
		}
		if slug == "all" {
			return nil, fmt.Errorf("category slug %q is reserved", slug)
		}

		cat := Category{Slug: slug, Label: strings.TrimSpace(props.Label)}
		if cat.Label == "" {
			cat.Label = titleCase(slug)
		}

		pos := len(c.categories)
		if err := c.register(slug, pos); err != nil {
			return nil, err
		}
		for _, alias := range props.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" || alias == slug {
				continue
			}
			if err := c.register(alias, pos); err != nil {
				return nil, err
			}
			cat.Aliases = append(cat.Aliases, alias)
		}
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

func (c *Catalog) register(name string, pos int) error {
	if prev, ok := c.lookup[name]; ok {
		if prev == pos {
			return fmt.Errorf("category name %q is used twice", name)
		}
		return fmt.Errorf("category name %q is used twice (also by %q)", name, c.categories[prev].Slug)
	}
	c.lookup[name] = pos
	return nil
}

// Categories returns the categories in catalog order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup resolves a slug or alias, ignoring case
func (c *Catalog) Lookup(name string) (Category, bool) {
	pos, ok := c.lookup[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Category{}, false
	}
	return c.categories[pos], true
}

// Len returns the number of categories
func (c *Catalog) Len() int { return len(c.categories) }

func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Holder gives concurrent readers the current catalog while a watcher swaps it.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a holder serving c
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Get returns the current catalog
func (h *Holder) Get() *Catalog { return h.current.Load() }

// Set replaces the current catalog
func (h *Holder) Set(c *Catalog) { h.current.Store(c) }
