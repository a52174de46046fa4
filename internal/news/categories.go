package news

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoriesConfig is the YAML layout of the sources file:
//
//	categories:
//	  - id: ai_news
//	    label: ШІ новини
//	    sources:
//	      - https://example.com/ai
//	      - url: https://example.com/ai/rss
//	        feed: true
type CategoriesConfig struct {
	Categories []Category `yaml:"categories"`
}

// UnmarshalYAML accepts either a bare URL or a {url, feed} mapping.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.URL = strings.TrimSpace(node.Value)
		s.Feed = false
		return nil
	}
	type plain Source
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Source(p)
	s.URL = strings.TrimSpace(s.URL)
	return nil
}

// LoadCategories reads the category list from a YAML (or JSON) file.
func LoadCategories(path string) ([]Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg CategoriesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(cfg.Categories))
	for i := range cfg.Categories {
		c := &cfg.Categories[i]
		if c.ID == "" {
			return nil, fmt.Errorf("category #%d has no id", i+1)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if c.Label == "" {
			c.Label = strings.ReplaceAll(c.ID, "_", " ")
		}
		kept := c.Sources[:0]
		for _, s := range c.Sources {
			if s.URL != "" {
				kept = append(kept, s)
			}
		}
		c.Sources = kept
	}
	return cfg.Categories, nil
}

// Catalog looks categories up by id while keeping their configured order.
type Catalog struct {
	list []Category
	byID map[string]Category
}

func NewCatalog(categories []Category) *Catalog {
	c := &Catalog{list: categories, byID: make(map[string]Category, len(categories))}
	for _, cat := range categories {
		c.byID[cat.ID] = cat
	}
	return c
}

func (c *Catalog) Get(id string) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

func (c *Catalog) All() []Category {
	return c.list
}
