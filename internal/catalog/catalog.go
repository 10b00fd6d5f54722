package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"restyle/internal/domain"
)

//go:embed examples.yaml
var embeddedExamples []byte

// Example is one curated starting room offered to new sessions.
type Example struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Category string   `yaml:"category" json:"category"`
	ImageURL string   `yaml:"image_url" json:"imageUrl"`
	Prompts  []string `yaml:"prompts" json:"prompts,omitempty"`
}

type document struct {
	Examples []Example `yaml:"examples"`
}

// Catalog is the immutable set of example rooms loaded at startup.
type Catalog struct {
	examples []Example
	byID     map[string]Example
}

// Load reads the catalog from path, or from the embedded document when path
// is empty.
func Load(path string) (*Catalog, error) {
	raw := embeddedExamples
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]Example, len(doc.Examples))}
	for i, ex := range doc.Examples {
		ex.ID = strings.TrimSpace(ex.ID)
		ex.ImageURL = strings.TrimSpace(ex.ImageURL)
		if ex.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if ex.ImageURL == "" {
			return nil, fmt.Errorf("catalog entry %q: missing image_url", ex.ID)
		}
		if _, dup := c.byID[ex.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", ex.ID)
		}
		c.byID[ex.ID] = ex
		c.examples = append(c.examples, ex)
	}
	return c, nil
}

// Examples returns the catalog in document order.
func (c *Catalog) Examples() []Example {
	out := make([]Example, len(c.examples))
	copy(out, c.examples)
	return out
}

// Find looks an example up by id.
func (c *Catalog) Find(id string) (Example, error) {
	ex, ok := c.byID[id]
	if !ok {
		return Example{}, fmt.Errorf("%w: %s", domain.ErrExampleNotFound, id)
	}
	return ex, nil
}

// Len reports the number of examples.
func (c *Catalog) Len() int {
	return len(c.examples)
}
