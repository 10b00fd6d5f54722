package catalog

import (
	"errors"
	"testing"

	"restyle/internal/domain"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	for _, ex := range c.Examples() {
		if ex.ID == "" || ex.Title == "" || ex.ImageURL == "" {
			t.Fatalf("incomplete example: %+v", ex)
		}
	}
}

func TestFind(t *testing.T) {
	c, err := parse([]byte(`
examples:
  - id: loft
    title: Loft
    category: bedroom
    image_url: https://cdn.example.com/loft.jpg
    prompts:
      - make it cozy
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	ex, err := c.Find("loft")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ex.Title != "Loft" || len(ex.Prompts) != 1 {
		t.Fatalf("unexpected example: %+v", ex)
	}

	if _, err := c.Find("missing"); !errors.Is(err, domain.ErrExampleNotFound) {
		t.Fatalf("err = %v, want ErrExampleNotFound", err)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing id", "examples:\n  - title: X\n    image_url: https://x/y.jpg\n"},
		{"missing image", "examples:\n  - id: x\n    title: X\n"},
		{"duplicate id", "examples:\n  - id: x\n    image_url: https://x/1.jpg\n  - id: x\n    image_url: https://x/2.jpg\n"},
		{"not yaml", "{{nope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parse([]byte(tc.raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExamplesReturnsCopy(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	list := c.Examples()
	list[0].Title = "mutated"

	if c.Examples()[0].Title == "mutated" {
		t.Fatal("Examples leaked internal slice")
	}
}
