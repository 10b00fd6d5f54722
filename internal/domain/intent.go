package domain

import "strings"

// Intent selects between editing the current photo directly and searching
// for an external product to composite into it.
type Intent string

const (
	IntentRedesignImage  Intent = "REDESIGN_IMAGE"
	IntentSearchAndApply Intent = "SEARCH_AND_APPLY"
)

// ParseIntent maps a raw tag onto one of the two known intents. Anything
// unrecognized resolves to IntentRedesignImage so that a malformed classifier
// response degrades to the harmless branch instead of inventing a case.
func ParseIntent(raw string) Intent {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(IntentSearchAndApply):
		return IntentSearchAndApply
	default:
		return IntentRedesignImage
	}
}

// Classification is the structured result of one intent-classification call.
type Classification struct {
	Intent      Intent `json:"intent"`
	SearchQuery string `json:"searchQuery,omitempty"`
}

// Normalize coerces the tag onto a known intent and drops a stray query on
// the redesign branch.
func (c *Classification) Normalize() {
	c.Intent = ParseIntent(string(c.Intent))
	c.SearchQuery = strings.TrimSpace(c.SearchQuery)
	if c.Intent == IntentRedesignImage {
		c.SearchQuery = ""
	}
}

// Query returns the search query to use, falling back to the original prompt
// when the classifier did not supply one.
func (c Classification) Query(prompt string) string {
	if c.SearchQuery != "" {
		return c.SearchQuery
	}
	return strings.TrimSpace(prompt)
}
