package intent

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"restyle/internal/domain"
)

// HeuristicClassifier is the keyword fallback used when no model provider is
// configured. It only routes to the search branch on explicit shopping cues,
// so ambiguous prompts stay on the harmless redesign path.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

var searchCues = []string{
	"add a", "add an", "add some",
	"put a", "put an", "place a", "place an",
	"buy", "shop", "find me", "find a", "find an",
	"search for", "look for",
	"tambahkan", "cari", "beli", "pasang",
}

var cueStripPrefixes = []string{
	"add", "put", "place", "buy", "shop for", "shop", "find me", "find",
	"search for", "look for", "tambahkan", "cari", "beli", "pasang",
	"a", "an", "some",
}

func (h *HeuristicClassifier) Classify(ctx context.Context, prompt string) (domain.Classification, error) {
	if err := ctx.Err(); err != nil {
		return domain.Classification{}, err
	}
	folded := cases.Lower(language.Und).String(strings.TrimSpace(prompt))
	for _, cue := range searchCues {
		if strings.Contains(folded, cue) {
			c := domain.Classification{
				Intent:      domain.IntentSearchAndApply,
				SearchQuery: deriveQuery(folded),
			}
			c.Normalize()
			return c, nil
		}
	}
	return domain.Classification{Intent: domain.IntentRedesignImage}, nil
}

// deriveQuery strips leading verbs and articles so "add a blue velvet sofa"
// becomes "blue velvet sofa".
func deriveQuery(folded string) string {
	words := strings.Fields(folded)
	for len(words) > 0 {
		stripped := false
		for _, prefix := range cueStripPrefixes {
			prefixWords := strings.Fields(prefix)
			if len(words) >= len(prefixWords) && strings.Join(words[:len(prefixWords)], " ") == prefix {
				words = words[len(prefixWords):]
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.Join(words, " ")
}

var _ Classifier = (*HeuristicClassifier)(nil)
