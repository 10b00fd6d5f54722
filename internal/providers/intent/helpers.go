package intent

import (
	"encoding/json"
	"strings"

	"restyle/internal/domain"
)

type classificationPayload struct {
	Intent      string `json:"intent"`
	SearchQuery string `json:"searchQuery"`
}

// decodeClassification parses model output into a normalized classification.
// ok is false when no JSON object could be recovered from the text; callers
// treat that as the safe default rather than an error.
func decodeClassification(raw string) (domain.Classification, bool) {
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return domain.Classification{Intent: domain.IntentRedesignImage}, false
	}
	var payload classificationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Classification{Intent: domain.IntentRedesignImage}, false
	}
	c := domain.Classification{
		Intent:      domain.Intent(payload.Intent),
		SearchQuery: payload.SearchQuery,
	}
	c.Normalize()
	return c, true
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
