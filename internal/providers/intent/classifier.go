package intent

import (
	"context"

	"restyle/internal/domain"
)

// Classifier decides whether a prompt asks for a direct redesign of the
// current photo or for a product search whose result gets composited in.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (domain.Classification, error)
}

const (
	geminiProviderName    = "gemini"
	openAIProviderName    = "openai"
	heuristicProviderName = "heuristic"
)

// classifierInstruction is the fixed preamble sent with every prompt. The
// model must answer with the two-field JSON object and nothing else.
const classifierInstruction = `You are the routing step of a photo redesign tool. ` +
	`Decide whether the user's request can be fulfilled by editing the current photo directly (REDESIGN_IMAGE), ` +
	`or whether it asks to find a real product to place into the photo (SEARCH_AND_APPLY). ` +
	`Respond strictly with JSON: {"intent":"REDESIGN_IMAGE"|"SEARCH_AND_APPLY","searchQuery":string|null}. ` +
	`For SEARCH_AND_APPLY, searchQuery is a short shopping query naming the product. User request: `
