package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restyle/internal/domain"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Classifier
}

// GeminiClassifier asks Gemini for the intent decision using structured JSON
// output constrained to the two known tags. A response that comes back but
// cannot be parsed resolves to the redesign default; transport and status
// failures surface as errors.
type GeminiClassifier struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Classifier
}

const geminiDefaultTimeout = 15 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64       `json:"temperature"`
	CandidateCount   int           `json:"candidateCount,omitempty"`
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
	Enum       []string                `json:"enum,omitempty"`
	Nullable   bool                    `json:"nullable,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func classificationSchema() *geminiSchema {
	return &geminiSchema{
		Type: "OBJECT",
		Properties: map[string]geminiSchema{
			"intent": {
				Type: "STRING",
				Enum: []string{string(domain.IntentRedesignImage), string(domain.IntentSearchAndApply)},
			},
			"searchQuery": {Type: "STRING", Nullable: true},
		},
		Required: []string{"intent"},
	}
}

func NewGeminiClassifier(opts GeminiOptions) (*GeminiClassifier, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewHeuristicClassifier()
	}
	return &GeminiClassifier{
		apiKey:   opts.APIKey,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: fallback,
	}, nil
}

func (g *GeminiClassifier) Classify(ctx context.Context, prompt string) (domain.Classification, error) {
	if g.apiKey == "" {
		return g.fallback.Classify(ctx, prompt)
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: classifierInstruction + prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
			ResponseSchema:   classificationSchema(),
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: encode request: %v", domain.ErrClassifyUnavailable, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: build request: %v", domain.ErrClassifyUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", domain.ErrClassifyUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return domain.Classification{}, fmt.Errorf("%w: gemini status %d", domain.ErrClassifyUnavailable, resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return defaultClassification(), nil
	}
	text := extractText(out)
	if text == "" {
		return defaultClassification(), nil
	}
	c, _ := decodeClassification(text)
	return c, nil
}

func (g *GeminiClassifier) endpoint() string {
	base := strings.TrimRight(g.baseURL, "/")
	model := url.PathEscape(g.model)
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, model, url.QueryEscape(g.apiKey))
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

func defaultClassification() domain.Classification {
	return domain.Classification{Intent: domain.IntentRedesignImage}
}

var _ Classifier = (*GeminiClassifier)(nil)
