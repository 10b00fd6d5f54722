package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"restyle/internal/domain"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIClassifier runs the intent decision against an OpenAI-compatible
// chat endpoint, constrained to a JSON object response.
type OpenAIClassifier struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
}

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelAliases = map[string]string{
	"gpt4o-mini":             "gpt-4o-mini",
	"gpt4omini":              "gpt-4o-mini",
	"gpt-4o-mini-2024-07-18": "gpt-4o-mini",
	"gpt-35-turbo":           "gpt-3.5-turbo",
	"gpt3.5":                 "gpt-3.5-turbo",
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIClassifier(opts OpenAIOptions) (*OpenAIClassifier, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClassifier{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        normalizeOpenAIModel(opts.Model),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}, nil
}

func (o *OpenAIClassifier) Classify(ctx context.Context, prompt string) (domain.Classification, error) {
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openAIFormat{
			Type: "json_object",
		},
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a routing assistant that only responds with valid JSON."},
			{Role: "user", Content: classifierInstruction + prompt},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: encode request: %v", domain.ErrClassifyUnavailable, err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: build request: %v", domain.ErrClassifyUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", domain.ErrClassifyUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return domain.Classification{}, fmt.Errorf("%w: openai status %d", domain.ErrClassifyUnavailable, resp.StatusCode)
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return defaultClassification(), nil
	}
	if len(out.Choices) == 0 {
		return defaultClassification(), nil
	}
	c, _ := decodeClassification(out.Choices[0].Message.Content)
	return c, nil
}

func normalizeOpenAIModel(name string) string {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	trimmed = strings.ReplaceAll(trimmed, " ", "-")
	if trimmed == "" {
		return defaultOpenAIModel
	}
	if alias, ok := openAIModelAliases[trimmed]; ok {
		return alias
	}
	return trimmed
}

var _ Classifier = (*OpenAIClassifier)(nil)
