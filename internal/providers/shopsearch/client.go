package shopsearch

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

// resultsPerQuery is the fixed page size requested from the search service.
// There is no pagination; ranking is whatever the service returns.
const resultsPerQuery = 10

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to a Serper-style shopping search endpoint: one POST per
// query, results passed through unmodified.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://google.serper.dev"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Shopping []domain.ProductListing `json:"shopping"`
	Message  string                  `json:"message"`
}

// Search issues a single shopping query. A response without a shopping array
// yields an empty slice, not an error; non-2xx statuses wrap
// domain.ErrSearchUnavailable.
func (c *Client) Search(ctx context.Context, query string) ([]domain.ProductListing, error) {
	if c == nil {
		return nil, errors.New("search client not configured")
	}
	if c.apiKey == "" {
		return nil, errors.New("search: API key is missing")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search: query required")
	}

	body, err := json.Marshal(searchRequest{Q: query, Num: resultsPerQuery})
	if err != nil {
		return nil, err
	}
	endpoint := c.baseURL + "/shopping"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: http %d", domain.ErrSearchUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return nil, fmt.Errorf("%w: %s (http %d)", domain.ErrSearchUnavailable, out.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: http %d", domain.ErrSearchUnavailable, resp.StatusCode)
	}
	if out.Shopping == nil {
		return []domain.ProductListing{}, nil
	}
	return out.Shopping, nil
}
