package imaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"restyle/internal/domain"
	"restyle/internal/infra"
)

// FetchPolicy is the two-step retrieval strategy for remote images: one
// direct fetch, then exactly one retry through a relay proxy. There is no
// further retry or backoff.
type FetchPolicy struct {
	client   *http.Client
	relayURL string
	maxBytes int64
	logger   *infra.Logger
}

type FetchOptions struct {
	RelayURL   string
	MaxBytes   int64
	HTTPClient *http.Client
	Logger     *infra.Logger
}

func NewFetchPolicy(opts FetchOptions) *FetchPolicy {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &FetchPolicy{
		client:   client,
		relayURL: strings.TrimRight(strings.TrimSpace(opts.RelayURL), "?&"),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch retrieves a remote image. On any direct failure it retries once via
// the relay; when both attempts fail the error wraps domain.ErrFetchFailed
// and carries both causes.
func (p *FetchPolicy) Fetch(ctx context.Context, rawURL string) (domain.ImageObject, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return domain.ImageObject{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	img, directErr := p.fetchOnce(ctx, target)
	if directErr == nil {
		return img, nil
	}
	if p.relayURL == "" {
		return domain.ImageObject{}, fmt.Errorf("%w: %v", domain.ErrFetchFailed, directErr)
	}

	p.logger.Warn().
		Err(directErr).
		Str("url", target).
		Msg("imaging: direct fetch failed; retrying via relay")

	img, relayErr := p.fetchOnce(ctx, p.relayTarget(target))
	if relayErr != nil {
		return domain.ImageObject{}, fmt.Errorf("%w: direct: %v; relay: %v", domain.ErrFetchFailed, directErr, relayErr)
	}
	return img, nil
}

func (p *FetchPolicy) fetchOnce(ctx context.Context, target string) (domain.ImageObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.ImageObject{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ImageObject{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ImageObject{}, fmt.Errorf("http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return domain.ImageObject{}, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return domain.ImageObject{}, fmt.Errorf("empty body")
	}
	if int64(len(data)) > p.maxBytes {
		return domain.ImageObject{}, fmt.Errorf("body exceeds %d bytes", p.maxBytes)
	}
	return domain.NewImage(data, resolveMIME(resp.Header.Get("Content-Type"), data)), nil
}

func (p *FetchPolicy) relayTarget(target string) string {
	return p.relayURL + "?url=" + url.QueryEscape(target)
}

func validateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("empty url")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return parsed.String(), nil
}
