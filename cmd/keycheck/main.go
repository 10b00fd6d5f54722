package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"restyle/internal/infra"
	"restyle/internal/providers/intent"
	"restyle/internal/providers/shopsearch"
)

// keycheck probes the configured provider credentials with one cheap request
// each, so a deploy can be sanity-checked without starting the API.
func main() {
	var (
		providerFlag string
		timeoutFlag  time.Duration
	)
	flag.StringVar(&providerFlag, "provider", "all", "Provider to check: gemini, openai, search, or all")
	flag.DurationVar(&timeoutFlag, "timeout", 15*time.Second, "Per-check timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	provider := strings.TrimSpace(strings.ToLower(providerFlag))
	switch provider {
	case "gemini", "openai", "search", "all":
	case "":
		provider = "all"
	default:
		fmt.Fprintf(os.Stderr, "unsupported provider %q\n", providerFlag)
		os.Exit(1)
	}

	failed := false
	run := func(name string, check func(context.Context) (string, error)) {
		ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
		defer cancel()
		detail, err := check(ctx)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", name, err)
			return
		}
		fmt.Printf("OK   %s: %s\n", name, detail)
	}

	if provider == "gemini" || provider == "all" {
		run("gemini", func(ctx context.Context) (string, error) {
			if cfg.GeminiAPIKey == "" {
				return "", fmt.Errorf("GEMINI_API_KEY is not set")
			}
			c, err := intent.NewGeminiClassifier(intent.GeminiOptions{
				APIKey:  cfg.GeminiAPIKey,
				Model:   cfg.GeminiTextModel,
				BaseURL: cfg.GeminiBaseURL,
			})
			if err != nil {
				return "", err
			}
			cls, err := c.Classify(ctx, "add a blue velvet sofa to the room")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("intent=%s query=%q", cls.Intent, cls.SearchQuery), nil
		})
	}

	if provider == "openai" || provider == "all" {
		run("openai", func(ctx context.Context) (string, error) {
			if cfg.OpenAIAPIKey == "" {
				return "", fmt.Errorf("OPENAI_API_KEY is not set")
			}
			c, err := intent.NewOpenAIClassifier(intent.OpenAIOptions{
				APIKey:       cfg.OpenAIAPIKey,
				Model:        cfg.OpenAIModel,
				BaseURL:      cfg.OpenAIBaseURL,
				Organization: cfg.OpenAIOrg,
			})
			if err != nil {
				return "", err
			}
			cls, err := c.Classify(ctx, "add a blue velvet sofa to the room")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("intent=%s query=%q", cls.Intent, cls.SearchQuery), nil
		})
	}

	if provider == "search" || provider == "all" {
		run("search", func(ctx context.Context) (string, error) {
			if cfg.SearchAPIKey == "" {
				return "", fmt.Errorf("SEARCH_API_KEY is not set")
			}
			client := shopsearch.NewClient(shopsearch.Options{
				BaseURL: cfg.SearchBaseURL,
				APIKey:  cfg.SearchAPIKey,
				Timeout: timeoutFlag,
			})
			listings, err := client.Search(ctx, "desk lamp")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d listings", len(listings)), nil
		})
	}

	if failed {
		os.Exit(1)
	}
}
