package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"restyle/internal/catalog"
	"restyle/internal/http/handlers"
	"restyle/internal/http/httpapi"
	"restyle/internal/imaging"
	"restyle/internal/infra"
	"restyle/internal/infra/geoip"
	"restyle/internal/middleware"
	"restyle/internal/providers/gemini"
	"restyle/internal/providers/intent"
	"restyle/internal/providers/shopsearch"
	"restyle/internal/session"
	"restyle/internal/studio"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Country lookups degrade to header hints when no database is configured.
	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		defer resolver.Close()
	}

	cat, err := catalog.Load(cfg.ExamplesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load example catalog")
	}

	classifier := buildClassifier(cfg, logger)

	editor, err := gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiImageModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image editor")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY empty; rendering deterministic synthetic images")
	}

	searcher := shopsearch.NewClient(shopsearch.Options{
		BaseURL: cfg.SearchBaseURL,
		APIKey:  cfg.SearchAPIKey,
	})
	if cfg.SearchAPIKey == "" {
		logger.Warn().Msg("SEARCH_API_KEY empty; product search requests will fail")
	}

	fetcher := imaging.NewFetchPolicy(imaging.FetchOptions{
		RelayURL: cfg.RelayProxyURL,
		MaxBytes: cfg.MaxUploadBytes,
		Logger:   &logger,
	})

	store := session.NewStore(cfg.SessionTTL, cfg.MaxSessions)
	broker := session.NewBroker()

	svc, err := studio.NewService(studio.Options{
		Store:      store,
		Events:     broker,
		Classifier: classifier,
		Editor:     editor,
		Searcher:   searcher,
		Fetcher:    fetcher,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build studio service")
	}

	app := handlers.NewApp(cfg, &logger, svc, cat)
	router := httpapi.NewRouter(app, cfg, logger, lookup)
	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildClassifier(cfg *infra.Config, logger infra.Logger) studio.Classifier {
	switch cfg.IntentProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn().Msg("GEMINI_API_KEY empty; using heuristic intent classifier")
			return intent.NewHeuristicClassifier()
		}
		c, err := intent.NewGeminiClassifier(intent.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiTextModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build gemini intent classifier")
		}
		return c
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("OPENAI_API_KEY empty; using heuristic intent classifier")
			return intent.NewHeuristicClassifier()
		}
		c, err := intent.NewOpenAIClassifier(intent.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build openai intent classifier")
		}
		return c
	default:
		return intent.NewHeuristicClassifier()
	}
}
