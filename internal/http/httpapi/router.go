package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"restyle/internal/http/handlers"
	"restyle/internal/infra"
	"restyle/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, log zerolog.Logger, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(log),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, lookup),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.StatsSummary)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/v1/examples", app.ExamplesList)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.SessionCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.SessionGet)
			r.Delete("/", app.SessionDelete)
			r.Post("/reset", app.SessionReset)
			r.Post("/image", app.SessionImageUpload)
			r.Post("/prompt", app.SessionPrompt)
			r.Post("/products/{index}/apply", app.SessionApplyProduct)
			r.Post("/history/select", app.SessionSelectHistory)
			r.Get("/history/{index}", app.HistoryImage)
			r.Get("/export.zip", app.SessionExportZip)
			r.Get("/events", app.SessionEvents)
			r.Post("/example", app.SessionUseExample)
		})
	})

	return r
}
