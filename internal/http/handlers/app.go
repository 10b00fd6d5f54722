package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"restyle/internal/catalog"
	"restyle/internal/domain"
	"restyle/internal/infra"
	"restyle/internal/middleware"
	"restyle/internal/studio"
)

type App struct {
	Config  *infra.Config
	Log     *infra.Logger
	Studio  *studio.Service
	Catalog *catalog.Catalog
	Stats   *Stats
}

func NewApp(cfg *infra.Config, log *infra.Logger, svc *studio.Service, cat *catalog.Catalog) *App {
	return &App{
		Config:  cfg,
		Log:     log,
		Studio:  svc,
		Catalog: cat,
		Stats:   NewStats(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// domainError translates a flow error into the envelope, localizing the
// message for the request's locale.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	locale := middleware.LocaleFromContext(r.Context())
	msg := domain.Localize(locale, domain.MessageKeyForError(err))
	if status >= http.StatusInternalServerError {
		a.Log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("handlers: request failed")
	}
	a.error(w, status, code, msg)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrExampleNotFound):
		return http.StatusNotFound, "example_not_found"
	case errors.Is(err, domain.ErrNoProducts):
		return http.StatusNotFound, "no_products"
	case errors.Is(err, domain.ErrSessionLimit):
		return http.StatusServiceUnavailable, "session_limit"
	case errors.Is(err, domain.ErrActionInFlight):
		return http.StatusConflict, "action_in_flight"
	case errors.Is(err, domain.ErrNoActiveImage):
		return http.StatusUnprocessableEntity, "no_active_image"
	case errors.Is(err, domain.ErrInvalidIndex):
		return http.StatusUnprocessableEntity, "invalid_index"
	case errors.Is(err, domain.ErrImageUnreadable):
		return http.StatusUnprocessableEntity, "image_unreadable"
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, domain.ErrNoImageReturned):
		return http.StatusBadGateway, "no_image_returned"
	case errors.Is(err, domain.ErrClassifyUnavailable),
		errors.Is(err, domain.ErrSearchUnavailable),
		errors.Is(err, domain.ErrGenerateUnavailable):
		return http.StatusBadGateway, "provider_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

type sessionResponse struct {
	ID            string                  `json:"id"`
	Prompt        string                  `json:"prompt"`
	History       []historyEntry          `json:"imageHistory"`
	ActiveIndex   int                     `json:"activeIndex"`
	Results       []domain.ProductListing `json:"searchResults"`
	Status        domain.SessionStatus    `json:"status"`
	Stage         domain.Stage            `json:"stage,omitempty"`
	StatusMessage string                  `json:"statusMessage,omitempty"`
	Error         string                  `json:"error,omitempty"`
	Locale        string                  `json:"locale"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// historyEntry references one history image. Payloads stay out of snapshots
// by default; the bytes endpoint serves them, or dataUri when the client asks
// for ?include=images.
type historyEntry struct {
	MIMEType string `json:"mimeType"`
	URL      string `json:"url"`
	DataURI  string `json:"dataUri,omitempty"`
}

func newSessionResponse(s *domain.Session, includeImages bool) sessionResponse {
	history := make([]historyEntry, 0, len(s.History))
	for i, img := range s.History {
		entry := historyEntry{
			MIMEType: img.MIMEType,
			URL:      fmt.Sprintf("/v1/sessions/%s/history/%d", s.ID, i),
		}
		if includeImages {
			entry.DataURI = img.DataURI()
		}
		history = append(history, entry)
	}

	resp := sessionResponse{
		ID:            s.ID,
		Prompt:        s.Prompt,
		History:       history,
		ActiveIndex:   s.ActiveIndex,
		Results:       s.Results,
		Status:        s.Status,
		Stage:         s.Stage,
		StatusMessage: s.StatusMessage,
		Error:         s.LastError,
		Locale:        s.Locale,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if resp.Results == nil {
		resp.Results = []domain.ProductListing{}
	}
	return resp
}
