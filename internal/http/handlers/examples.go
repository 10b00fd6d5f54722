package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (a *App) ExamplesList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"examples": a.Catalog.Examples()})
}

type useExampleRequest struct {
	ExampleID string `json:"exampleId"`
}

// SessionUseExample starts the session from a curated room photo.
func (a *App) SessionUseExample(w http.ResponseWriter, r *http.Request) {
	var req useExampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ExampleID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "exampleId required")
		return
	}
	ex, err := a.Catalog.Find(strings.TrimSpace(req.ExampleID))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	sess, err := a.Studio.SetImageFromURL(r.Context(), chi.URLParam(r, "id"), ex.ImageURL)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordUpload()
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}
