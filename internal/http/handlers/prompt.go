package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// SessionPrompt runs the main flow against the active image.
func (a *App) SessionPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	a.Stats.RecordPrompt()
	sess, err := a.Studio.SubmitPrompt(r.Context(), chi.URLParam(r, "id"), req.Prompt)
	if err != nil {
		a.Stats.RecordFailure()
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordGenerated()
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}
