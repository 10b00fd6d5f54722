package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"restyle/internal/middleware"
)

func (a *App) SessionCreate(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	sess, err := a.Studio.CreateSession(locale)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordSessionCreated()
	a.json(w, http.StatusCreated, newSessionResponse(sess, false))
}

func (a *App) SessionGet(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Studio.Session(chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	includeImages := r.URL.Query().Get("include") == "images"
	a.json(w, http.StatusOK, newSessionResponse(sess, includeImages))
}

func (a *App) SessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.DeleteSession(chi.URLParam(r, "id")); err != nil {
		a.domainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) SessionReset(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Studio.ResetSession(chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}

type selectHistoryRequest struct {
	Index *int `json:"index"`
}

func (a *App) SessionSelectHistory(w http.ResponseWriter, r *http.Request) {
	var req selectHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index required")
		return
	}
	sess, err := a.Studio.SelectHistory(chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}
