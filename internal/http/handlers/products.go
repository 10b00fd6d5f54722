package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// SessionApplyProduct renders one stored search result into the active image.
func (a *App) SessionApplyProduct(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be a number")
		return
	}

	sess, err := a.Studio.ApplyProduct(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		a.Stats.RecordFailure()
		a.domainError(w, r, err)
		return
	}
	a.Stats.RecordGenerated()
	a.json(w, http.StatusOK, newSessionResponse(sess, false))
}
