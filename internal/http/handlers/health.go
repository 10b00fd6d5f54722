package handlers

import (
	"net/http"
)

// Health is the liveness probe. Provider reachability is intentionally not
// checked here; a missing key degrades features without failing the process.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "restyle-api",
	})
}
