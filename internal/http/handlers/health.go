package handlers

import (
	"net/http"
)

// Health answers liveness probes. It deliberately skips the database so a
// degraded pool does not take the whole service out of rotation.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "incubator-api",
	})
}
