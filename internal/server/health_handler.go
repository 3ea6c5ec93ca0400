package server

import (
	"net/http"

	pgjson "phishguard/internal/json"
)

type healthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Store   string `json:"store"`
}

// ServeHealth handles "/api/health". The server answers even when the store
// is down.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	status := "Disconnected"
	if h.storeAvailable(r.Context()) {
		status = "Connected"
	}
	pgjson.WriteJSON(w, http.StatusOK, healthResponse{
		Success: true,
		Message: "Server is running",
		Store:   status,
	})
}
