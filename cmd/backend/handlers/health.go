package handlers

import (
	"net/http"
)

// HealthResponse reports liveness for load balancers and probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthHandler answers unauthenticated liveness checks.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: "browser-agent"})
}
