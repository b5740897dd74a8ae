package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// RegisterHealthRoute registers the unauthenticated liveness probe
func RegisterHealthRoute(router *mux.Router) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}).Methods("GET")
}
