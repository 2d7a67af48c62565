package discovery

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the discovery API under /api/v1/discovery.
// Cross-cutting middleware (CORS, auth gateway) wraps the parent router.
func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub) {
	api := router.PathPrefix("/api/v1/discovery").Subrouter()

	// Matching
	api.HandleFunc("/{userID}/matches", handler.DiscoverMatches).Methods("POST")
	api.HandleFunc("/{userID}/results", handler.GetResults).Methods("GET")
	api.HandleFunc("/{userID}/compatibility/{candidateID}", handler.GetCompatibility).Methods("GET")

	// Advisor
	api.HandleFunc("/{userID}/optimize", handler.OptimizePreferences).Methods("POST")
	api.HandleFunc("/presets", handler.GetPresets).Methods("GET")

	// Operations
	api.HandleFunc("/stats", handler.GetStats).Methods("GET")

	// Streaming
	api.HandleFunc("/{userID}/stream", hub.ServeStream).Methods("GET")
}
