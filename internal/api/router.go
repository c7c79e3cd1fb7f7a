package api

import (
	"github.com/gorilla/mux"

	"github.com/tahcohcat/memorymatch-web/internal/auth"
	"github.com/tahcohcat/memorymatch-web/internal/websocket"
)

// NewRouter wires the auth endpoints, the public and authenticated API and
// the live event socket onto one router.
func NewRouter(h *Handler, authManager *auth.Manager, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authManager.RegisterHandler).Methods("POST")
	authRouter.HandleFunc("/login", authManager.LoginHandler).Methods("POST")
	authRouter.HandleFunc("/logout", authManager.LogoutHandler).Methods("POST", "GET")

	// Public routes (no authentication required)
	publicRouter := r.PathPrefix("/api/v1").Subrouter()
	h.RegisterPublicRoutes(publicRouter)
	websocket.RegisterRoutes(publicRouter, hub)

	// Authenticated routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authManager.Middleware)
	h.RegisterRoutes(apiRouter)

	return r
}
