package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Readiness gate (drives the startup overlay)
	mux.HandleFunc("/api/readiness", s.app.ReadinessHandler.Snapshot)
	mux.HandleFunc("/api/readiness/retry", s.app.ReadinessHandler.Retry)

	// Screener data consumed by the routed views
	mux.HandleFunc("/api/screen/list", s.app.ScreenHandler.List)
	mux.HandleFunc("/api/screen/bars", s.app.ScreenHandler.Bars)

	// Favorites and keep list
	mux.HandleFunc("/api/favorites", s.app.FavoritesHandler.Favorites)
	mux.HandleFunc("/api/favorites/", s.app.FavoritesHandler.Favorites)
	mux.HandleFunc("/api/keep/", s.app.FavoritesHandler.Keep)

	// Snapshot stream
	mux.HandleFunc("/api/events", s.app.EventsHandler.ServeHTTP)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// Portal's own health and version
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
