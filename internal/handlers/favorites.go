package handlers

import (
	"net/http"
	"strings"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// FavoritesHandler exposes the favorites and keep lists. Mutations are
// optimistic in the store; when one fails the queued notice rides back on
// the error response so the view can toast it.
type FavoritesHandler struct {
	logger *common.Logger
	store  *store.Store
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(logger *common.Logger, st *store.Store) *FavoritesHandler {
	return &FavoritesHandler{logger: logger, store: st}
}

// Favorites handles /api/favorites and /api/favorites/{code}.
func (h *FavoritesHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/favorites"), "/")

	switch {
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		if code != "" {
			http.NotFound(w, r)
			return
		}
		if err := h.store.LoadFavorites(r.Context()); err != nil {
			WriteError(w, http.StatusBadGateway, "favorites unavailable: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": h.store.Favorites()})

	case r.Method == http.MethodPost && code != "":
		if err := h.store.AddFavorite(r.Context(), code); err != nil {
			h.writeMutationFailure(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": h.store.Favorites()})

	case r.Method == http.MethodDelete && code != "":
		if err := h.store.RemoveFavorite(r.Context(), code); err != nil {
			h.writeMutationFailure(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"items": h.store.Favorites()})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Keep handles POST/DELETE /api/keep/{code}. The keep list is session
// state; there is nothing to reconcile, so mutations cannot fail.
func (h *FavoritesHandler) Keep(w http.ResponseWriter, r *http.Request) {
	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/keep"), "/")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.store.Keep(code)
	case http.MethodDelete:
		h.store.Unkeep(code)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.store.Snapshot()
	WriteJSON(w, http.StatusOK, map[string]any{"keep": snap.Keep})
}

// writeMutationFailure reports a rolled-back optimistic mutation: the local
// state is already restored, the notices carry the user-facing text.
func (h *FavoritesHandler) writeMutationFailure(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusBadGateway, map[string]any{
		"status":  "error",
		"error":   err.Error(),
		"notices": h.store.DrainNotices(),
		"items":   h.store.Favorites(),
	})
}
