package handlers

import (
	"net/http"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
)

// HealthHandler reports the portal's own liveness plus a summary of the
// backend gate, so one curl answers both "is the portal up" and "why is the
// screen empty".
type HealthHandler struct {
	logger *common.Logger
	probe  *readiness.Probe
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *common.Logger, probe *readiness.Probe) *HealthHandler {
	return &HealthHandler{logger: logger, probe: probe}
}

// ServeHTTP handles GET /api/health. The portal itself is always "ok" if it
// can answer; the backend block carries the readiness gate.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snap := h.probe.Snapshot()
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"backend": map[string]any{
			"ready":  snap.Ready,
			"phase":  snap.Phase,
			"failed": snap.Failed,
		},
	})
}
