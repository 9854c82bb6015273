package handlers

import (
	"net/http"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
)

// ReadinessHandler exposes the backend readiness probe to the views: the
// snapshot drives the startup overlay, retry is the manual affordance out
// of the failed state.
type ReadinessHandler struct {
	logger *common.Logger
	probe  *readiness.Probe
}

// NewReadinessHandler creates a new readiness handler.
func NewReadinessHandler(logger *common.Logger, probe *readiness.Probe) *ReadinessHandler {
	return &ReadinessHandler{logger: logger, probe: probe}
}

// Snapshot handles GET /api/readiness.
func (h *ReadinessHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.probe.Snapshot())
}

// Retry handles POST /api/readiness/retry.
func (h *ReadinessHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.probe.Retry()
	WriteJSON(w, http.StatusOK, h.probe.Snapshot())
}
