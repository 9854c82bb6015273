package handlers

import (
	"net/http"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/models"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// ScreenHandler serves the screener data the routed views render: the
// ticker universe and per-timeframe chart payloads. Both endpoints are
// gated on backend readiness.
type ScreenHandler struct {
	logger    *common.Logger
	probe     *readiness.Probe
	store     *store.Store
	batchSize int
}

// NewScreenHandler creates a new screen handler. batchSize bounds a single
// batched bars fetch; zero selects the store default.
func NewScreenHandler(logger *common.Logger, probe *readiness.Probe, st *store.Store, batchSize int) *ScreenHandler {
	return &ScreenHandler{logger: logger, probe: probe, store: st, batchSize: batchSize}
}

// gate rejects requests while the backend is not ready, echoing the probe
// snapshot so the view can render the overlay from the same response.
func (h *ScreenHandler) gate(w http.ResponseWriter) bool {
	snap := h.probe.Snapshot()
	if snap.Ready {
		return true
	}
	WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
		"status":    "not_ready",
		"readiness": snap,
	})
	return false
}

// List handles GET /api/screen/list: loads the ticker universe on first
// call (single-flight) and returns it.
func (h *ScreenHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	if !h.gate(w) {
		return
	}

	if err := h.store.LoadList(r.Context()); err != nil {
		WriteError(w, http.StatusBadGateway, "ticker list unavailable: "+err.Error())
		return
	}
	if !h.store.ListLoaded() {
		// A concurrent load is still in flight; the view polls again.
		WriteJSON(w, http.StatusAccepted, map[string]any{"status": "loading"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"items": h.store.Tickers(),
	})
}

// barsRequest is the body of POST /api/screen/bars.
type barsRequest struct {
	Timeframe models.Timeframe `json:"timeframe"`
	Codes     []string         `json:"codes"`
	BatchSize int              `json:"batchSize"`
}

// Bars handles POST /api/screen/bars: ensures payloads exist for the
// visible codes and returns whatever the cache now holds for them, plus
// per-code load states for card feedback. A batch fetch failure is not a
// hard error; the affected codes simply come back without data.
func (h *ScreenHandler) Bars(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	if !h.gate(w) {
		return
	}

	var req barsRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timeframe == "" {
		req.Timeframe = models.TimeframeMonthly
	}
	if !req.Timeframe.Valid() {
		WriteError(w, http.StatusBadRequest, "unknown timeframe "+string(req.Timeframe))
		return
	}
	if len(req.Codes) == 0 {
		WriteJSON(w, http.StatusOK, map[string]any{
			"timeframe": req.Timeframe,
			"items":     map[string]models.BarPayload{},
			"states":    map[string]store.LoadState{},
		})
		return
	}
	batchSize := req.BatchSize
	if batchSize <= 0 || batchSize > h.batchSize {
		batchSize = h.batchSize
	}

	if err := h.store.EnsureBars(r.Context(), req.Timeframe, req.Codes, batchSize); err != nil {
		h.logger.Warn().
			Str("timeframe", string(req.Timeframe)).
			Str("error", err.Error()).
			Msg("ensure bars returned error")
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"timeframe": req.Timeframe,
		"items":     h.store.BarsFor(req.Timeframe, req.Codes),
		"states":    h.store.StatesFor(req.Timeframe, req.Codes),
	})
}
