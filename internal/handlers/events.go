package handlers

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/toshiwd/moomoo-like-sub001/internal/common"
	"github.com/toshiwd/moomoo-like-sub001/internal/readiness"
	"github.com/toshiwd/moomoo-like-sub001/internal/store"
)

// event is one message on the snapshot stream.
type event struct {
	Type      string              `json:"type"` // "readiness" or "store"
	Readiness *readiness.Snapshot `json:"readiness,omitempty"`
	Store     *store.Snapshot     `json:"store,omitempty"`
}

// EventsHandler streams readiness and store snapshots to the views over a
// websocket, so they re-render as data arrives instead of polling.
type EventsHandler struct {
	logger *common.Logger
	probe  *readiness.Probe
	store  *store.Store
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(logger *common.Logger, probe *readiness.Probe, st *store.Store) *EventsHandler {
	return &EventsHandler{logger: logger, probe: probe, store: st}
}

// ServeHTTP handles GET /api/events. The current snapshots are sent on
// connect, then every state change until the client goes away. A slow
// client drops intermediate snapshots rather than blocking the publishers;
// the next one carries the full state anyway.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn().Str("error", err.Error()).Msg("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx := conn.CloseRead(r.Context())

	events := make(chan event, 16)
	offer := func(ev event) {
		select {
		case events <- ev:
		default:
		}
	}

	unsubProbe := h.probe.Subscribe(func(snap readiness.Snapshot) {
		offer(event{Type: "readiness", Readiness: &snap})
	})
	defer unsubProbe()
	unsubStore := h.store.Subscribe(func(snap store.Snapshot) {
		offer(event{Type: "store", Store: &snap})
	})
	defer unsubStore()

	probeSnap := h.probe.Snapshot()
	storeSnap := h.store.Snapshot()
	offer(event{Type: "readiness", Readiness: &probeSnap})
	offer(event{Type: "store", Store: &storeSnap})

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
