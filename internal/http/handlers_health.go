package httpx

import (
	"context"
	"net/http"
	"time"
)

const readinessPingTimeout = 2 * time.Second

type healthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReadyHandlers serves readiness checks against the database.
type ReadyHandlers struct {
	DB Pinger
}

// Ready handles GET /readyz.
func (h *ReadyHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessPingTimeout)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
