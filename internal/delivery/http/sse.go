package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// countdownEvent is the data of one countdown server-sent event.
type countdownEvent struct {
	Days      int    `json:"days"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Seconds   int    `json:"seconds"`
	Delivered bool   `json:"delivered"`
	Text      string `json:"text"`
}

// streamCountdown sends a "countdown" event every tick until the order is
// delivered, then a final "delivered" event, and closes the stream.
func (h *Handler) streamCountdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := ScopeFromContext(ctx)

	order, found, err := h.tracking.LoadCurrentOrder(ctx, scope)
	if err != nil && !errors.Is(err, service.ErrMalformedOrder) {
		h.apiError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err = h.tracking.Watch(ctx, order, func(c entity.Countdown) {
		name := "countdown"
		if c.Delivered {
			name = "delivered"
		}
		data, err := json.Marshal(countdownEvent{
			Days:      c.Days,
			Hours:     c.Hours,
			Minutes:   c.Minutes,
			Seconds:   c.Seconds,
			Delivered: c.Delivered,
			Text:      c.String(),
		})
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
		if err := rc.Flush(); err != nil {
			slog.Debug("Failed to flush countdown", "cart_id", scope, "err", err)
		}
	})
	if err != nil {
		slog.Debug("Countdown stream closed by client", "cart_id", scope, "order_id", order.ID)
	}
}
