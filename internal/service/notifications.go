package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

// OrderPlacedHandler consumes OrderPlaced events. It stands in for the
// confirmation message a real shop would send.
type OrderPlacedHandler struct{}

func (h OrderPlacedHandler) HandlerName() string {
	return "OrderPlacedHandler"
}

func (h OrderPlacedHandler) Handle(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
	}

	slog.Info("📦 Order placed event received!",
		"order_id", event.OrderID,
		"cart_id", event.CartID,
		"total_price", event.TotalPrice,
		"items_count", len(event.Items),
		"expected_delivery", event.ExpectedDeliveryDate,
	)
	return nil
}
