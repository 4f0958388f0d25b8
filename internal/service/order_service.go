package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/messaging"
	"github.com/Arsen1987144/joycity-marketplace/internal/metrics"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

// DefaultLeadTimeDays is the delivery lead time used when none is configured.
const DefaultLeadTimeDays = 4

// OrderService turns a cart into the scope's current order.
type OrderService struct {
	store        repository.KVStore
	carts        *CartService
	publisher    messaging.Publisher
	metrics      *metrics.Metrics
	clock        Clock
	leadTimeDays int

	mu     sync.Mutex
	lastID int64
}

func NewOrderService(
	store repository.KVStore,
	carts *CartService,
	publisher messaging.Publisher,
	m *metrics.Metrics,
	clock Clock,
	leadTimeDays int,
) *OrderService {
	if publisher == nil {
		publisher = messaging.Discard
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if leadTimeDays < 0 {
		leadTimeDays = DefaultLeadTimeDays
	}
	return &OrderService{
		store:        store,
		carts:        carts,
		publisher:    publisher,
		metrics:      m,
		clock:        clock,
		leadTimeDays: leadTimeDays,
	}
}

// PlaceOrder snapshots the cart into the current-order slot, overwriting any
// previous order, then clears the cart. An empty cart places nothing and
// reports placed=false.
//
// The two writes are not atomic: if clearing the cart fails after the order
// was saved, the order stays and the error is returned.
func (s *OrderService) PlaceOrder(ctx context.Context, cartID string) (entity.Order, bool, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return entity.Order{}, false, err
	}
	if len(cart) == 0 {
		slog.Info("Service: Ignoring checkout of empty cart", "cart_id", cartID)
		return entity.Order{}, false, nil
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	order := entity.NewOrder(s.nextID(now), cart, now, s.leadTimeDays)

	slog.Info("Service: Placing order", "cart_id", cartID, "order_id", order.ID, "items", len(order.Items))

	data, err := json.Marshal(order)
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("failed to marshal order: %w", err)
	}
	if err := s.store.Set(ctx, repository.OrderKey(cartID), string(data)); err != nil {
		return entity.Order{}, false, fmt.Errorf("failed to save order: %w", err)
	}
	if err := s.carts.ClearCart(ctx, cartID); err != nil {
		return order, true, fmt.Errorf("order %s saved but cart not cleared: %w", order.ID, err)
	}
	s.metrics.OrderPlaced()

	_, total := s.carts.Lines(order.Items)
	event := entity.OrderPlaced{
		CartID:               cartID,
		OrderID:              order.ID,
		Items:                order.Items,
		TotalPrice:           total,
		PlacedAt:             order.OrderDate,
		ExpectedDeliveryDate: order.ExpectedDeliveryDate,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, order.ID, event); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	return order, true, nil
}

// nextID derives the id from the order time, moving forward a millisecond
// when two orders land in the same one.
func (s *OrderService) nextID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return fmt.Sprintf("ORD-%d", id)
}
