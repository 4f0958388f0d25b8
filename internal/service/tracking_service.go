package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

// ErrMalformedOrder means the current-order slot holds data that does not decode.
var ErrMalformedOrder = errors.New("malformed current order")

// DefaultTickInterval is how often Watch recomputes the countdown.
const DefaultTickInterval = time.Second

// TrackingService reads the current order and derives its delivery progress.
type TrackingService struct {
	store repository.KVStore
	clock Clock
	tick  time.Duration
}

func NewTrackingService(store repository.KVStore, clock Clock) *TrackingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TrackingService{store: store, clock: clock, tick: DefaultTickInterval}
}

// WithTickInterval changes the Watch cadence.
func (s *TrackingService) WithTickInterval(d time.Duration) *TrackingService {
	if d > 0 {
		s.tick = d
	}
	return s
}

// LoadCurrentOrder returns the scope's order. found=false with a nil error is
// the normal "no order yet" state.
func (s *TrackingService) LoadCurrentOrder(ctx context.Context, cartID string) (entity.Order, bool, error) {
	raw, found, err := s.store.Get(ctx, repository.OrderKey(cartID))
	if err != nil {
		return entity.Order{}, false, fmt.Errorf("failed to load current order: %w", err)
	}
	if !found {
		return entity.Order{}, false, nil
	}

	var order entity.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return entity.Order{}, false, fmt.Errorf("%w: %v", ErrMalformedOrder, err)
	}
	if order.ID == "" || order.OrderDate.IsZero() || order.ExpectedDeliveryDate.IsZero() {
		return entity.Order{}, false, fmt.Errorf("%w: missing id or dates", ErrMalformedOrder)
	}
	return order, true, nil
}

// DeriveSteps evaluates the delivery milestones at the current time.
func (s *TrackingService) DeriveSteps(order entity.Order) []entity.TrackingStep {
	return order.Steps(s.clock.Now())
}

// RemainingTime is the countdown to the expected delivery at the current time.
func (s *TrackingService) RemainingTime(order entity.Order) entity.Countdown {
	return order.Countdown(s.clock.Now())
}

// Watch calls fn with a fresh countdown immediately and then on every tick.
// It returns nil once the order is delivered, or ctx.Err() if cancelled first.
// The ticker never outlives the call.
func (s *TrackingService) Watch(ctx context.Context, order entity.Order, fn func(entity.Countdown)) error {
	countdown := s.RemainingTime(order)
	fn(countdown)
	if countdown.Delivered {
		return nil
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		// A tick and a cancellation can be ready together.
		if err := ctx.Err(); err != nil {
			return err
		}

		countdown = s.RemainingTime(order)
		fn(countdown)
		if countdown.Delivered {
			return nil
		}
	}
}
