package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

func TestTrackingService_NoOrderIsNotAnError(t *testing.T) {
	f := newFixture(t)

	_, found, err := f.tracking.LoadCurrentOrder(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTrackingService_MalformedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"{broken", `{"id":"ORD-1"}`, "null"} {
		require.NoError(t, f.store.Set(ctx, repository.OrderKey(scope), raw))

		_, found, err := f.tracking.LoadCurrentOrder(ctx, scope)
		assert.ErrorIs(t, err, ErrMalformedOrder, raw)
		assert.False(t, found)
	}
}

func TestTrackingService_StorageError(t *testing.T) {
	f := newFixture(t)
	f.store.failGet = true

	_, _, err := f.tracking.LoadCurrentOrder(context.Background(), scope)
	assert.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, ErrMalformedOrder)
}

func TestTrackingService_DeriveSteps(t *testing.T) {
	f := newFixture(t)
	order := entity.NewOrder("ORD-1", entity.Cart{{ProductID: 1, Quantity: 1}}, t0, 4)

	f.clock.Set(t0.Add(2*entity.Day + time.Second))
	steps := f.tracking.DeriveSteps(order)

	require.Len(t, steps, 5)
	completed := make([]bool, len(steps))
	for i, s := range steps {
		completed[i] = s.Completed
	}
	assert.Equal(t, []bool{true, true, true, false, false}, completed)

	f.clock.Set(t0.Add(10 * entity.Day))
	for _, s := range f.tracking.DeriveSteps(order) {
		assert.True(t, s.Completed, s.Name)
	}
}

func TestTrackingService_RemainingTimeNeverResumes(t *testing.T) {
	f := newFixture(t)
	order := entity.NewOrder("ORD-1", nil, t0, 4)

	f.clock.Set(order.ExpectedDeliveryDate)
	f.clock.step = time.Hour
	for i := 0; i < 5; i++ {
		countdown := f.tracking.RemainingTime(order)
		assert.True(t, countdown.Delivered)
		assert.Zero(t, countdown.Remaining)
	}
}

func TestTrackingService_WatchStopsAtDelivery(t *testing.T) {
	f := newFixture(t)
	order := entity.NewOrder("ORD-1", nil, t0, 0)
	order.ExpectedDeliveryDate = t0.Add(3 * time.Second)

	f.clock.step = time.Second
	tracking := NewTrackingService(f.store, f.clock).WithTickInterval(time.Millisecond)

	var seen []entity.Countdown
	err := tracking.Watch(context.Background(), order, func(c entity.Countdown) {
		seen = append(seen, c)
	})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	assert.Equal(t, 3, seen[0].Seconds)
	assert.Equal(t, 2, seen[1].Seconds)
	assert.Equal(t, 1, seen[2].Seconds)
	assert.True(t, seen[3].Delivered)
}

func TestTrackingService_WatchDeliveredOrderTicksOnce(t *testing.T) {
	f := newFixture(t)
	order := entity.NewOrder("ORD-1", nil, t0.Add(-10*entity.Day), 4)

	calls := 0
	err := f.tracking.Watch(context.Background(), order, func(c entity.Countdown) {
		calls++
		assert.True(t, c.Delivered)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestTrackingService_WatchCancelled(t *testing.T) {
	f := newFixture(t)
	order := entity.NewOrder("ORD-1", nil, t0, 4)
	tracking := NewTrackingService(f.store, f.clock).WithTickInterval(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := tracking.Watch(ctx, order, func(entity.Countdown) {
		calls++
		if calls == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
}
