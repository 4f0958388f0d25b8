package entity

import (
	"fmt"
	"time"
)

// Day is the unit delivery offsets are expressed in.
const Day = 24 * time.Hour

// Order is the snapshot taken at checkout. It is never mutated after creation.
type Order struct {
	ID                   string    `json:"id"`
	Items                Cart      `json:"items"`
	OrderDate            time.Time `json:"orderDate"`
	ExpectedDeliveryDate time.Time `json:"expectedDeliveryDate"`
}

// NewOrder freezes a copy of items and the delivery date derived from leadTimeDays.
func NewOrder(id string, items Cart, orderDate time.Time, leadTimeDays int) Order {
	return Order{
		ID:                   id,
		Items:                items.Clone(),
		OrderDate:            orderDate,
		ExpectedDeliveryDate: orderDate.Add(time.Duration(leadTimeDays) * Day),
	}
}

// Milestone is a named delivery step, offset from the order date.
type Milestone struct {
	Name       string
	OffsetDays int
}

// Milestones is the fixed delivery timeline every order goes through.
var Milestones = []Milestone{
	{Name: "Заказ оформлен", OffsetDays: 0},
	{Name: "Упакован", OffsetDays: 1},
	{Name: "Передан в доставку", OffsetDays: 2},
	{Name: "В пути", OffsetDays: 3},
	{Name: "Доставлен", OffsetDays: 4},
}

// TrackingStep is a milestone evaluated against a point in time.
type TrackingStep struct {
	Name       string    `json:"name"`
	OffsetDays int       `json:"offsetDays"`
	Date       time.Time `json:"date"`
	Completed  bool      `json:"completed"`
}

// Steps derives the tracking timeline as seen at now. Nothing is cached.
func (o Order) Steps(now time.Time) []TrackingStep {
	steps := make([]TrackingStep, len(Milestones))
	for i, m := range Milestones {
		date := o.OrderDate.Add(time.Duration(m.OffsetDays) * Day)
		steps[i] = TrackingStep{
			Name:       m.Name,
			OffsetDays: m.OffsetDays,
			Date:       date,
			Completed:  !now.Before(date),
		}
	}
	return steps
}

// Countdown is the time left until the expected delivery.
type Countdown struct {
	Remaining time.Duration `json:"remaining"`
	Days      int           `json:"days"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Seconds   int           `json:"seconds"`
	Delivered bool          `json:"delivered"`
}

// Countdown splits expected-now into whole days, hours, minutes and seconds.
// Once the delivery date is reached it reports zero and Delivered.
func (o Order) Countdown(now time.Time) Countdown {
	remaining := o.ExpectedDeliveryDate.Sub(now)
	if remaining <= 0 {
		return Countdown{Delivered: true}
	}
	secs := int64(remaining / time.Second)
	return Countdown{
		Remaining: remaining,
		Days:      int(secs / 86400),
		Hours:     int(secs % 86400 / 3600),
		Minutes:   int(secs % 3600 / 60),
		Seconds:   int(secs % 60),
	}
}

func (c Countdown) String() string {
	if c.Delivered {
		return "Заказ доставлен!"
	}
	return fmt.Sprintf("До доставки осталось: %dд %dч %dм %dс", c.Days, c.Hours, c.Minutes, c.Seconds)
}
