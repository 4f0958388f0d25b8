package entity

import (
	"fmt"
	"time"
)

// Product represents a product in the store.
type Product struct {
	ID          int     `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	ImageURL    string  `json:"imageUrl" yaml:"image_url"`
	Description string  `json:"description" yaml:"description"`
}

// FormatPrice renders a price the way the storefront displays it.
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f €", price)
}

// CartLine is a cart entry joined with its catalog product.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// --- Events ---

// Event represents a domain event.
type Event interface {
	EventType() string
}

// ItemAddedToCart is emitted when a user drops an item into their cart.
type ItemAddedToCart struct {
	CartID    string `json:"cart_id"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	ItemCount int    `json:"item_count"`
}

func (e ItemAddedToCart) EventType() string { return "ItemAddedToCart" }

// OrderPlaced is emitted when checkout turns a cart into the current order.
type OrderPlaced struct {
	CartID               string    `json:"cart_id"`
	OrderID              string    `json:"order_id"`
	Items                Cart      `json:"items"`
	TotalPrice           float64   `json:"total_price"`
	PlacedAt             time.Time `json:"placed_at"`
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }
