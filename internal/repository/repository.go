package repository

import (
	"context"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

// KVStore is the durable, string-keyed storage the cart and the current
// order live in. Get reports found=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ProductRepository mirrors the catalog into a database for other consumers.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// CartKey is where a scope's cart is stored.
func CartKey(scope string) string {
	return "cart:" + scope
}

// OrderKey is the single current-order slot of a scope.
func OrderKey(scope string) string {
	return "currentOrder:" + scope
}
