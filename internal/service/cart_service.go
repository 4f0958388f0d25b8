package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/messaging"
	"github.com/Arsen1987144/joycity-marketplace/internal/metrics"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

// CartService owns the persisted cart of every cart scope.
//
// Each call is a read-modify-write of the whole cart. Concurrent writers on
// the same scope are last-writer-wins.
type CartService struct {
	store     repository.KVStore
	catalog   *catalog.Catalog
	publisher messaging.Publisher
	metrics   *metrics.Metrics
}

func NewCartService(store repository.KVStore, cat *catalog.Catalog, publisher messaging.Publisher, m *metrics.Metrics) *CartService {
	if publisher == nil {
		publisher = messaging.Discard
	}
	return &CartService{
		store:     store,
		catalog:   cat,
		publisher: publisher,
		metrics:   m,
	}
}

// GetCart returns the persisted cart, or an empty one if nothing is stored.
// Content that does not decode, or that breaks the cart rules, is discarded
// and the key reset.
func (s *CartService) GetCart(ctx context.Context, cartID string) (entity.Cart, error) {
	raw, found, err := s.store.Get(ctx, repository.CartKey(cartID))
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !found {
		return entity.Cart{}, nil
	}

	cart, err := decodeCart(raw)
	if err != nil {
		slog.Warn("Discarding malformed cart", "cart_id", cartID, "err", err)
		if err := s.store.Delete(ctx, repository.CartKey(cartID)); err != nil {
			slog.Error("Failed to reset malformed cart", "cart_id", cartID, "err", err)
		}
		return entity.Cart{}, nil
	}
	return cart, nil
}

func decodeCart(raw string) (entity.Cart, error) {
	var cart entity.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, err
	}
	if cart == nil {
		return entity.Cart{}, nil
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart adds quantity of a product and returns the new badge count.
// Quantities below 1 change nothing.
func (s *CartService) AddToCart(ctx context.Context, cartID string, productID, quantity int) (int, error) {
	if _, ok := s.catalog.FindByID(productID); !ok {
		return 0, fmt.Errorf("product %d: %w", productID, catalog.ErrProductNotFound)
	}

	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return 0, err
	}
	if !cart.Add(productID, quantity) {
		return cart.TotalItems(), nil
	}

	slog.Info("Service: Adding item to cart", "cart_id", cartID, "product_id", productID, "quantity", quantity)
	if err := s.saveCart(ctx, cartID, cart); err != nil {
		return 0, err
	}
	s.metrics.CartMutation("add")

	count := cart.TotalItems()
	event := entity.ItemAddedToCart{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		ItemCount: count,
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicCartItems, cartID, event); err != nil {
		slog.Error("Failed to publish ItemAddedToCart", "cart_id", cartID, "err", err)
	}
	return count, nil
}

// UpdateQuantity sets the quantity of an entry already in the cart.
// Quantities below 1 and products not in the cart change nothing.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID string, productID, quantity int) (entity.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(productID, quantity) {
		return cart, nil
	}

	slog.Info("Service: Updating cart quantity", "cart_id", cartID, "product_id", productID, "quantity", quantity)
	if err := s.saveCart(ctx, cartID, cart); err != nil {
		return nil, err
	}
	s.metrics.CartMutation("update")
	return cart, nil
}

// RemoveEntry drops the entry of productID from the cart.
func (s *CartService) RemoveEntry(ctx context.Context, cartID string, productID int) (entity.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return cart, nil
	}

	slog.Info("Service: Removing item from cart", "cart_id", cartID, "product_id", productID)
	if err := s.saveCart(ctx, cartID, cart); err != nil {
		return nil, err
	}
	s.metrics.CartMutation("remove")
	return cart, nil
}

// ClearCart deletes the persisted cart.
func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, repository.CartKey(cartID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.metrics.CartMutation("clear")
	return nil
}

// Lines joins the cart with the catalog for display.
func (s *CartService) Lines(cart entity.Cart) ([]entity.CartLine, float64) {
	return s.catalog.Lines(cart)
}

// TotalItemCount is the number shown on the cart badge.
func TotalItemCount(cart entity.Cart) int {
	return cart.TotalItems()
}

func (s *CartService) saveCart(ctx context.Context, cartID string, cart entity.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.store.Set(ctx, repository.CartKey(cartID), string(data)); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
