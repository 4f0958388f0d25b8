package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// CartResponse is the JSON view of a cart.
type CartResponse struct {
	Items     entity.Cart       `json:"items"`
	Lines     []entity.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

// AddToCartRequest is the body of POST /api/cart/items.
type AddToCartRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// UpdateQuantityRequest is the body of PATCH /api/cart/items/{id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PlaceOrderResponse reports the outcome of POST /api/orders.
type PlaceOrderResponse struct {
	Placed bool          `json:"placed"`
	Order  *entity.Order `json:"order,omitempty"`
}

// OrderResponse is the current order with its derived tracking state.
type OrderResponse struct {
	Order     entity.Order          `json:"order"`
	Steps     []entity.TrackingStep `json:"steps"`
	Countdown entity.Countdown      `json:"countdown"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("API request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handler) cartResponse(cart entity.Cart) CartResponse {
	lines, total := h.carts.Lines(cart)
	if lines == nil {
		lines = []entity.CartLine{}
	}
	return CartResponse{
		Items:     cart,
		Lines:     lines,
		Total:     total,
		ItemCount: service.TotalItemCount(cart),
	}
}

func (h *Handler) apiListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.filterProducts(q.Get("category"), strings.TrimSpace(q.Get("q")), q.Get("sort"))
	if products == nil {
		products = []entity.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) apiGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	product, found := h.catalog.FindByID(id)
	if !ok || !found {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) apiGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), ScopeFromContext(r.Context()))
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *Handler) apiAddToCart(w http.ResponseWriter, r *http.Request) {
	req := AddToCartRequest{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := ScopeFromContext(r.Context())
	_, err := h.carts.AddToCart(r.Context(), scope, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
		return
	case err != nil:
		h.apiError(w, r, err)
		return
	}

	cart, err := h.carts.GetCart(r.Context(), scope)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *Handler) apiUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), ScopeFromContext(r.Context()), id, req.Quantity)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *Handler) apiRemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	cart, err := h.carts.RemoveEntry(r.Context(), ScopeFromContext(r.Context()), id)
	if err != nil {
		h.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartResponse(cart))
}

func (h *Handler) apiClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), ScopeFromContext(r.Context())); err != nil {
		h.apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apiPlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, placed, err := h.orders.PlaceOrder(r.Context(), ScopeFromContext(r.Context()))
	if err != nil && !placed {
		h.apiError(w, r, err)
		return
	}
	if err != nil {
		slog.Error("Order placed with stale cart", "cart_id", ScopeFromContext(r.Context()), "err", err)
	}
	if !placed {
		writeJSON(w, http.StatusOK, PlaceOrderResponse{Placed: false})
		return
	}
	writeJSON(w, http.StatusCreated, PlaceOrderResponse{Placed: true, Order: &order})
}

func (h *Handler) apiCurrentOrder(w http.ResponseWriter, r *http.Request) {
	order, found, err := h.tracking.LoadCurrentOrder(r.Context(), ScopeFromContext(r.Context()))
	if err != nil && !errors.Is(err, service.ErrMalformedOrder) {
		h.apiError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{
		Order:     order,
		Steps:     h.tracking.DeriveSteps(order),
		Countdown: h.tracking.RemainingTime(order),
	})
}
