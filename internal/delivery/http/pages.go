package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

const featuredCount = 4

// basePage loads the badge count shared by every page.
func (h *Handler) basePage(r *http.Request, title string) (page, error) {
	cart, err := h.carts.GetCart(r.Context(), ScopeFromContext(r.Context()))
	if err != nil {
		return page{}, err
	}
	return page{Title: title, CartCount: service.TotalItemCount(cart)}, nil
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	h.render(w, http.StatusInternalServerError, "error", page{Title: "Ошибка"})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, message string) {
	data, err := h.basePage(r, "Не найдено")
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data.Message = message
	h.render(w, http.StatusNotFound, "notfound", data)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	data, err := h.basePage(r, "Главная")
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data.Categories = h.catalog.Categories()
	data.Products = h.catalog.Featured(featuredCount)
	h.render(w, http.StatusOK, "home", data)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	data, err := h.basePage(r, "Каталог")
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	q := r.URL.Query()
	data.Category = q.Get("category")
	data.Query = strings.TrimSpace(q.Get("q"))
	data.Sort = q.Get("sort")
	data.Products = h.filterProducts(data.Category, data.Query, data.Sort)
	h.render(w, http.StatusOK, "products", data)
}

// filterProducts applies the category, search and sort parameters of the
// product list.
func (h *Handler) filterProducts(category, query, sortOrder string) []entity.Product {
	var products []entity.Product
	if query != "" {
		for _, p := range h.catalog.Search(query) {
			if category == "" || p.Category == category {
				products = append(products, p)
			}
		}
	} else {
		products = h.catalog.ListByCategory(category)
	}
	catalog.SortByPrice(products, sortOrder)
	return products
}

func (h *Handler) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	product, found := h.catalog.FindByID(id)
	if !ok || !found {
		h.notFound(w, r, "Товар не найден.")
		return
	}

	data, err := h.basePage(r, product.Name)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data.Product = product
	h.render(w, http.StatusOK, "product", data)
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), ScopeFromContext(r.Context()))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := page{Title: "Корзина", CartCount: service.TotalItemCount(cart)}
	data.Lines, data.Total = h.carts.Lines(cart)
	h.render(w, http.StatusOK, "cart", data)
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID, err := strconv.Atoi(r.PostForm.Get("product_id"))
	if err != nil {
		h.notFound(w, r, "Товар не найден.")
		return
	}
	quantity := formQuantity(r, 1)

	_, err = h.carts.AddToCart(r.Context(), ScopeFromContext(r.Context()), productID, quantity)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		h.notFound(w, r, "Товар не найден.")
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, localRedirect(r.PostForm.Get("redirect"), "/cart"), http.StatusSeeOther)
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, "Товар не найден.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if _, err := h.carts.UpdateQuantity(r.Context(), ScopeFromContext(r.Context()), id, formQuantity(r, 0)); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, "Товар не найден.")
		return
	}

	if _, err := h.carts.RemoveEntry(r.Context(), ScopeFromContext(r.Context()), id); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), ScopeFromContext(r.Context()))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(cart) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	data := page{Title: "Оформление заказа", CartCount: service.TotalItemCount(cart)}
	data.Lines, data.Total = h.carts.Lines(cart)
	h.render(w, http.StatusOK, "checkout", data)
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	_, placed, err := h.orders.PlaceOrder(r.Context(), ScopeFromContext(r.Context()))
	if err != nil && !placed {
		h.serverError(w, r, err)
		return
	}
	if err != nil {
		// The order exists; only the cart could not be cleared.
		slog.Error("Order placed with stale cart", "cart_id", ScopeFromContext(r.Context()), "err", err)
	}
	if !placed {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/order-tracking", http.StatusSeeOther)
}

func (h *Handler) handleTracking(w http.ResponseWriter, r *http.Request) {
	data, err := h.basePage(r, "Отслеживание заказа")
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	order, found, err := h.tracking.LoadCurrentOrder(r.Context(), ScopeFromContext(r.Context()))
	switch {
	case errors.Is(err, service.ErrMalformedOrder):
		slog.Warn("Ignoring malformed current order", "cart_id", ScopeFromContext(r.Context()), "err", err)
	case err != nil:
		h.serverError(w, r, err)
		return
	case found:
		data.Order = &order
		data.Steps = h.tracking.DeriveSteps(order)
		data.Countdown = h.tracking.RemainingTime(order)
	}
	h.render(w, http.StatusOK, "tracking", data)
}

// formQuantity reads the quantity field, falling back to def when the
// field is absent or not a number.
func formQuantity(r *http.Request, def int) int {
	raw := r.PostForm.Get("quantity")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// localRedirect only follows same-site paths. Browsers read a backslash as a
// slash, so any target containing one is refused.
func localRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	return target
}
