// Package catalog serves the static, read-only product dataset.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

//go:embed products.yaml
var productsYAML []byte

// ErrProductNotFound is returned when an id does not match any product.
var ErrProductNotFound = errors.New("product not found")

// Sort orders accepted by SortByPrice.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

const defaultIcon = "🛍️"

var categoryIcons = map[string]string{
	"Женщинам":        "👗",
	"Обувь":           "👟",
	"Детям":           "🧸",
	"Мужчинам":        "👕",
	"Электроника":     "📱",
	"Красота":         "💄",
	"Спорт":           "🏃",
	"Дом":             "🏠",
	"Игрушки":         "🧸",
	"Бытовая техника": "🔌",
	"Книги":           "📚",
	"Для ремонта":     "🔧",
}

// Catalog is an immutable list of products.
type Catalog struct {
	products []entity.Product
	byID     map[int]int
}

// Load parses the embedded dataset.
func Load() (*Catalog, error) {
	return Parse(productsYAML)
}

// Parse builds a catalog from a YAML list of products.
func Parse(data []byte) (*Catalog, error) {
	var products []entity.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(products)
}

// New validates products and builds a catalog over a private copy of them.
func New(products []entity.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]entity.Product, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %d has negative price %.2f", p.ID, p.Price)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// ListProducts returns every product in catalog order.
func (c *Catalog) ListProducts() []entity.Product {
	out := make([]entity.Product, len(c.products))
	copy(out, c.products)
	return out
}

// FindByID looks a product up by id.
func (c *Catalog) FindByID(id int) (entity.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return entity.Product{}, false
	}
	return c.products[i], true
}

// ListByCategory returns the products of one category. An empty category
// means the whole catalog.
func (c *Catalog) ListByCategory(category string) []entity.Product {
	if category == "" {
		return c.ListProducts()
	}
	var out []entity.Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in the order they first appear.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Featured returns the first n products.
func (c *Catalog) Featured(n int) []entity.Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	if n < 0 {
		n = 0
	}
	out := make([]entity.Product, n)
	copy(out, c.products[:n])
	return out
}

// Search matches query against names and descriptions, ignoring case.
func (c *Catalog) Search(query string) []entity.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.ListProducts()
	}
	fold := cases.Fold()
	needle := fold.String(query)

	var out []entity.Product
	for _, p := range c.products {
		if strings.Contains(fold.String(p.Name), needle) || strings.Contains(fold.String(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Lines joins cart entries with their products and sums the total.
// Entries whose product is no longer in the catalog are skipped.
func (c *Catalog) Lines(cart entity.Cart) ([]entity.CartLine, float64) {
	lines := make([]entity.CartLine, 0, len(cart))
	var total float64
	for _, entry := range cart {
		p, ok := c.FindByID(entry.ProductID)
		if !ok {
			continue
		}
		subtotal := p.Price * float64(entry.Quantity)
		lines = append(lines, entity.CartLine{Product: p, Quantity: entry.Quantity, Subtotal: subtotal})
		total += subtotal
	}
	return lines, total
}

// SortByPrice sorts products in place. Unknown orders leave them as they are.
func SortByPrice(products []entity.Product, order string) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	}
}

// CategoryIcon returns the emoji shown on a category card.
func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[category]; ok {
		return icon
	}
	return defaultIcon
}
