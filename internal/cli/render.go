package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

const dateLayout = "02.01.2006"

func formatDate(t time.Time) string {
	return t.Local().Format(dateLayout)
}

func writeProducts(w io.Writer, products []entity.Product) {
	for _, p := range products {
		fmt.Fprintf(w, "[%d] %s · %s · %s\n", p.ID, p.Name, p.Category, entity.FormatPrice(p.Price))
	}
	fmt.Fprintf(w, "Найдено товаров: %d\n", len(products))
}

func writeProduct(w io.Writer, p entity.Product) {
	fmt.Fprintf(w, "[%d] %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "Категория: %s %s\n", catalog.CategoryIcon(p.Category), p.Category)
	fmt.Fprintf(w, "Цена: %s\n", entity.FormatPrice(p.Price))
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
}

func writeCategories(w io.Writer, categories []string) {
	for _, c := range categories {
		fmt.Fprintf(w, "%s %s\n", catalog.CategoryIcon(c), c)
	}
}

func writeCart(w io.Writer, view CartView) {
	if len(view.Lines) == 0 {
		fmt.Fprintln(w, "Ваша корзина пуста.")
		return
	}
	for _, l := range view.Lines {
		fmt.Fprintf(w, "[%d] %s × %d = %s\n", l.Product.ID, l.Product.Name, l.Quantity, entity.FormatPrice(l.Subtotal))
	}
	fmt.Fprintf(w, "Товаров: %d\n", view.ItemCount)
	fmt.Fprintf(w, "Итого: %s\n", entity.FormatPrice(view.Total))
}

func writeOrderHeader(w io.Writer, order entity.Order) {
	fmt.Fprintf(w, "Номер заказа: %s\n", order.ID)
	fmt.Fprintf(w, "Дата заказа: %s\n", formatDate(order.OrderDate))
	fmt.Fprintf(w, "Ожидаемая дата доставки: %s\n", formatDate(order.ExpectedDeliveryDate))
}

func writeSteps(w io.Writer, steps []entity.TrackingStep) {
	for _, s := range steps {
		icon := "⏳"
		if s.Completed {
			icon = "✔️"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", icon, s.Name, formatDate(s.Date))
	}
}

func writeTracking(w io.Writer, view TrackingView) {
	writeOrderHeader(w, view.Order)
	fmt.Fprintln(w)
	writeSteps(w, view.Steps)
	fmt.Fprintln(w)
	fmt.Fprintln(w, view.Countdown.String())
}
