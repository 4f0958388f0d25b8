package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "products", "product", "cart", "checkout", "tracking", "notfound", "error"}

// templateFuncs renders dates as calendar days in loc.
func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"price": entity.FormatPrice,
		"icon":  catalog.CategoryIcon,
		"date": func(t time.Time) string {
			return t.In(loc).Format("02.01.2006")
		},
	}
}

// parsePages builds one template set per page, each sharing the layout.
func parsePages(loc *time.Location) (map[string]*template.Template, error) {
	funcs := templateFuncs(loc)
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// page is the data every template receives.
type page struct {
	Title     string
	Page      string
	CartCount int

	Categories []string
	Category   string
	Query      string
	Sort       string
	Products   []entity.Product
	Product    entity.Product

	Lines []entity.CartLine
	Total float64

	Order     *entity.Order
	Steps     []entity.TrackingStep
	Countdown entity.Countdown

	Message string
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data page) {
	tmpl, ok := h.pages[name]
	if !ok {
		slog.Error("Unknown page template", "page", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data.Page = name
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Failed to render page", "page", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "page", name, "err", err)
	}
}
