package http

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/metrics"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// DefaultCookieName is the cookie that carries the cart scope.
const DefaultCookieName = "joycity_cart"

const cookieMaxAge = 365 * 24 * 60 * 60

// Handler handles HTTP requests for the storefront.
type Handler struct {
	catalog  *catalog.Catalog
	carts    *service.CartService
	orders   *service.OrderService
	tracking *service.TrackingService
	metrics  *metrics.Metrics

	cookieName   string
	allowOrigins string
	pages        map[string]*template.Template
}

// Options configures the handler beyond its services.
type Options struct {
	CookieName   string
	AllowOrigins string
	// Location is the time zone order dates are shown in. Defaults to time.Local.
	Location *time.Location
}

func NewHandler(
	cat *catalog.Catalog,
	carts *service.CartService,
	orders *service.OrderService,
	tracking *service.TrackingService,
	m *metrics.Metrics,
	opts Options,
) (*Handler, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	pages, err := parsePages(opts.Location)
	if err != nil {
		return nil, err
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.AllowOrigins == "" {
		opts.AllowOrigins = "*"
	}
	return &Handler{
		catalog:      cat,
		carts:        carts,
		orders:       orders,
		tracking:     tracking,
		metrics:      m,
		cookieName:   opts.CookieName,
		allowOrigins: opts.AllowOrigins,
		pages:        pages,
	}, nil
}

// Routes returns the full storefront router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)
	r.Use(EnableCORS(h.allowOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			slog.Debug("Failed to write health response", "err", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.withScope)

		r.Get("/", h.handleHome)
		r.Get("/products", h.handleProducts)
		r.Get("/products/{id}", h.handleProduct)
		r.Get("/cart", h.handleCart)
		r.Post("/cart/items", h.handleAddToCart)
		r.Post("/cart/items/{id}", h.handleUpdateQuantity)
		r.Post("/cart/items/{id}/delete", h.handleRemoveEntry)
		r.Get("/checkout", h.handleCheckout)
		r.Post("/checkout", h.handlePlaceOrder)
		r.Get("/order-tracking", h.handleTracking)

		r.Route("/api", func(r chi.Router) {
			r.Get("/products", h.apiListProducts)
			r.Get("/products/{id}", h.apiGetProduct)
			r.Get("/cart", h.apiGetCart)
			r.Post("/cart/items", h.apiAddToCart)
			r.Patch("/cart/items/{id}", h.apiUpdateQuantity)
			r.Delete("/cart/items/{id}", h.apiRemoveEntry)
			r.Delete("/cart", h.apiClearCart)
			r.Post("/orders", h.apiPlaceOrder)
			r.Get("/orders/current", h.apiCurrentOrder)
			r.Get("/orders/current/countdown", h.streamCountdown)
		})
	})

	r.NotFound(h.withScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.notFound(w, r, "Такой страницы нет.")
	})).ServeHTTP)

	return r
}

type scopeKey struct{}

// ScopeFromContext returns the cart scope set by the scope middleware.
func ScopeFromContext(ctx context.Context) string {
	scope, _ := ctx.Value(scopeKey{}).(string)
	return scope
}

// withScope resolves the cart scope from the cookie, issuing a new one on
// the first visit or when the cookie is not a valid UUID.
func (h *Handler) withScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var scope string
		if c, err := r.Cookie(h.cookieName); err == nil {
			if id, err := uuid.Parse(c.Value); err == nil {
				scope = id.String()
			}
		}
		if scope == "" {
			scope = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     h.cookieName,
				Value:    scope,
				Path:     "/",
				MaxAge:   cookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			slog.Debug("Issued cart scope", "cart_id", scope)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope)))
	})
}

// instrument records request counts and latency per route pattern.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveRequest(route, strconv.Itoa(status), float64(time.Since(start).Microseconds())/1000)
	})
}

// EnableCORS allows browser clients on other origins to call the JSON API.
func EnableCORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}
