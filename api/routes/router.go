package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborgoods/storefront-backend/api/controllers"
	"github.com/harborgoods/storefront-backend/api/middleware"
	"github.com/harborgoods/storefront-backend/internal/cart"
	"github.com/harborgoods/storefront-backend/internal/catalog"
	"github.com/harborgoods/storefront-backend/internal/categories"
	"github.com/harborgoods/storefront-backend/internal/media"
	"github.com/harborgoods/storefront-backend/internal/shipping"
	"github.com/harborgoods/storefront-backend/internal/users"
	"github.com/harborgoods/storefront-backend/pkg/auth/session"
	"github.com/harborgoods/storefront-backend/pkg/config"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	"github.com/harborgoods/storefront-backend/pkg/logger"
	"github.com/harborgoods/storefront-backend/pkg/metrics"
)

type sessionManager interface {
	session.AccessSessionChecker
	Revoke(ctx context.Context, accessID string) error
}

// Params bundles everything the router wires together.
type Params struct {
	Config          *config.Config
	Logger          *logger.Logger
	SessionManager  sessionManager
	HealthChecks    map[string]controllers.Pinger
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	Users      users.Service
	Cart       cart.Service
	Catalog    catalog.Service
	Categories categories.Service
	Shipping   shipping.Service
	Media      media.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.HealthChecks))
	})

	if p.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(p.Users, logg))
		r.Post("/register", controllers.Register(p.Users, logg))
		r.Get("/check-valid", controllers.CheckValid(p.Users, logg))
		r.Get("/question", controllers.SelectQuestion(p.Users, logg))
		r.Post("/answer", controllers.CheckAnswer(p.Users, logg))
		r.Post("/reset-by-token", controllers.ForgetResetPassword(p.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))
			r.Post("/logout", controllers.Logout(p.SessionManager, logg))
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/children", controllers.CategoryChildren(p.Categories, logg))
		r.Get("/{id}/deep-children", controllers.CategoryDeepChildren(p.Categories, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.Catalog, p.Categories, logg))
		r.Get("/{id}", controllers.ProductDetail(p.Catalog, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Route("/api/v1/users", func(r chi.Router) {
			r.Get("/me", controllers.Me(p.Users, logg))
			r.Put("/me", controllers.UpdateMe(p.Users, logg))
			r.Post("/password", controllers.ResetPassword(p.Users, logg))
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(p.Cart, logg))
			r.Post("/", controllers.CartAdd(p.Cart, logg))
			r.Put("/", controllers.CartUpdate(p.Cart, logg))
			r.Post("/delete", controllers.CartDelete(p.Cart, logg))
			r.Post("/select", controllers.CartSelect(p.Cart, logg))
			r.Get("/count", controllers.CartCount(p.Cart, logg))
		})

		r.Route("/api/v1/shipping", func(r chi.Router) {
			r.Get("/", controllers.ShippingList(p.Shipping, logg))
			r.Post("/", controllers.ShippingAdd(p.Shipping, logg))
			r.Get("/{id}", controllers.ShippingGet(p.Shipping, logg))
			r.Put("/{id}", controllers.ShippingUpdate(p.Shipping, logg))
			r.Delete("/{id}", controllers.ShippingDelete(p.Shipping, logg))
		})

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.CategoryAdd(p.Categories, logg))
				r.Put("/{id}/name", controllers.CategoryRename(p.Categories, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(p.Catalog, logg))
				r.Put("/{id}", controllers.ProductUpdate(p.Catalog, logg))
			})

			r.Route("/media", func(r chi.Router) {
				r.Post("/upload", controllers.MediaUpload(p.Media, cfg.Upload, logg))
			})
		})
	})

	return r
}
