// Package handler implements the storefront JSON API on top of the domain
// services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/brosmart/internal/domain/checkout"
	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/internal/domain/storefront"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// AdminPassword unlocks the admin endpoints via X-Admin-Password.
	AdminPassword string
}

// Deps are the stores and services the API delegates to.
type Deps struct {
	Products   product.Repository
	Coupons    coupon.Repository
	Content    content.Repository
	Resolver   *coupon.Resolver
	Orders     *order.Service
	Checkout   *checkout.Service
	Storefront *storefront.Service
}

// Handler serves the /api routes.
type Handler struct {
	products   product.Repository
	coupons    coupon.Repository
	content    content.Repository
	resolver   *coupon.Resolver
	orders     *order.Service
	checkout   *checkout.Service
	storefront *storefront.Service

	adminPassword []byte
}

// New constructs a Handler.
func New(cfg Config, deps Deps) *Handler {
	return &Handler{
		products:      deps.Products,
		coupons:       deps.Coupons,
		content:       deps.Content,
		resolver:      deps.Resolver,
		orders:        deps.Orders,
		checkout:      deps.Checkout,
		storefront:    deps.Storefront,
		adminPassword: []byte(cfg.AdminPassword),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.Data)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/slides", h.ListSlides)
		r.Get("/features", h.ListFeatures)
		r.Get("/content", h.GetContent)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders/track/{tracking}", h.TrackOrder)
		r.Post("/coupons/validate", h.ValidateCoupon)
		r.Post("/admin/login", h.Login)

		r.Route("/cart/{session}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productId}", h.SetCartQuantity)
			r.Post("/coupon", h.ApplyCartCoupon)
			r.Delete("/coupon", h.ClearCartCoupon)
			r.Post("/checkout", h.Checkout)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.AdminGate)

			r.Get("/admin/stats", h.Stats)

			r.Get("/orders", h.ListOrders)
			r.Put("/orders/{id}/shipped", h.MarkShipped)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Get("/coupons", h.ListCoupons)
			r.Post("/coupons", h.CreateCoupon)
			r.Delete("/coupons/{id}", h.DeleteCoupon)

			r.Post("/slides", h.CreateSlide)
			r.Delete("/slides/{id}", h.DeleteSlide)

			r.Post("/features", h.CreateFeature)
			r.Put("/features/{id}", h.UpdateFeature)
			r.Delete("/features/{id}", h.DeleteFeature)

			r.Put("/content", h.UpdateContent)
		})
	})

	return r
}
