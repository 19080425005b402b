package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/deliverycharges"
	"github.com/angelmondragon/storefront-backend/internal/favourites"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/internal/utm"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	cartService cart.Service,
	ordersService orders.Service,
	deliveryService deliverycharges.Service,
	reviewService reviews.Service,
	favouriteService favourites.Service,
	utmService utm.Service,
	categoryService categories.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	readiness := map[string]controllers.Pinger{}
	if dbP != nil {
		readiness["db"] = dbP
	}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readiness["redis"] = redisClient
		if cfg.FeatureFlags.Idempotency {
			idempotencyStore = redisClient
		}
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	pricing := cfg.Pricing

	// public catalog and tracking reads
	r.Group(func(r chi.Router) {
		r.Get("/product", controllers.ListProducts(productService, pricing, logg))
		r.Get("/product/{productId}", controllers.GetProduct(productService, logg))
		r.Get("/product/dicounted-products/{productId}", controllers.ListDiscountTiers(productService, logg))
		r.Get("/categories", controllers.ListCategories(categoryService, pricing, logg))
		r.Get("/categories/{id}", controllers.GetCategory(categoryService, logg))
		r.Get("/cities", controllers.ListCities(deliveryService, logg))
		r.Get("/reviews", controllers.ListReviews(reviewService, pricing, logg))
		r.Get("/utm/track", controllers.TrackUTM(utmService, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, pricing.IdempotencyTTL, logg))

		// registered flat so Idempotency sees the full route pattern
		r.Post("/cart/add", controllers.CartAddItem(cartService, logg))
		r.Put("/cart/update", controllers.CartUpdateItem(cartService, logg))
		r.Delete("/cart/delete", controllers.CartRemoveItem(cartService, logg))
		r.Get("/cart/items", controllers.CartItems(cartService, logg))

		r.Post("/orders", controllers.PlaceOrder(ordersService, logg))
		r.Get("/orders", controllers.ListOrders(ordersService, pricing, logg))
		r.Delete("/orders/{orderId}", controllers.CancelOrder(ordersService, logg))

		r.Get("/delivery-charges/product/{productId}", controllers.GetDeliveryCharges(deliveryService, logg))

		r.Post("/reviews", controllers.CreateReview(reviewService, logg))

		r.Route("/favourites", func(r chi.Router) {
			r.Post("/", controllers.AddFavourite(favouriteService, logg))
			r.Get("/", controllers.ListFavourites(favouriteService, pricing, logg))
			r.Delete("/{productId}", controllers.RemoveFavourite(favouriteService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

			r.Post("/product", controllers.CreateProduct(productService, logg))
			r.Post("/product/addDiscountTiers", controllers.AddDiscountTiers(productService, logg))
			r.Delete("/product/remove/{productId}/{discountTierId}", controllers.RemoveDiscountTier(productService, logg))
			r.Post("/quotation", controllers.Quotation(productService, logg))

			r.Post("/categories", controllers.CreateCategory(categoryService, logg))
			r.Put("/categories/{id}", controllers.UpdateCategory(categoryService, logg))
			r.Patch("/categories/{id}/status", controllers.UpdateCategoryStatus(categoryService, logg))
			r.Delete("/categories/{id}", controllers.DeleteCategory(categoryService, logg))

			r.Put("/orders/{orderId}/verify-payment", controllers.VerifyPayment(ordersService, logg))

			r.Post("/cities", controllers.CreateCity(deliveryService, logg))
			r.Post("/delivery-charges/product", controllers.UpsertDeliveryCharge(deliveryService, logg))
			r.Delete("/delivery-charges/{id}", controllers.DeleteDeliveryCharge(deliveryService, logg))

			r.Put("/reviews/{id}/status", controllers.UpdateReviewStatus(reviewService, logg))

			r.Post("/utm", controllers.CreateUTMLink(utmService, logg))
			r.Get("/utm", controllers.ListUTMLinks(utmService, pricing, logg))
			r.Patch("/utm/{id}/status", controllers.UpdateUTMStatus(utmService, logg))
		})
	})

	return r
}
