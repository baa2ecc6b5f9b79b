package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/localdrop-backend/api/controllers"
	"github.com/angelmondragon/localdrop-backend/api/middleware"
	"github.com/angelmondragon/localdrop-backend/internal/catalog"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/deliverymen"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
	"github.com/angelmondragon/localdrop-backend/pkg/redis"
)

const pinLookupScope = "delivery-pin"

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	actors middleware.ActorLoader,
	deliveryService deliveries.Service,
	shopService shops.Service,
	catalogService catalog.Service,
	deliveryManService deliverymen.Service,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
		middleware.RateLimit(middleware.NewClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst), logg),
	)

	readiness := map[string]controllers.Pinger{"db": dbP}
	idem := func(next http.Handler) http.Handler { return next }
	pinLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		readiness["redis"] = redisClient
		idem = middleware.Idempotency(redisClient, cfg.RateLimit.IdempotencyTTL, logg)
		pinLimit = middleware.WindowLimit(pinLookupScope, redisClient, cfg.RateLimit.PinLookupLimit, cfg.RateLimit.PinLookupWindow, logg)
	}

	authed := middleware.Auth(cfg.JWT, actors, logg)
	optional := middleware.OptionalAuth(cfg.JWT, actors, logg)
	admin := middleware.RequireRole(logg, enums.UserRoleAdmin)
	owner := middleware.RequireRole(logg, enums.UserRoleShopOwner)
	ownerShop := middleware.RequireShop(logg)
	staff := middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleDeliveryMan)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.With(optional).Get("/api/public/ping", controllers.Ping())

	r.Route("/api/deliveries", func(r chi.Router) {
		r.With(optional, idem).Post("/", controllers.CreateDelivery(deliveryService, logg))
		r.With(optional).Get("/user", controllers.CustomerDeliveries(deliveryService, logg))
		r.With(pinLimit).Get("/pin/{pin}", controllers.DeliveryByPin(deliveryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Group(func(r chi.Router) {
				r.Use(owner, ownerShop)
				r.Get("/shop", controllers.ShopDeliveries(deliveryService, logg))
				r.Get("/pending", controllers.PendingDeliveries(deliveryService, logg))
				r.Put("/{id}/approve", controllers.ApproveDelivery(deliveryService, logg))
				r.Delete("/{id}/reject", controllers.RejectDelivery(deliveryService, logg))
			})

			r.With(middleware.RequireRole(logg, enums.UserRoleShopOwner, enums.UserRoleAdmin, enums.UserRoleDeliveryMan), idem).
				Put("/{id}/verify", controllers.VerifyDelivery(deliveryService, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(staff)
				r.Get("/pending", controllers.DeliveryQueue(deliveryService, enums.DeliveryStatusPending, logg))
				r.Get("/approved", controllers.DeliveryQueue(deliveryService, enums.DeliveryStatusApproved, logg))
				r.Put("/{id}/approve", controllers.ApproveDelivery(deliveryService, logg))
				r.Delete("/{id}/reject", controllers.RejectDelivery(deliveryService, logg))
			})
		})
	})

	r.Route("/api/shops", func(r chi.Router) {
		r.Get("/{id}", controllers.GetShop(shopService, logg))
		r.Get("/item/{id}", controllers.GetStorefront(shopService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.With(admin).Get("/pin/{shopPin}", controllers.GetShopByPin(shopService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleShopOwner, enums.UserRoleAdmin)).
				Put("/{id}/delivery-charge", controllers.UpdateDeliveryCharge(shopService, logg))
			r.With(owner).Put("/{id}/toggle-status", controllers.ToggleShopStatus(shopService, logg))
			r.With(owner).Put("/{id}/reset-stats", controllers.ResetShopStats(deliveryService, logg))
			r.With(admin).Put("/{id}", controllers.UpdateShop(shopService, logg))
			r.With(admin).Patch("/{id}/reset-deliveries", controllers.ResetShopDeliveries(shopService, logg))
		})
	})

	r.Route("/api/owners", func(r chi.Router) {
		r.Use(authed)
		r.With(idem).Post("/shop-ownership-request", controllers.RequestShopOwnership(shopService, logg))
		r.With(admin).Get("/shop-ownership-request", controllers.ListOwnershipRequests(shopService, logg))
		r.With(admin).Put("/approve-ownership/{id}", controllers.ApproveShopOwnership(shopService, logg))
		r.With(admin).Delete("/reject-ownership/{id}", controllers.RejectShopOwnership(shopService, logg))
	})

	r.Route("/api/food-items", func(r chi.Router) {
		r.Get("/", controllers.ShopsByLocalArea(shopService, logg))
		r.Get("/available", controllers.AvailableFoodItems(catalogService, logg))
		r.Get("/search", controllers.SearchFoodItemsByArea(catalogService, logg))
		r.Get("/shop/{id}", controllers.ShopFoodItems(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authed, owner)
			r.With(idem).Post("/", controllers.CreateFoodItem(catalogService, logg))
			r.Get("/shop", controllers.OwnerFoodItems(catalogService, logg))
			r.Put("/{id}", controllers.UpdateFoodItem(catalogService, logg))
			r.Put("/{id}/availability", controllers.SetFoodItemAvailability(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteFoodItem(catalogService, logg))
		})
	})

	r.Route("/api/delivery-man", func(r chi.Router) {
		r.Use(authed)
		r.With(idem).Post("/request", controllers.SubmitDeliveryManRequest(deliveryManService, logg))
		r.With(admin).Get("/requests", controllers.PendingDeliveryManRequests(deliveryManService, logg))
		r.With(admin).Put("/requests/{id}", controllers.DecideDeliveryManRequest(deliveryManService, logg))
		r.With(staff).Get("/{deliveryManId}", controllers.AssignedDeliveries(deliveryManService, logg))
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(authed)
		r.Get("/user-data", controllers.CurrentUser(userService, logg))
	})

	return r
}
