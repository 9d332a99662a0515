package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AadiSharma49/Street-Food-Solution/api/controllers"
	"github.com/AadiSharma49/Street-Food-Solution/api/middleware"
	"github.com/AadiSharma49/Street-Food-Solution/internal/accounts"
	"github.com/AadiSharma49/Street-Food-Solution/internal/auth"
	"github.com/AadiSharma49/Street-Food-Solution/internal/cart"
	"github.com/AadiSharma49/Street-Food-Solution/internal/checkout"
	"github.com/AadiSharma49/Street-Food-Solution/internal/grouporders"
	"github.com/AadiSharma49/Street-Food-Solution/internal/inventory"
	"github.com/AadiSharma49/Street-Food-Solution/internal/messages"
	"github.com/AadiSharma49/Street-Food-Solution/internal/notifications"
	"github.com/AadiSharma49/Street-Food-Solution/internal/orders"
	product "github.com/AadiSharma49/Street-Food-Solution/internal/products"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/auth/session"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
	pkgredis "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth          auth.Service
	Accounts      accounts.Service
	Products      product.Service
	GroupOrders   grouporders.Service
	Inventory     inventory.Service
	Cart          cart.Service
	Checkout      checkout.Service
	Orders        orders.Service
	Notifications notifications.Service
	Messages      messages.Service
	Realtime      realtime.Subscriber
}

// Dependencies are the infrastructure pieces the middleware stack needs.
// Nil stores disable the matching middleware.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Sessions    session.AccessSessionChecker
	Idempotency pkgredis.IdempotencyStore
	Limiter     middleware.RateLimiterStore
	HTTPMetrics *metrics.HTTPMetrics
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	vendorOnly := middleware.RequireAccountType(enums.AccountTypeVendor, logg)
	supplierOnly := middleware.RequireAccountType(enums.AccountTypeSupplier, logg)
	authn := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	idempotency := middleware.Idempotency(deps.Idempotency, logg)
	apiPolicy := middleware.NewRateLimitPolicy("api", cfg.APIRateLimit.Window, cfg.APIRateLimit.IPLimit, cfg.APIRateLimit.AccountLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/otp/send", controllers.AuthSendOTP(svc.Auth, logg))
		r.Post("/otp/verify", controllers.AuthVerifyOTP(svc.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(idempotency).Post("/register", controllers.AuthRegister(svc.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
		r.With(authn).Post("/logout", controllers.AuthLogout(svc.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authn)
		r.Use(middleware.RateLimit(apiPolicy, deps.Limiter, logg))
		r.Use(idempotency)

		r.Get("/realtime/stream", controllers.RealtimeStream(svc.Realtime, cfg.Realtime.Heartbeat, logg))

		r.Route("/accounts/me", func(r chi.Router) {
			r.Get("/", controllers.GetMyProfile(svc.Accounts, logg))
			r.Patch("/", controllers.UpdateMyProfile(svc.Accounts, logg))
		})
		r.Get("/suppliers", controllers.ListSuppliers(svc.Accounts, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Products, logg))
			r.Get("/compare", controllers.CompareProductPrices(svc.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(svc.Products, logg))
			r.With(supplierOnly).Post("/", controllers.CreateProduct(svc.Products, logg))
			r.With(supplierOnly).Patch("/{productID}", controllers.UpdateProduct(svc.Products, logg))
			r.With(supplierOnly).Delete("/{productID}", controllers.DeleteProduct(svc.Products, logg))
		})

		r.Route("/group-orders", func(r chi.Router) {
			r.Get("/", controllers.ListGroupOrders(svc.GroupOrders, logg))
			r.Get("/{groupOrderID}", controllers.GetGroupOrder(svc.GroupOrders, logg))
			r.With(supplierOnly).Post("/", controllers.CreateGroupOrder(svc.GroupOrders, logg))
			r.With(supplierOnly).Post("/{groupOrderID}/cancel", controllers.CancelGroupOrder(svc.GroupOrders, logg))
			r.With(vendorOnly).Post("/{groupOrderID}/join", controllers.JoinGroupOrder(svc.GroupOrders, logg))
			r.With(vendorOnly).Get("/{groupOrderID}/savings", controllers.GroupOrderSavings(svc.GroupOrders, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(vendorOnly)
			r.Get("/", controllers.ListInventory(svc.Inventory, logg))
			r.Post("/", controllers.CreateInventoryItem(svc.Inventory, logg))
			r.Get("/summary", controllers.InventorySummary(svc.Inventory, logg))
			r.Get("/alerts", controllers.InventoryAlerts(svc.Inventory, logg))
			r.Get("/{itemID}", controllers.GetInventoryItem(svc.Inventory, logg))
			r.Patch("/{itemID}", controllers.UpdateInventoryItem(svc.Inventory, logg))
			r.Delete("/{itemID}", controllers.DeleteInventoryItem(svc.Inventory, logg))
			r.Post("/{itemID}/restock", controllers.RestockInventoryItem(svc.Inventory, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(vendorOnly)
			r.Get("/", controllers.GetCart(svc.Cart, logg))
			r.Delete("/", controllers.ClearCart(svc.Cart, logg))
			r.Post("/items", controllers.AddCartItem(svc.Cart, logg))
			r.Put("/items/{productID}", controllers.SetCartItemQuantity(svc.Cart, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(svc.Cart, logg))
		})
		r.With(vendorOnly).Post("/checkout", controllers.Checkout(svc.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svc.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svc.Orders, logg))
			r.Post("/{orderID}/status", controllers.UpdateOrderStatus(svc.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.ListConversations(svc.Messages, logg))
			r.Post("/", controllers.SendMessage(svc.Messages, logg))
			r.Get("/{partnerID}", controllers.GetConversation(svc.Messages, logg))
		})
	})

	return r
}
