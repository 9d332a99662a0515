package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AadiSharma49/Street-Food-Solution/api/routes"
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
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/migrate"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]string{"env": cfg.App.Env},
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	services, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":     addr,
		"instance": id,
	})

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Idempotency: redisClient,
		Limiter:     redisClient,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Metrics:     promhttp.Handler(),
	}, services)

	// No WriteTimeout: the realtime stream holds connections open.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shutting down gracefully")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, sessions *session.Manager) (routes.Services, error) {
	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)
	marketplaceMetrics := metrics.NewMarketplaceMetrics(prometheus.DefaultRegisterer)

	broker, err := realtime.NewBroker(redisClient, cfg.Realtime, logg)
	if err != nil {
		return routes.Services{}, err
	}

	accountRepo := accounts.NewRepository(conn)
	productRepo := product.NewRepository(conn)

	accountService, err := accounts.NewService(accountRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:       accountRepo,
		Registrar:      accountService,
		SessionManager: sessions,
		OTPStore:       auth.NewOTPStore(redisClient),
		Sender:         auth.NewLogSender(logg, !cfg.App.IsProd()),
		Limiter:        redisClient,
		JWTConfig:      cfg.JWT,
		OTPConfig:      cfg.OTP,
		RateLimit:      cfg.AuthRateLimit,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	productService, err := product.NewService(productRepo, logg)
	if err != nil {
		return routes.Services{}, err
	}

	groupOrderService, err := grouporders.NewService(grouporders.ServiceParams{
		Repo:     grouporders.NewRepository(conn),
		Tx:       dbClient,
		Products: productRepo,
		Outbox:   outboxService,
		Realtime: broker,
		Metrics:  marketplaceMetrics,
		Config:   cfg.GroupOrders,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:   inventory.NewRepository(conn),
		Tx:     dbClient,
		Outbox: outboxService,
		Config: cfg.Inventory,
		Logger: logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return routes.Services{}, err
	}
	cartService, err := cart.NewService(cartStore, productRepo, cfg.Cart.MaxLines)
	if err != nil {
		return routes.Services{}, err
	}

	orderRepo := orders.NewRepository(conn)
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Tx:       dbClient,
		Cart:     cartService,
		Products: productRepo,
		Accounts: accountRepo,
		Orders:   orderRepo,
		Outbox:   outboxService,
		Realtime: broker,
		Metrics:  marketplaceMetrics,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orderRepo,
		Tx:        dbClient,
		Outbox:    outboxService,
		Inventory: productRepo,
		Realtime:  broker,
		Metrics:   marketplaceMetrics,
		Logger:    logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(conn), broker, logg)
	if err != nil {
		return routes.Services{}, err
	}

	messageService, err := messages.NewService(messages.ServiceParams{
		Repo:     messages.NewRepository(conn),
		Tx:       dbClient,
		Accounts: accountRepo,
		Outbox:   outboxService,
		Realtime: broker,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Accounts:      accountService,
		Products:      productService,
		GroupOrders:   groupOrderService,
		Inventory:     inventoryService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        orderService,
		Notifications: notificationService,
		Messages:      messageService,
		Realtime:      broker,
	}, nil
}
