package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/AadiSharma49/Street-Food-Solution/internal/cron"
	"github.com/AadiSharma49/Street-Food-Solution/internal/grouporders"
	"github.com/AadiSharma49/Street-Food-Solution/internal/inventory"
	"github.com/AadiSharma49/Street-Food-Solution/internal/notifications"
	product "github.com/AadiSharma49/Street-Food-Solution/internal/products"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/instance"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/migrate"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]string{"env": cfg.App.Env, "instance_id": instance.GetID()},
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

	registry, err := buildRegistry(cfg, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "service_kind", cfg.Service.Kind)

	go func() {
		if err := metrics.Serve(ctx, cfg.Cron.MetricsAddr, prometheus.DefaultGatherer, logg); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*cron.Registry, error) {
	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	groupOrders, err := grouporders.NewService(grouporders.ServiceParams{
		Repo:     grouporders.NewRepository(conn),
		Tx:       dbClient,
		Products: product.NewRepository(conn),
		Outbox:   outboxService,
		Config:   cfg.GroupOrders,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:   inventory.NewRepository(conn),
		Tx:     dbClient,
		Outbox: outboxService,
		Config: cfg.Inventory,
		Logger: logg,
	})
	if err != nil {
		return nil, err
	}

	expiryJob, expErr := cron.NewGroupOrderExpiryJob(groupOrders)
	lowStockJob, lowErr := cron.NewLowStockAlertJob(inventoryService)
	retentionJob, retErr := cron.NewNotificationRetentionJob(cron.NotificationRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(conn),
		Retention:  cfg.Cron.NotificationRetentionDays,
	})
	outboxJob, outErr := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outbox.NewRepository(conn),
		Retention:  cfg.Outbox.RetentionDays,
		DLQ:        outbox.NewDLQRepository(conn),
	})
	if err := multierr.Combine(expErr, lowErr, retErr, outErr); err != nil {
		return nil, err
	}
	return cron.NewRegistry(expiryJob, lowStockJob, retentionJob, outboxJob), nil
}

// serveMetrics exposes the job counters for scraping; the port is optional.
