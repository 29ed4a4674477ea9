// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/account"
	"github.com/berkelium/storefront/internal/domain/cart"
	"github.com/berkelium/storefront/internal/domain/catalog"
	"github.com/berkelium/storefront/internal/domain/checkout"
	"github.com/berkelium/storefront/internal/domain/fulfillment"
	"github.com/berkelium/storefront/internal/domain/order"
	"github.com/berkelium/storefront/internal/domain/payment"
	"github.com/berkelium/storefront/internal/infrastructure/commerce"
	"github.com/berkelium/storefront/internal/infrastructure/database/postgres"
	"github.com/berkelium/storefront/internal/infrastructure/database/redis"
	"github.com/berkelium/storefront/internal/infrastructure/events"
	"github.com/berkelium/storefront/internal/interfaces/http"
	"github.com/berkelium/storefront/internal/interfaces/http/handlers"
	"github.com/berkelium/storefront/internal/interfaces/http/routes"
	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/berkelium/storefront/internal/pkg/httpclient"
	"github.com/berkelium/storefront/internal/pkg/logger"
	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/berkelium/storefront/internal/pkg/pdf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Discard().Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("starting %s", cfg.App.Name)

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	commerceHTTP := httpclient.New(httpclient.Options{
		Name:    "commerce",
		Timeout: cfg.Commerce.RequestTimeout,
		Logger:  log,
		Metrics: m,
	})
	printfulHTTP := httpclient.New(httpclient.Options{
		Name:    "printful",
		Timeout: cfg.Fulfillment.RequestTimeout,
		Logger:  log,
		Metrics: m,
	})
	commerceClient := commerce.NewClient(cfg, commerceHTTP)

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer publisher.Close()

	jwtManager := auth.NewJWTManager(cfg)

	cartService := cart.NewService(commerceClient, log)
	checkoutService := checkout.NewService(
		cfg,
		cartService,
		commerceClient,
		checkout.NewRedisSessionStore(redisClient, cfg.Checkout.SessionTTL),
		payment.NewVerifier(cfg.Payment.SecretKey, log),
		publisher,
		m,
		log,
	)
	catalogService := catalog.NewService(commerceClient, redisClient, log)
	accountService := account.NewService(cfg, commerceClient, redisClient, jwtManager, log)
	orderService := order.NewService(commerceClient, log)
	fulfillmentService := fulfillment.NewService(
		fulfillment.NewPrintfulProvider(cfg, printfulHTTP, log),
		fulfillment.NewRepository(db.GetDB()),
		publisher,
		m,
		log,
	)

	server := http.NewServer(http.Options{
		Config: cfg,
		Logger: log,
		Handlers: &routes.Handlers{
			Cart:        handlers.NewCartHandler(cartService, cfg),
			Checkout:    handlers.NewCheckoutHandler(checkoutService, cfg),
			Fulfillment: handlers.NewFulfillmentHandler(fulfillmentService, log),
			Product:     handlers.NewProductHandler(catalogService),
			Auth:        handlers.NewAuthHandler(accountService),
			Order:       handlers.NewOrderHandler(orderService, pdf.NewService(cfg)),
		},
		JWTManager:  jwtManager,
		RedisClient: redisClient.GetClient(),
		Metrics:     m,
		Gatherer:    registry,
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shutdown HTTP server gracefully")
	}

	log.Info("server shutdown completed")
}
