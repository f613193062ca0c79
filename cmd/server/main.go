package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v3"
	"golang.org/x/time/rate"

	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/application/service"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/api"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/cache"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/config"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/db"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/handler"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/logger"
	"github.com/lindatu1978-hash/pharmooworld-sub001/internal/infrastructure/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, cfg.LogLevel())
	logger.SetDefaultLogger(log)

	log.Info("Starting BTC price feed service", map[string]interface{}{
		"addr":          cfg.Server.Addr,
		"poll_interval": cfg.PriceFeed.PollInterval.String(),
		"asset":         cfg.PriceFeed.Asset,
		"currency":      cfg.PriceFeed.Currency,
	})

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
		log.Fatal("Failed to create database directory", map[string]interface{}{
			"path":  cfg.Storage.Path,
			"error": err.Error(),
		})
	}

	badgerDB, err := badger.Open(badger.DefaultOptions(cfg.Storage.Path).WithLogger(nil))
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"path":  cfg.Storage.Path,
			"error": err.Error(),
		})
	}

	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	m := metrics.New()

	// Initialize the price source and feed
	client := api.NewCoinGeckoClient(
		&http.Client{Timeout: cfg.PriceFeed.RequestTimeout},
		api.WithBaseURL(cfg.PriceFeed.URL),
		api.WithAsset(cfg.PriceFeed.Asset, cfg.PriceFeed.Currency),
		api.WithMaxRetries(cfg.PriceFeed.MaxRetries),
		api.WithLogger(log.WithField("component", "coingecko")),
	)

	feed := cache.NewPriceFeedCache(client,
		cache.WithInterval(cfg.PriceFeed.PollInterval),
		cache.WithLogger(log.WithField("component", "price_feed")),
		cache.WithRefreshHook(m.ObserveRefresh),
	)

	// Initialize services and handlers
	quoteRepo := db.NewBadgerPaymentQuoteRepository(badgerDB)
	paymentService := service.NewPaymentService(quoteRepo, feed, cfg.PaymentDetails(), log)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RefreshPerSecond), cfg.RateLimit.Burst)
	router := handler.NewRouter(
		handler.NewPriceHandler(feed, limiter, log),
		handler.NewPaymentHandler(paymentService, log),
		m,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed.Start(ctx)
	defer feed.Stop()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": cfg.Server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped", nil)
}
