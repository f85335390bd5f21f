package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/koliko-eats/koliko-orders-service/internal/clients"
	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/events"
	"github.com/koliko-eats/koliko-orders-service/internal/handlers"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/matching"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
	"github.com/koliko-eats/koliko-orders-service/internal/repository"
	"github.com/koliko-eats/koliko-orders-service/internal/server"
	"github.com/koliko-eats/koliko-orders-service/internal/service"
	"github.com/koliko-eats/koliko-orders-service/internal/tariff"
)

func main() {
	// Missing .env is fine in containers; env vars come from the runtime.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger("orders-service")

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	reg := metrics.NewRegistry()

	catalog := repository.NewCachedCatalogRepository(
		repository.NewPostgresCatalogRepository(db, logger),
		cfg.Redis,
	)
	defer catalog.Close()

	directory := repository.NewPostgresRestaurantDirectory(db, logger)

	customerClient := clients.NewHTTPCustomerClient(cfg.CustomerService, logger)
	loyaltyClient := clients.NewHTTPLoyaltyClient(cfg.LoyaltyService, logger)
	tariffClient := clients.NewHTTPTariffClient(cfg.TariffProvider, logger)

	publisher := events.NewKafkaPublisher(cfg.Kafka)
	defer publisher.Close()

	orderService := service.NewOrderService(
		catalog,
		matching.NewMatcher(directory),
		tariff.NewCalculator(tariffClient, cfg.TariffProvider.Timeout, reg),
		customerClient,
		loyaltyClient,
		publisher,
		reg,
		cfg,
	)

	h := handlers.NewHandlers(orderService)
	srv := server.New(h, reg, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{"port": cfg.Server.Port})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited", nil)
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
