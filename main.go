package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"foodtasker/internal/app"
	"foodtasker/internal/cache"
	"foodtasker/internal/config"
	"foodtasker/internal/database"
	"foodtasker/internal/services"
	"foodtasker/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	deps := app.Dependencies{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		CacheTTL:  cfg.CatalogCacheTTL,
	}

	// Order events are optional; without a broker orders are still placed.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set, order events will not be published.")
	}
	deps.Publisher = publisher

	if cfg.RedisAddr != "" {
		deps.Cache = cache.NewRedisCache(cfg.RedisAddr, "foodtasker")
		log.Printf("Catalog cache enabled at %s (ttl %s)", cfg.RedisAddr, cfg.CatalogCacheTTL)
	}

	server := app.New(deps)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
