// main.go
package main

import (
	"context"
	"log"
	"time"

	"artisan-marketplace/cmd"
	"artisan-marketplace/internal/data/repository"
	"artisan-marketplace/internal/usecase"
	"artisan-marketplace/internal/wire"
	"artisan-marketplace/pkg/cache"
	"artisan-marketplace/pkg/database"
	"artisan-marketplace/pkg/events"
	"artisan-marketplace/pkg/metrics"
	"artisan-marketplace/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, logger); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Optional collaborators fall back to no-ops
	store := cache.NewNoop()
	if config.Redis.Addr != "" {
		if store, err = cache.NewRedis(config.Redis.Addr, config.Redis.Password, config.Redis.DB, logger); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}
	defer store.Close()

	publisher := events.NewNoop()
	if config.AMQP.URL != "" {
		if publisher, err = events.NewRabbitPublisher(config.AMQP.URL, config.AMQP.Exchange, logger); err != nil {
			logger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, config, usecase.Deps{
		Cache:     store,
		Publisher: publisher,
		Metrics:   metrics.New("artisan_marketplace"),
	}, logger)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go cmd.SessionJanitor(janitorCtx, time.Hour, repos.Session.CleanExpiredSessions, logger)

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
