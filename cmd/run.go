package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"incoin/bot"
	"incoin/config"
	"incoin/database"
	"incoin/events"
	"incoin/infrastructure"
	"incoin/infrastructure/observability"
	"incoin/repository"
	"incoin/store"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)
	log.Info("Starting incoin bot...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	uowFactory := repository.NewUnitOfWorkFactory(db)
	stores := store.New(uowFactory, metrics)

	eventBus := events.NewBus()
	metrics.Attach(eventBus)

	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		mapper := infrastructure.NewEventSubjectMapper()
		if err := infrastructure.EnsureEconomyStream(natsClient, mapper); err != nil {
			return fmt.Errorf("failed to ensure economy stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(natsClient, mapper).Attach(eventBus)
		log.Info("Economy events are published to NATS")
	} else {
		log.Info("NATS_SERVERS not set, economy events stay in process")
	}

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{Token: cfg.DiscordToken}, stores, eventBus, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	discordBot.StartWorkers(ctx)
	bot.StartHealthAPI(ctx, cfg.HealthPort, stores)

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS client: %v", err)
		}
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down metrics: %v", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// configureLogging applies the configured level, using JSON output outside development
func configureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
