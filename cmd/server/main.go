package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/api"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/database"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/export"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/logging"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/notify"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/quote"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/service"
)

// defaultHoldings is the portfolio adopted when nothing usable is stored.
var defaultHoldings = []model.Holding{}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // nothing left to report to
	zap.ReplaceGlobals(logger)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("path", cfg.Database.Path))

	// Create repositories
	stateRepo := repository.NewStateRepository(db)
	holdingRepo := repository.NewHoldingRepository(stateRepo, logger.Named("storage"))
	alertRepo := repository.NewAlertRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(holdingRepo, logger.Named("portfolio"), time.Local)
	portfolioService.Initialize(defaultHoldings)
	alertService := service.NewAlertService(alertRepo)
	exportService := service.NewExportService(
		portfolioService,
		export.NewPDFRenderer("Investment Portfolio"),
		cfg.Export.Dir,
		logger.Named("export"),
	)

	notifiers := notify.Multi{
		notify.NewLogNotifier(logger.Named("alerts")),
		notify.NewHistoryNotifier(alertRepo, logger.Named("alerts")),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Named("kafka"))
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
		logger.Info("Publishing target alerts to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// Without a usable quote provider the portfolio is still served, only prices stay as entered.
	var refreshService *service.RefreshService
	provider, err := quote.NewProvider(cfg.Quote)
	if err != nil {
		logger.Warn("Price refresh disabled", zap.String("provider", cfg.Quote.Provider), zap.Error(err))
	} else {
		refreshService = service.NewRefreshService(
			portfolioService,
			provider,
			notifiers,
			logger.Named("refresh"),
			cfg.Refresh.Interval,
			cfg.Quote.Concurrency,
		)
		if cfg.Refresh.Enabled {
			if err := refreshService.Start(); err != nil {
				logger.Fatal("Failed to start price refresh", zap.Error(err))
			}
		}
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Portfolio: portfolioService,
		Refresh:   refreshService,
		Export:    exportService,
		Alert:     alertService,
	}, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // refresh and export run inside the request
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if refreshService != nil {
		refreshService.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited")
}
