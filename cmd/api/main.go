package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/config"
	"github.com/chandraa-ads/sthree-backend/internal/database"
	"github.com/chandraa-ads/sthree-backend/internal/export"
	"github.com/chandraa-ads/sthree-backend/internal/handler"
	"github.com/chandraa-ads/sthree-backend/internal/notification"
	"github.com/chandraa-ads/sthree-backend/internal/reminder"
	"github.com/chandraa-ads/sthree-backend/internal/repository"
	"github.com/chandraa-ads/sthree-backend/internal/router"
	"github.com/chandraa-ads/sthree-backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting sthree API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Initialize the email template loader with S3 and local fallback
	fileLoader := notification.NewFileTemplateLoader(cfg.Templates.LocalDir, logger)
	var templateLoader notification.TemplateLoader

	if cfg.Templates.S3Enabled {
		s3Loader, err := notification.NewS3TemplateLoader(ctx, cfg.Templates.Bucket, cfg.Templates.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 template loader, falling back to local file system only")
			templateLoader = fileLoader
		} else {
			templateLoader = notification.NewFallbackTemplateLoader(s3Loader, fileLoader, cfg.Templates.Prefix, true, logger)
		}
	} else {
		templateLoader = fileLoader
		logger.Info().Msg("using local file system for email templates (S3 disabled)")
	}

	// Assemble the notifier stack: log always, email and Kafka when enabled
	notifiers := []notification.Notifier{notification.NewLogNotifier(logger)}
	if cfg.SMTP.Enabled {
		notifiers = append(notifiers, notification.NewEmailNotifier(cfg.SMTP, templateLoader, logger))
	}
	if cfg.Kafka.Enabled {
		notifiers = append(notifiers, notification.NewEventNotifier(cfg.Kafka.Brokers, logger))
	}
	notifier := notification.NewMultiNotifier(notifiers...)
	defer notifier.Close()

	// Initialize services
	exporter := export.NewOrderExporter(logger)
	catalogService := service.NewCatalogService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, notifier, exporter, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, orderHandler, cfg.Auth.AdminAPIKey, logger)

	// Start the pending-order reminder job when enabled
	if cfg.Reminder.Enabled {
		job := reminder.NewJob(
			orderRepo,
			userRepo,
			notifier,
			time.Duration(cfg.Reminder.PendingHours)*time.Hour,
			logger,
		)
		if err := job.Start(cfg.Reminder.Schedule); err != nil {
			return fmt.Errorf("failed to start reminder job: %w", err)
		}
		defer job.Stop()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
