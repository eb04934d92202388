package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"asociados/internal/amqp"
	"asociados/internal/config"
	gexport "asociados/internal/export/google"
	mgexport "asociados/internal/export/mailgun"
	apphttp "asociados/internal/http"
	applog "asociados/internal/log"
	"asociados/internal/services"
	"asociados/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     parseLevel(cfg.LogLevel),
		Component: "asociados",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without it, roster changes are still persisted and
	// the reporting engine infers movements from the records themselves.
	var publisher services.MovementPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, movement events will not be published", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	memberService := services.NewMemberService(repo, publisher)
	liquidationService := services.NewLiquidationService(repo, cfg.ReportCacheTTL)

	if cfg.GoogleSpreadsheetID != "" {
		sheets, err := gexport.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		liquidationService.RegisterExporter("sheets", sheets)
		logger.Info("Google Sheets exporter registered", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}
	if cfg.MailgunDomain != "" {
		mg := mgexport.New(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunRecipient)
		liquidationService.RegisterExporter("email", mg)
		logger.Info("Mailgun exporter registered", "domain", cfg.MailgunDomain)
	}

	srv := apphttp.NewServer(":"+cfg.Port, memberService, liquidationService, repo, logger,
		cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting asociados server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
