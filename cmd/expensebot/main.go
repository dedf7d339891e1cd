package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"expensebot/internal/amqp"
	"expensebot/internal/backend"
	"expensebot/internal/bot"
	"expensebot/internal/config"
	apphttp "expensebot/internal/http"
	applog "expensebot/internal/log"
	"expensebot/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	logger.Info("Starting expensebot")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize store", applog.FieldError, err.Error(),
			applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", applog.FieldError, err.Error())
			}
		}()
	}

	// AMQP is optional: without it entries are still recorded, only the
	// spreadsheet mirror goes stale.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without mirror",
				applog.FieldError, err.Error())
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedger(result.Store, publisher, cfg.DefaultBudget, cfg.SplitConcurrency)

	if cfg.HealthAddr != "" {
		ready := func(ctx context.Context) error {
			_, err := result.Store.TotalSpent(ctx, 0)
			return err
		}
		opsSrv := apphttp.NewServer(cfg.HealthAddr, cfg.DataBackend, ready)
		go func() {
			logger.Info("Starting ops server", "addr", cfg.HealthAddr)
			if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Ops server error", applog.FieldError, err.Error())
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := opsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Ops server shutdown error", applog.FieldError, err.Error())
			}
		}()
	}

	b, err := bot.New(cfg.BotToken, ledger, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", applog.FieldError, err.Error())
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := b.Run(ctx); err != nil {
		logger.Error("Bot stopped with error", applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Bot stopped gracefully")
}
