package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/amqp"
	"spendtrack/internal/cli"
	"spendtrack/internal/log"
	"spendtrack/internal/sheets"
	"spendtrack/internal/sheets/google"
	"spendtrack/internal/sheets/memory"
	"spendtrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appender sheets.RowAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		// Keeps the worker runnable locally; rows go nowhere durable.
		appender = memory.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID provided, mirroring to memory only")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMirrorWorker(appender, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting mirror worker", "queue", cfg.AMQPQueue)
		err := client.Consume(ctx, w.HandleMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
