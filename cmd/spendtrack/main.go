package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendtrack/internal/amqp"
	"spendtrack/internal/cli"
	apphttp "spendtrack/internal/http"
	"spendtrack/internal/log"
	"spendtrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	st := cli.OpenStore(cfg, logger)
	defer st.Close()

	// Event publishing is optional; without a broker the tracker still works.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	creds := cli.OpenCredentials(cfg)
	ledger := services.NewLedgerService(st, publisher, logger)
	admin := services.NewAdminService(creds, st, logger)

	srv := apphttp.NewServer(cfg, creds, ledger, admin, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting spendtrack server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
