package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pubdash/classifier/internal/api"
	"github.com/pubdash/classifier/internal/bootstrap"
	"github.com/pubdash/classifier/internal/config"
	"github.com/pubdash/classifier/internal/logging"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.Must(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = logger.Sync() }()

	logger.Info("starting classifier HTTP server",
		logging.String("service", cfg.Service.Name),
		logging.String("version", cfg.Service.Version),
		logging.Int("port", cfg.Service.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	comps, err := bootstrap.Setup(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("setup failed", logging.Error(err))
	}
	defer comps.Close()

	handler := api.NewHandler(
		comps.Classifier,
		comps.Batch,
		comps.RuleStore,
		comps.AuditLog,
		comps.Indexer,
		comps.Telemetry,
		logger,
	)
	server := api.NewServer(handler, api.ServerConfig{
		Port:         cfg.Service.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Debug:        cfg.Service.Debug,
	}, comps.Telemetry, logger)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatal("server error", logging.Error(err))
	case sig := <-shutdown:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Fatal("graceful shutdown failed", logging.Error(err))
		}
		logger.Info("server stopped")
	}
}
