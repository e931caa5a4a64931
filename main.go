package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"premiumflow/config"
	"premiumflow/internal/api"
	"premiumflow/internal/nse"
	"premiumflow/internal/premium"
	"premiumflow/logger"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Premiumflow.Name,
		"version": cfg.Premiumflow.Version,
		"symbol":  cfg.Source.NSE.Symbol,
	}).Info("starting premiumflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace, cfg.Logging.DashboardName)
	}

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	client := nse.NewClient(cfg)
	resolver := premium.NewResolver(client)
	server := api.NewServer(cfg, resolver, client)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				log.WithError(err).Warn("api server exited with error")
			}
		case <-time.After(30 * time.Second):
			log.Warn("graceful shutdown timeout exceeded")
		}
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}

	log.Info("premiumflow stopped")
}
