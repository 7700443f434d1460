package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mechanix/shop-reports/internal/config"
	"github.com/mechanix/shop-reports/internal/messaging/kafka"
	"github.com/mechanix/shop-reports/internal/platform/database/mongodb"
	"github.com/mechanix/shop-reports/internal/platform/database/postgres"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
	"github.com/mechanix/shop-reports/internal/platform/observability/tracing"
	mongoRepo "github.com/mechanix/shop-reports/internal/repository/mongodb"
	postgresRepo "github.com/mechanix/shop-reports/internal/repository/postgres"
	"github.com/mechanix/shop-reports/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadAggregator()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewServiceLogger(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion, cfg.Observability.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info(ctx, "Starting report aggregator service", map[string]interface{}{
		"service": cfg.Observability.ServiceName,
		"version": cfg.Observability.ServiceVersion,
	})

	m, err := metrics.NewMetrics(cfg.Observability.ServiceName)
	if err != nil {
		logger.Error(ctx, "Failed to create metrics", err)
		os.Exit(1)
	}

	tracer, err := tracing.NewTracer(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion, cfg.Observability.OTELEndpoint)
	if err != nil {
		logger.Error(ctx, "Failed to create tracer", err)
		os.Exit(1)
	}
	defer tracer.Close()

	dbConn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	mongoConn, err := mongodb.NewConnection(cfg.ReportStore, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to report store", err)
		os.Exit(1)
	}
	defer mongoConn.Close()

	admin := kafka.NewAdmin(cfg.Brokers, logger)
	if err := admin.EnsureTopic(ctx); err != nil {
		logger.Error(ctx, "Failed to ensure Kafka topic", err)
		os.Exit(1)
	}

	orderRepo := postgresRepo.NewOrderRepository(dbConn.DB, logger)
	reportRepo := mongoRepo.NewReportRepository(mongoConn, logger)
	generateService := service.NewGenerateReportService(orderRepo, reportRepo, logger)

	dispatcher := kafka.NewDispatcher(generateService, logger, m)
	consumer, err := kafka.NewReportRequestConsumer(cfg.Consumer, dispatcher, logger, m)
	if err != nil {
		logger.Error(ctx, "Failed to create Kafka consumer", err)
		os.Exit(1)
	}

	if err := consumer.Start(ctx); err != nil {
		logger.Error(ctx, "Failed to start Kafka consumer", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Report aggregator service started", map[string]interface{}{
		"brokers":  cfg.Brokers,
		"group_id": cfg.Consumer.GroupID,
	})

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	<-shutdownCh

	logger.Info(ctx, "Shutdown signal received, stopping service")

	if err := consumer.Stop(); err != nil {
		logger.Error(ctx, "Failed to stop Kafka consumer", err)
	}
	cancel()

	logger.Info(ctx, "Report aggregator service stopped")
}
