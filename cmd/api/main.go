package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mechanix/shop-reports/internal/cache"
	"github.com/mechanix/shop-reports/internal/config"
	"github.com/mechanix/shop-reports/internal/messaging/kafka"
	"github.com/mechanix/shop-reports/internal/platform/database/mongodb"
	"github.com/mechanix/shop-reports/internal/platform/database/postgres"
	"github.com/mechanix/shop-reports/internal/platform/database/redis"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
	"github.com/mechanix/shop-reports/internal/platform/observability/metrics"
	"github.com/mechanix/shop-reports/internal/platform/observability/tracing"
	mongoRepo "github.com/mechanix/shop-reports/internal/repository/mongodb"
	postgresRepo "github.com/mechanix/shop-reports/internal/repository/postgres"
	"github.com/mechanix/shop-reports/internal/service"
	"github.com/mechanix/shop-reports/internal/transport/http"
	"github.com/mechanix/shop-reports/internal/transport/http/handlers"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewServiceLogger(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion, cfg.Observability.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info(ctx, "Starting report API service", map[string]interface{}{
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

	redisConn, err := redis.NewConnection(cfg.Cache, logger)
	if err != nil {
		logger.Error(ctx, "Failed to connect to Redis", err)
		os.Exit(1)
	}
	defer redisConn.Close()

	producer, err := kafka.NewReportRequestProducer(cfg.Producer, logger, m)
	if err != nil {
		logger.Error(ctx, "Failed to create Kafka producer", err)
		os.Exit(1)
	}
	defer producer.Close()

	admin := kafka.NewAdmin(cfg.Brokers, logger)
	if err := admin.EnsureTopic(ctx); err != nil {
		logger.Error(ctx, "Failed to ensure Kafka topic", err)
		os.Exit(1)
	}

	orderRepo := postgresRepo.NewOrderRepository(dbConn.DB, logger)
	reportRepo := mongoRepo.NewReportRepository(mongoConn, logger)
	reportCache := cache.NewReportCache(redisConn, cfg.CacheTTL, logger, m)

	queryService := service.NewReportQueryService(orderRepo, reportRepo, reportCache, logger)
	requestService := service.NewReportRequestService(producer, logger)

	reportHandler := handlers.NewReportHandler(queryService, requestService, logger)
	healthHandler := http.NewHealthHandler(http.HealthChecks{
		Redis:       redisConn.HealthCheck,
		Database:    dbConn.HealthCheck,
		ReportStore: mongoConn.HealthCheck,
		Broker:      admin.HealthCheck,
		Aggregator:  admin.ConsumerGroupActive,
	}, logger)

	httpServer := http.NewServer(cfg, reportHandler, healthHandler, tracer, logger, m, dbConn.GetStats)

	var wg sync.WaitGroup
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Start(ctx); err != nil {
			logger.Error(ctx, "HTTP server failed", err)
		}
	}()

	logger.Info(ctx, "Report API service started", map[string]interface{}{
		"http_address": fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		"brokers":      cfg.Brokers,
	})

	<-shutdownCh
	logger.Info(ctx, "Shutdown signal received, stopping service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Failed to stop HTTP server", err)
	}

	cancel()
	wg.Wait()

	logger.Info(shutdownCtx, "Report API service stopped")
}
