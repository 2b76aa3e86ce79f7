package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"catalog/infra/postgres"
	"catalog/infra/rabbitmq"
	"catalog/internal/consumers"
	"catalog/pkg/aws"
	"catalog/pkg/config"
	"catalog/pkg/events"
	"catalog/pkg/logger"
	"catalog/pkg/metrics"
)

func main() {
	appConfig := config.Read()
	if _, err := logger.New(appConfig.LogLevel, appConfig.Development()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zap.L().Sync()

	zap.L().Info("Catalog Worker Service starting...",
		zap.String("serviceName", appConfig.ServiceName),
		zap.Bool("imageReclaimEnabled", appConfig.ImageReclaimEnabled),
	)

	if appConfig.RabbitMQURL == "" {
		zap.L().Fatal("RABBITMQ_URL is required for worker service")
	}

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()

	reclaim := consumers.NewImageReclaimHandler(
		pgRepository.Items(),
		aws.NewS3Bucket(appConfig),
		appConfig.ImageReclaimEnabled,
	)

	consumer, err := rabbitmq.NewConsumer(appConfig.RabbitMQURL, rabbitmq.ConsumerConfig{
		Exchange:  events.CatalogExchange,
		QueueName: appConfig.ServiceName + ".image-reclaim.v1",
		RoutingKeys: []string{
			events.ItemImageReplacedEvent + "." + events.EventVersionV1,
			events.ItemImageOrphanedEvent + "." + events.EventVersionV1,
		},
		ServiceName:   appConfig.ServiceName,
		PrefetchCount: 10,
		Metrics:       metrics.New(),
	})
	if err != nil {
		zap.L().Fatal("Failed to create image consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		zap.L().Info("Starting image event consumer...")
		err := consumer.Consume(ctx, rabbitmq.Router{
			events.ItemImageReplacedEvent: reclaim.HandleEvent,
			events.ItemImageOrphanedEvent: reclaim.HandleEvent,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			zap.L().Error("Image consumer error", zap.Error(err))
			sigChan <- syscall.SIGTERM
		}
	}()

	go monitorPool(ctx, pgRepository)

	zap.L().Info("Worker service started successfully. Waiting for events...")

	<-sigChan
	zap.L().Info("Shutdown signal received, stopping worker service...")
	cancel()

	zap.L().Info("Worker service stopped gracefully")
}

func monitorPool(ctx context.Context, pgRepository *postgres.PgRepository) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := pgRepository.GetPoolStats()
			zap.L().Info("Connection pool stats",
				zap.Int("max_open", stats["max_open_connections"].(int)),
				zap.Int("open", stats["open_connections"].(int)),
				zap.Int("in_use", stats["in_use"].(int)),
				zap.Int("idle", stats["idle"].(int)),
				zap.Int64("wait_count", stats["wait_count"].(int64)),
				zap.Int64("wait_duration_ms", stats["wait_duration_ms"].(int64)),
			)
		}
	}
}
