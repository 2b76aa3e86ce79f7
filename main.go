package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"catalog/app/catalog"
	"catalog/infra/cache"
	"catalog/infra/postgres"
	"catalog/infra/rabbitmq"
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
	zap.L().Info("app starting...",
		zap.String("service", appConfig.ServiceName),
		zap.String("env", appConfig.AppEnv))

	m := metrics.New()

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()
	if appConfig.MigrateOnStart {
		if err := pgRepository.Migrate(); err != nil {
			zap.L().Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	checks := map[string]pinger{"postgres": pgRepository}

	var itemRepository catalog.ItemRepository = pgRepository.Items()
	if appConfig.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(appConfig.RedisURL)
		if err != nil {
			zap.L().Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		itemRepository = cache.NewItemRepository(itemRepository, redisClient, appConfig.ItemCacheTTL, m)
		checks["redis"] = redisPinger{redisClient}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.RabbitMQURL != "" {
		rabbitPublisher, err := rabbitmq.NewPublisher(appConfig.RabbitMQURL, appConfig.ServiceName)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
	} else {
		zap.L().Warn("RABBITMQ_URL not set, domain events are dropped")
	}

	opts := []catalog.Option{
		catalog.WithPublisher(publisher),
		catalog.WithMetrics(m),
		catalog.WithServiceName(appConfig.ServiceName),
	}
	categoryRepository := pgRepository.Categories()
	itemService := catalog.NewItemService(itemRepository, categoryRepository, aws.NewS3Bucket(appConfig), opts...)
	categoryService := catalog.NewCategoryService(categoryRepository, opts...)

	app := newApp(dependencies{
		items:         itemService,
		categories:    categoryService,
		metrics:       m,
		checks:        checks,
		maxImageBytes: appConfig.ImageMaxBytes,
	})

	go func() {
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", appConfig.Port)); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	zap.L().Info("Server started on port", zap.String("port", appConfig.Port))

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}
