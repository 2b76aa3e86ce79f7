package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"catalog/app/catalog"
	"catalog/infra/grpc"
	"catalog/infra/postgres"
	"catalog/pkg/aws"
	"catalog/pkg/config"
	"catalog/pkg/logger"
)

func main() {
	appConfig := config.Read()
	if _, err := logger.New(appConfig.LogLevel, appConfig.Development()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zap.L().Sync()

	zap.L().Info("Catalog gRPC Service starting...")

	grpcServer, err := grpc.NewServer(appConfig)
	if err != nil {
		zap.L().Fatal("failed to create grpc server", zap.Error(err))
	}

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()

	itemService := catalog.NewItemService(
		pgRepository.Items(),
		pgRepository.Categories(),
		aws.NewS3Bucket(appConfig),
		catalog.WithServiceName(appConfig.ServiceName),
	)
	grpcServer.RegisterCatalog(grpc.NewCatalogServiceServer(itemService))

	zap.L().Info("starting gRPC server...", zap.String("port", appConfig.GRPCPort))
	go func() {
		if err := grpcServer.Start(); err != nil {
			zap.L().Error("failed to start grpc server", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(grpcServer)
}

func gracefulShutdown(grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	grpcServer.GracefulStop()

	zap.L().Info("Server gracefully stopped")
}
