package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/api"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/discovery"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/order"
	"github.com/example/storefront/pkg/payment"
	"github.com/example/storefront/pkg/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := newLogger(&cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront API",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx := context.Background()
	if err := mongoRepo.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	var cache catalog.Cache
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, continuing without catalog cache", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
		cache = redisRepo
	}

	// AMQP
	var publisher events.Publisher
	publisher, err = events.NewAMQPPublisher(&cfg.AMQP)
	if err != nil {
		logger.Warn("AMQP connection failed, order events disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	}
	defer publisher.Close()

	// Repositories and services
	productRepo := repository.NewProductRepository(mongoRepo)
	categoryRepo := repository.NewCategoryRepository(mongoRepo)
	orderRepo := repository.NewOrderRepository(mongoRepo)
	userRepo := repository.NewUserRepository(mongoRepo)

	tokens := auth.NewTokenManager(&cfg.Auth)
	catalogSvc := catalog.NewService(productRepo, categoryRepo, cache, logger)
	orderSvc := order.NewService(orderRepo, productRepo, userRepo, mongoRepo, publisher, logger)
	accountSvc := auth.NewService(userRepo, tokens)
	gateway := payment.NewSandboxGateway(&cfg.Payment)

	// HTTP server
	server := api.NewServer(cfg, logger, tokens, catalogSvc, orderSvc, accountSvc, gateway)
	server.SetupRoutes()

	// Register instance in etcd; the server runs fine without it.
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		sd = nil
	}
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if sd != nil {
		if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd", zap.String("address", cfg.Server.Addr()))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			return context.Canceled
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Server error", zap.Error(err))
	}

	if sd != nil {
		if err := sd.Deregister(ctx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	redisRepo.Close()
	if err := mongoRepo.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("Service stopped")
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Encoding != "" {
		zcfg.Encoding = cfg.Encoding
	}
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
