package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storewise/storewise/internal/api"
	"github.com/storewise/storewise/internal/auth"
	"github.com/storewise/storewise/internal/cache"
	"github.com/storewise/storewise/internal/config"
	"github.com/storewise/storewise/internal/dataset"
	"github.com/storewise/storewise/internal/export"
	"github.com/storewise/storewise/internal/gateway"
	"github.com/storewise/storewise/internal/observability"
	"github.com/storewise/storewise/internal/schema"
	"github.com/storewise/storewise/internal/sqlexec"
	duckdbexec "github.com/storewise/storewise/internal/sqlexec/duckdb"
	pgexec "github.com/storewise/storewise/internal/sqlexec/postgres"
	s3store "github.com/storewise/storewise/internal/storage/s3"
	"github.com/storewise/storewise/internal/workflow"
)

func main() {
	cfg, err := config.LoadFromEnv("storewise-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	gatewayClient, err := buildGateway(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize model gateway", slog.Any("error", err))
		os.Exit(1)
	}

	objectStore, err := s3store.New(context.Background(), s3store.Config{
		Endpoint:         cfg.ObjectStore.Endpoint,
		Region:           cfg.ObjectStore.Region,
		Bucket:           cfg.ObjectStore.Bucket,
		AccessKeyID:      cfg.ObjectStore.AccessKeyID,
		SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
		UseSSL:           cfg.ObjectStore.UseSSL,
		Prefix:           cfg.ObjectStore.Prefix,
		AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readiness := []api.ReadinessCheck{
		api.CheckWarehouseConfig(cfg),
		api.CheckObjectStoreConfig(cfg),
	}

	var executor sqlexec.Executor
	var provider schema.Provider
	switch cfg.Warehouse.Backend {
	case config.WarehouseDuckDB:
		syncer := &dataset.Sync{
			Store:        objectStore,
			RemotePrefix: cfg.Dataset.RemotePrefix,
			LocalDir:     cfg.Dataset.LocalDir,
			Logger:       logger,
		}
		syncCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		if _, err := syncer.RunOnce(syncCtx); err != nil {
			cancel()
			logger.Error("initial dataset sync failed", slog.Any("error", err))
			os.Exit(1)
		}
		cancel()

		refresher := &dataset.Refresher{
			Sync:     syncer,
			Interval: cfg.Dataset.RefreshInterval,
			Logger:   logger,
		}
		go refresher.Run(ctx)

		executor = duckdbexec.NewExecutor(cfg.Dataset.LocalDir, cfg.Workflow.RowLimit, cfg.Warehouse.StatementTimeout)
		provider = schema.NewStaticProvider()
	case config.WarehousePostgres:
		warehouseDB, err := pgexec.Open(context.Background(), pgexec.DBConfig{
			DSN:             cfg.Warehouse.DSN,
			MaxOpenConns:    cfg.Warehouse.MaxOpenConns,
			MaxIdleConns:    cfg.Warehouse.MaxIdleConns,
			ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to open warehouse db", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = warehouseDB.Close() }()
		readiness = append(readiness, warehouseDB.PingContext)

		executor = pgexec.NewExecutor(warehouseDB, cfg.Workflow.RowLimit, cfg.Warehouse.StatementTimeout)
		provider = schema.NewSQLProvider(warehouseDB, "public", schema.DefaultCatalog())
	}

	engine := &workflow.Engine{
		Gateway:  gatewayClient,
		Executor: executor,
		Schema:   provider,
		Config: workflow.Config{
			MaxRetries:   cfg.Workflow.MaxRetries,
			RowSampleCap: cfg.Workflow.SampleRows,
			Greeting:     cfg.Workflow.Greeting,
		},
		Logger: logger,
	}

	deps := api.Dependencies{
		Logger:            logger,
		Engine:            engine,
		Schema:            provider,
		Exporter:          &export.ParquetExporter{Store: objectStore, Logger: logger},
		Readiness:         api.CombineReadinessChecks(readiness...),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("warehouse", cfg.Warehouse.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

// buildGateway wires the OpenAI-compatible client and, when the cache is
// enabled, the redis layer that short-circuits repeat guardrail and
// generation calls.
func buildGateway(cfg config.Config, logger *slog.Logger) (gateway.Client, error) {
	client, err := gateway.NewOpenAIClient(gateway.OpenAIConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		APIKey:      cfg.Gateway.APIKey,
		Model:       cfg.Gateway.Model,
		Temperature: cfg.Gateway.Temperature,
		Timeout:     cfg.Gateway.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if !cfg.Cache.Enabled {
		return client, nil
	}

	redisCache, err := cache.NewRedis(cache.RedisConfig{
		Addr:      cfg.Cache.Addr,
		Password:  cfg.Cache.Password,
		DB:        cfg.Cache.DB,
		KeyPrefix: cfg.Cache.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("gateway response cache enabled", slog.String("addr", cfg.Cache.Addr))
	return gateway.NewCachingClient(client, redisCache, cfg.Cache.TTL), nil
}
