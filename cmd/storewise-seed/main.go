package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/storewise/storewise/internal/config"
	"github.com/storewise/storewise/internal/dataset"
	"github.com/storewise/storewise/internal/observability"
	s3store "github.com/storewise/storewise/internal/storage/s3"
)

func main() {
	seed := flag.Int64("seed", 42, "deterministic generator seed")
	users := flag.Int("users", 200, "number of users")
	products := flag.Int("products", 120, "number of products")
	orders := flag.Int("orders", 600, "number of orders")
	events := flag.Int("events", 2000, "number of browsing events")
	days := flag.Int("days", 365, "history window in days")
	start := flag.String("start", "", "history start date (YYYY-MM-DD, default 2023-01-01)")
	out := flag.String("out", "", "local directory for the parquet files (default: configured dataset dir)")
	upload := flag.Bool("upload", false, "upload the parquet files to the configured object store")
	flag.Parse()

	cfg, err := config.LoadFromEnv("storewise-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	genCfg := dataset.GeneratorConfig{
		Seed:     *seed,
		Users:    *users,
		Products: *products,
		Orders:   *orders,
		Events:   *events,
		Days:     *days,
	}
	if *start != "" {
		parsed, err := time.Parse("2006-01-02", *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start date: %v\n", err)
			os.Exit(1)
		}
		genCfg.Start = parsed.UTC()
	}

	generated := dataset.NewGenerator(genCfg).Generate()
	logger.Info("dataset generated",
		slog.Int("users", len(generated.Users)),
		slog.Int("products", len(generated.Products)),
		slog.Int("orders", len(generated.Orders)),
		slog.Int("order_items", len(generated.OrderItems)),
		slog.Int("inventory_items", len(generated.InventoryItems)),
		slog.Int("events", len(generated.Events)))

	dir := *out
	if dir == "" {
		dir = cfg.Dataset.LocalDir
	}
	if err := dataset.WriteLocal(dir, generated); err != nil {
		logger.Error("failed to write dataset", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("dataset written", slog.String("dir", dir))

	if !*upload {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := s3store.New(ctx, s3store.Config{
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

	objects, err := dataset.Upload(ctx, store, cfg.Dataset.RemotePrefix, generated)
	if err != nil {
		logger.Error("failed to upload dataset", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("dataset uploaded",
		slog.Int("objects", len(objects)),
		slog.String("prefix", cfg.Dataset.RemotePrefix))
}
