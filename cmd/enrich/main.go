// Package main enriches tracked products with detail-page data and
// review samples from the Canopy API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"serp-market-lab/internal/canopy"
	"serp-market-lab/internal/config"
	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/enrich"
	"serp-market-lab/internal/rollup"
	"serp-market-lab/internal/storage/migrations"
	pgstore "serp-market-lab/internal/storage/postgres"
)

func main() {
	asinsFlag := flag.String("asins", "", "Comma-separated ASINs to enrich (default: every tracked product)")
	marketplace := flag.String("marketplace", "", "Marketplace code (default: MARKETPLACE env or US)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.ValidateCollector(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if err := cfg.ValidateStorage(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	if *marketplace == "" {
		*marketplace = cfg.Marketplace
	}

	ctx := context.Background()
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	stores := pgstore.NewStores(pool)

	products, err := resolveProducts(ctx, stores.Products.GetAll, stores.Products.GetByASIN, *asinsFlag)
	if err != nil {
		logger.Fatal("resolve products", zap.Error(err))
	}
	if len(products) == 0 {
		fmt.Println("No products to enrich.")
		return
	}

	clientOpts := []canopy.Option{canopy.WithLogger(logger)}
	if cfg.CanopyBaseURL != "" {
		clientOpts = append(clientOpts, canopy.WithBaseURL(cfg.CanopyBaseURL))
	}
	client := canopy.NewClient(cfg.CanopyAPIKey, clientOpts...)

	calc := rollup.New(stores.Products, stores.Sellers, rollup.WithLogger(logger))
	enricher := enrich.New(stores.Products, stores.Reviews, calc, enrich.WithLogger(logger))

	enriched, failed := 0, 0
	for _, product := range products {
		payload, err := client.FetchEnrichment(ctx, product.ASIN, *marketplace)
		if err != nil {
			logger.Error("enrichment fetch failed",
				zap.String("asin", product.ASIN),
				zap.Error(err))
			failed++
			continue
		}
		if err := enricher.Enrich(ctx, product, payload, *marketplace); err != nil {
			logger.Error("enrichment apply failed",
				zap.String("asin", product.ASIN),
				zap.Error(err))
			failed++
			continue
		}
		enriched++
	}

	fmt.Printf("Enrichment completed: %d enriched, %d failed of %d products\n",
		enriched, failed, len(products))
	if failed > 0 {
		os.Exit(1)
	}
}

func resolveProducts(
	ctx context.Context,
	getAll func(context.Context) ([]*domain.Product, error),
	getByASIN func(context.Context, string) (*domain.Product, error),
	flagValue string,
) ([]*domain.Product, error) {
	if flagValue == "" {
		return getAll(ctx)
	}

	var products []*domain.Product
	for _, asin := range strings.Split(flagValue, ",") {
		asin = strings.TrimSpace(asin)
		if asin == "" {
			continue
		}
		product, err := getByASIN(ctx, asin)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", asin, err)
		}
		products = append(products, product)
	}
	return products, nil
}
