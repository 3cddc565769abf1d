package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/storage"
)

// Exporter writes the BI datasets to a directory.
type Exporter struct {
	stores     *storage.Stores
	exportPath string
	now        func() time.Time
	logger     *zap.Logger
}

// ExporterOptions for creating an Exporter.
type ExporterOptions struct {
	Stores     *storage.Stores
	ExportPath string
	Clock      func() time.Time
	Logger     *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(opts ExporterOptions) *Exporter {
	e := &Exporter{
		stores:     opts.Stores,
		exportPath: opts.ExportPath,
		now:        opts.Clock,
		logger:     opts.Logger,
	}
	if e.exportPath == "" {
		e.exportPath = "./exports"
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// ExportResult counts the rows written per dataset.
type ExportResult struct {
	Keywords        int
	Products        int
	PricePoints     int
	DailyAggregates int
}

// ExportAll writes the keyword, product, price trend, and daily
// aggregate datasets covering the last daysBack days.
func (e *Exporter) ExportAll(ctx context.Context, daysBack int) (*ExportResult, error) {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	cutoff := e.now().UTC().AddDate(0, 0, -daysBack)
	result := &ExportResult{}

	keywords, err := e.stores.Keywords.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	if err := e.writeFile("keywords.csv", RenderKeywordsCSV(keywords)); err != nil {
		return nil, err
	}
	result.Keywords = len(keywords)

	products, err := e.stores.Products.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if err := e.writeFile("products.csv", RenderProductsCSV(products)); err != nil {
		return nil, err
	}
	result.Products = len(products)

	prices, err := e.stores.PriceHistory.GetSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	if err := e.writeFile("price_trends.csv", RenderPriceTrendsCSV(prices)); err != nil {
		return nil, err
	}
	result.PricePoints = len(prices)

	metrics, err := e.stores.DailyMetrics.GetSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load daily metrics: %w", err)
	}
	rows := make([]*DailyAggregateRow, 0, len(metrics))
	keywordText := make(map[int64]string, len(keywords))
	for _, k := range keywords {
		keywordText[k.ID] = k.Text
	}
	for _, m := range metrics {
		rows = append(rows, &DailyAggregateRow{Keyword: keywordText[m.KeywordID], Metric: m})
	}
	if err := e.writeFile("daily_aggregates.csv", RenderDailyAggregatesCSV(rows)); err != nil {
		return nil, err
	}
	result.DailyAggregates = len(rows)

	e.logger.Info("export finished",
		zap.String("path", e.exportPath),
		zap.Int("keywords", result.Keywords),
		zap.Int("products", result.Products),
		zap.Int("price_points", result.PricePoints),
		zap.Int("daily_aggregates", result.DailyAggregates))
	return result, nil
}

// WriteOpportunityReport writes the opportunity scan as Markdown and
// CSV next to the datasets.
func (e *Exporter) WriteOpportunityReport(r *Report) error {
	if err := os.MkdirAll(e.exportPath, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := e.writeFile("opportunities.md", RenderMarkdown(r)); err != nil {
		return err
	}
	return e.writeFile("opportunities.csv", RenderOpportunitiesCSV(r.Opportunities))
}

func (e *Exporter) writeFile(name, content string) error {
	path := filepath.Join(e.exportPath, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
