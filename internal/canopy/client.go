// Package canopy is the client for the upstream Canopy marketplace
// API: keyword search pages, product detail lookups, and review
// samples.
package canopy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"serp-market-lab/internal/domain"
	"serp-market-lab/internal/ingestion"
	"serp-market-lab/internal/normalize"
)

const (
	defaultBaseURL        = "https://rest.canopyapi.co/api/amazon"
	defaultRequestTimeout = 30 * time.Second

	// One request per second keeps us inside the API plan. Not a
	// retry mechanism; a failed request is simply reported.
	defaultRateDelay = time.Second

	// Review entries kept per product lookup.
	reviewSampleSize = 5
)

// Client calls the Canopy API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rateDelay  time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRateDelay overrides the inter-request delay.
func WithRateDelay(delay time.Duration) Option {
	return func(c *Client) { c.rateDelay = delay }
}

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		rateDelay:  defaultRateDelay,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchProducts fetches one search page for a keyword and maps it to
// normalized search results. Positions are assigned by page order.
func (c *Client) SearchProducts(ctx context.Context, keyword, marketplace string, page int) ([]*domain.SearchResult, error) {
	params := url.Values{}
	params.Set("searchTerm", keyword)
	params.Set("marketplace", marketplace)
	params.Set("page", fmt.Sprintf("%d", page))

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	raw := resp.Data.AmazonProductSearchResults.ProductResults.Results
	results := make([]*domain.SearchResult, 0, len(raw))
	for i, entry := range raw {
		result := &domain.SearchResult{
			ASIN:        entry.ASIN,
			Position:    i + 1,
			IsSponsored: entry.Sponsored,
			Rating:      normalize.Float(entry.Rating),
			ReviewCount: normalize.Int(entry.RatingsTotal),
		}
		if entry.Title != "" {
			title := entry.Title
			result.Title = &title
		}
		if entry.MainImageURL != "" {
			image := entry.MainImageURL
			result.ImageURL = &image
		}
		if entry.Price != nil {
			result.Price, result.Currency, result.PriceDisplay = normalize.Price(&domain.RawPrice{
				Value:    entry.Price.Value,
				Currency: entry.Price.Currency,
				Display:  entry.Price.Display,
			})
		}
		results = append(results, result)
	}
	return results, nil
}

// FetchEnrichment looks up a product's detail page and a sample of its
// reviews. A failed review fetch degrades to a payload without
// reviews; a failed detail fetch is an error.
func (c *Client) FetchEnrichment(ctx context.Context, asin, marketplace string) (*domain.EnrichmentPayload, error) {
	params := url.Values{}
	params.Set("marketplace", marketplace)

	var product productResponse
	if err := c.get(ctx, "product/"+asin, params, &product); err != nil {
		return nil, fmt.Errorf("product details %s: %w", asin, err)
	}

	payload := &domain.EnrichmentPayload{
		Brand:       product.Brand,
		Category:    product.Category,
		Subcategory: product.Subcategory,
		Rating:      product.Rating,
		ReviewCount: product.ReviewCount,
		Price:       parsePricePayload(product.Price),
	}

	var reviews reviewsResponse
	if err := c.get(ctx, "product/"+asin+"/reviews", params, &reviews); err != nil {
		c.logger.Warn("review fetch failed",
			zap.String("asin", asin),
			zap.Error(err))
		return payload, nil
	}

	sample := reviews.Reviews
	if len(sample) > reviewSampleSize {
		sample = sample[:reviewSampleSize]
	}
	for _, entry := range sample {
		payload.RecentReviews = append(payload.RecentReviews, mapReview(entry))
	}
	return payload, nil
}

// CaptureSnapshots searches every keyword and packages the pages as
// captures stamped with one shared timestamp. A keyword whose search
// fails is logged and skipped; the rest of the run continues.
func (c *Client) CaptureSnapshots(ctx context.Context, keywords []string, marketplace string) []*ingestion.Capture {
	capturedAt := c.now().UTC()

	var captures []*ingestion.Capture
	for _, keyword := range keywords {
		results, err := c.SearchProducts(ctx, keyword, marketplace, 1)
		if err != nil {
			c.logger.Error("snapshot capture failed",
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}
		captures = append(captures, &ingestion.Capture{
			Keyword:     keyword,
			Marketplace: marketplace,
			CaptureTime: capturedAt,
			Results:     results,
		})
		c.logger.Info("snapshot captured",
			zap.String("keyword", keyword),
			zap.Int("results", len(results)))
	}
	return captures
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	if c.rateDelay > 0 {
		select {
		case <-time.After(c.rateDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request %s: status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// parsePricePayload handles the detail endpoint's price field, which
// arrives either as the structured price object or as a bare scalar.
func parsePricePayload(raw json.RawMessage) *domain.RawPrice {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var structured priceInfo
	if err := json.Unmarshal(raw, &structured); err == nil {
		if structured.Value != nil || structured.Display != "" || structured.Currency != "" {
			return &domain.RawPrice{
				Value:    structured.Value,
				Currency: structured.Currency,
				Display:  structured.Display,
			}
		}
		return nil
	}

	var scalar any
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return nil
	}
	return &domain.RawPrice{Value: scalar}
}

func mapReview(entry reviewEntry) *domain.RawReview {
	review := &domain.RawReview{
		ID:               entry.ReviewID,
		Rating:           entry.Rating,
		Title:            entry.Title,
		Text:             entry.Text,
		VerifiedPurchase: entry.VerifiedPurchase,
		ReviewDate:       entry.ReviewDate,
		HelpfulVotes:     entry.HelpfulVotes,
	}
	if review.ID == "" {
		review.ID = entry.ID
	}
	if review.Text == "" {
		review.Text = entry.Body
	}
	if review.ReviewDate == "" {
		review.ReviewDate = entry.Date
	}
	return review
}
