package canopy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const searchBody = `{
  "data": {
    "amazonProductSearchResults": {
      "productResults": {
        "results": [
          {
            "asin": "B001",
            "title": "Walnut Desk Organizer",
            "price": {"value": 19.99, "currency": "USD", "display": "$19.99"},
            "rating": "4.6",
            "ratingsTotal": 132,
            "sponsored": true,
            "mainImageUrl": "https://img.example/b001.jpg"
          },
          {
            "asin": "B002",
            "title": "Bamboo Desk Tray",
            "price": null,
            "rating": null,
            "ratingsTotal": null,
            "sponsored": false
          }
        ],
        "pageInfo": {"currentPage": 1, "totalPages": 3, "hasNextPage": true, "totalResults": 57}
      }
    }
  }
}`

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append([]Option{WithBaseURL(server.URL), WithRateDelay(0)}, opts...)
	return NewClient("test-key", opts...)
}

func TestSearchProducts_MapsResponse(t *testing.T) {
	var gotAuth, gotAPIKey, gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("API-KEY")
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, searchBody)
	}))

	results, err := client.SearchProducts(context.Background(), "walnut desk organizer", "US", 1)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}

	if gotAuth != "Bearer test-key" || gotAPIKey != "test-key" {
		t.Errorf("auth headers = %q / %q", gotAuth, gotAPIKey)
	}
	if gotQuery != "marketplace=US&page=1&searchTerm=walnut+desk+organizer" {
		t.Errorf("unexpected query %q", gotQuery)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.ASIN != "B001" || first.Position != 1 || !first.IsSponsored {
		t.Errorf("first result = %+v", first)
	}
	if first.Price == nil || *first.Price != 19.99 {
		t.Errorf("price = %v, want 19.99", first.Price)
	}
	if first.Currency == nil || *first.Currency != "USD" {
		t.Errorf("currency = %v, want USD", first.Currency)
	}
	if first.Rating == nil || *first.Rating != 4.6 {
		t.Errorf("string rating not coerced: %v", first.Rating)
	}
	if first.ReviewCount == nil || *first.ReviewCount != 132 {
		t.Errorf("review count = %v, want 132", first.ReviewCount)
	}
	if first.ImageURL == nil || *first.ImageURL != "https://img.example/b001.jpg" {
		t.Errorf("image url = %v", first.ImageURL)
	}

	second := results[1]
	if second.Position != 2 || second.IsSponsored {
		t.Errorf("second result = %+v", second)
	}
	if second.Price != nil || second.Rating != nil || second.ReviewCount != nil {
		t.Errorf("null fields should stay nil: %+v", second)
	}
}

func TestSearchProducts_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))

	if _, err := client.SearchProducts(context.Background(), "desk", "US", 1); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestFetchEnrichment_MapsProductAndReviews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/B001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"brand": "Acme",
			"category": "Office Products",
			"subcategory": "Desk Accessories",
			"price": {"value": "21.50", "currency": "EUR"},
			"rating": 4.4,
			"review_count": 210
		}`)
	})
	mux.HandleFunc("/product/B001/reviews", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"reviews": [
			{"review_id": "r1", "rating": 5, "title": "Great", "body": "Solid build", "date": "2025-05-01"},
			{"id": "r2", "rating": "4.8"},
			{"review_id": "r3", "rating": 4},
			{"review_id": "r4", "rating": 3},
			{"review_id": "r5", "rating": 5},
			{"review_id": "r6", "rating": 2},
			{"review_id": "r7", "rating": 1}
		]}`)
	})
	client := newTestClient(t, mux)

	payload, err := client.FetchEnrichment(context.Background(), "B001", "US")
	if err != nil {
		t.Fatalf("FetchEnrichment failed: %v", err)
	}

	if payload.Brand != "Acme" || payload.Category != "Office Products" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Price == nil || payload.Price.Currency != "EUR" {
		t.Errorf("price payload = %+v", payload.Price)
	}
	if len(payload.RecentReviews) != reviewSampleSize {
		t.Fatalf("expected %d sampled reviews, got %d", reviewSampleSize, len(payload.RecentReviews))
	}

	first := payload.RecentReviews[0]
	if first.ID != "r1" || first.Text != "Solid build" || first.ReviewDate != "2025-05-01" {
		t.Errorf("alternate field names not mapped: %+v", first)
	}
	if payload.RecentReviews[1].ID != "r2" {
		t.Errorf("fallback id not mapped: %+v", payload.RecentReviews[1])
	}
}

func TestFetchEnrichment_ReviewFailureDegrades(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product/B001", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"brand": "Acme"}`)
	})
	mux.HandleFunc("/product/B001/reviews", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	})
	client := newTestClient(t, mux)

	payload, err := client.FetchEnrichment(context.Background(), "B001", "US")
	if err != nil {
		t.Fatalf("FetchEnrichment failed: %v", err)
	}
	if payload.Brand != "Acme" {
		t.Errorf("brand = %q", payload.Brand)
	}
	if len(payload.RecentReviews) != 0 {
		t.Errorf("expected no reviews on fetch failure, got %d", len(payload.RecentReviews))
	}
}

func TestCaptureSnapshots_SkipsFailingKeyword(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("searchTerm") == "broken keyword" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, searchBody)
	}), WithClock(func() time.Time { return at }))

	captures := client.CaptureSnapshots(context.Background(),
		[]string{"walnut desk organizer", "broken keyword", "cork coaster"}, "US")

	if len(captures) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(captures))
	}
	for _, c := range captures {
		if !c.CaptureTime.Equal(at) {
			t.Errorf("capture %q not stamped with shared timestamp: %v", c.Keyword, c.CaptureTime)
		}
		if len(c.Results) != 2 {
			t.Errorf("capture %q has %d results", c.Keyword, len(c.Results))
		}
	}
}
