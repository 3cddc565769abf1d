package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"serp-market-lab/internal/domain"
)

const csvDateFormat = time.RFC3339

// RenderKeywordsCSV renders the keyword dimension table.
func RenderKeywordsCSV(keywords []*domain.Keyword) string {
	var sb strings.Builder
	sb.WriteString("keyword_id,keyword,marketplace,is_active,created_at\n")

	for _, k := range keywords {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%t,%s\n",
			k.ID,
			csvField(k.Text),
			k.Marketplace,
			k.IsActive,
			k.CreatedAt.UTC().Format(csvDateFormat),
		))
	}
	return sb.String()
}

// RenderProductsCSV renders the product master table.
func RenderProductsCSV(products []*domain.Product) string {
	var sb strings.Builder
	sb.WriteString("asin,title,brand,category,subcategory,marketplace,")
	sb.WriteString("current_price,current_rating,current_review_count,first_seen,last_updated\n")

	for _, p := range products {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			p.ASIN,
			csvStringPtr(p.Title),
			csvStringPtr(p.Brand),
			csvStringPtr(p.Category),
			csvStringPtr(p.Subcategory),
			csvStringPtr(p.Marketplace),
			csvFloatPtr(p.CurrentPrice),
			csvFloatPtr(p.CurrentRating),
			csvIntPtr(p.CurrentReviewCount),
			p.FirstSeen.UTC().Format(csvDateFormat),
			p.LastUpdated.UTC().Format(csvDateFormat),
		))
	}
	return sb.String()
}

// RenderPriceTrendsCSV renders the price history fact table.
func RenderPriceTrendsCSV(entries []*domain.PriceHistory) string {
	var sb strings.Builder
	sb.WriteString("asin,date,price,currency\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%s\n",
			e.ASIN,
			e.Date.UTC().Format(csvDateFormat),
			e.Price,
			e.Currency,
		))
	}
	return sb.String()
}

// RenderDailyAggregatesCSV renders the keyword-by-day aggregate table.
func RenderDailyAggregatesCSV(rows []*DailyAggregateRow) string {
	var sb strings.Builder
	sb.WriteString("date,keyword,median_price,avg_rating,total_products,")
	sb.WriteString("sponsored_count,organic_count,new_entrants\n")

	for _, r := range rows {
		m := r.Metric
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%d,%d,%d\n",
			m.Date.UTC().Format("2006-01-02"),
			csvField(r.Keyword),
			csvFloatPtr(m.MedianPrice),
			csvFloatPtr(m.AvgRating),
			m.TotalProducts,
			m.SponsoredCount,
			m.OrganicCount,
			m.NewEntrants,
		))
	}
	return sb.String()
}

// RenderOpportunitiesCSV renders the opportunity scan output.
func RenderOpportunitiesCSV(opportunities []*domain.Opportunity) string {
	var sb strings.Builder
	sb.WriteString("type,keyword,priority,avg_products,avg_sponsored,avg_price,new_entrants,reason\n")

	for _, o := range opportunities {
		newEntrants := ""
		if o.NewEntrants != nil {
			newEntrants = strconv.Itoa(*o.NewEntrants)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s\n",
			o.Type,
			csvField(o.Keyword),
			o.Priority,
			csvFloatPtr(o.AvgProducts),
			csvFloatPtr(o.AvgSponsored),
			csvFloatPtr(o.AvgPrice),
			newEntrants,
			csvField(o.Reason),
		))
	}
	return sb.String()
}

// csvField quotes a free-text value when it contains a delimiter.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func csvStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return csvField(*s)
}

func csvFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func csvIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
