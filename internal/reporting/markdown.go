package reporting

import (
	"fmt"
	"strings"
	"time"

	"serp-market-lab/internal/domain"
)

// RenderMarkdown renders the opportunity report as Markdown.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Market Opportunity Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Keywords tracked: %d | Window: last %d days\n\n",
		r.KeywordCount, r.WindowDays))

	sb.WriteString("## Opportunities\n\n")
	if len(r.Opportunities) == 0 {
		sb.WriteString("No opportunities detected in this window.\n\n")
		return sb.String()
	}

	sb.WriteString("| Keyword | Signal | Priority | Detail |\n")
	sb.WriteString("|---------|--------|----------|--------|\n")
	for _, o := range r.Opportunities {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			o.Keyword, o.Type, o.Priority, o.Reason))
	}
	sb.WriteString("\n")

	// Per-signal sections carry the numeric evidence.
	writeSignalSection(&sb, r.Opportunities, domain.OpportunityLowSaturation,
		"### Low Saturation\n\n", func(o *domain.Opportunity) string {
			detail := ""
			if o.AvgProducts != nil {
				detail = fmt.Sprintf("avg products %.1f", *o.AvgProducts)
			}
			if o.AvgPrice != nil {
				detail += fmt.Sprintf(", avg median price %.2f", *o.AvgPrice)
			}
			return detail
		})
	writeSignalSection(&sb, r.Opportunities, domain.OpportunityLowAdCompetition,
		"### Low Ad Competition\n\n", func(o *domain.Opportunity) string {
			if o.AvgSponsored == nil {
				return ""
			}
			return fmt.Sprintf("avg sponsored %.1f", *o.AvgSponsored)
		})
	writeSignalSection(&sb, r.Opportunities, domain.OpportunityGrowingMarket,
		"### Growing Market\n\n", func(o *domain.Opportunity) string {
			if o.NewEntrants == nil {
				return ""
			}
			return fmt.Sprintf("%d new entrants", *o.NewEntrants)
		})

	return sb.String()
}

func writeSignalSection(sb *strings.Builder, opportunities []*domain.Opportunity,
	signal domain.OpportunityType, heading string, detail func(*domain.Opportunity) string) {

	var matched []*domain.Opportunity
	for _, o := range opportunities {
		if o.Type == signal {
			matched = append(matched, o)
		}
	}
	if len(matched) == 0 {
		return
	}

	sb.WriteString(heading)
	for _, o := range matched {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", o.Keyword, detail(o)))
	}
	sb.WriteString("\n")
}
