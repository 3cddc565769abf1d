package domain

// OpportunityType identifies a market-condition signal.
type OpportunityType string

const (
	OpportunityLowSaturation    OpportunityType = "low_saturation"
	OpportunityLowAdCompetition OpportunityType = "low_ad_competition"
	OpportunityGrowingMarket    OpportunityType = "growing_market"
)

// Opportunity priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Opportunity is a scored signal for a keyword that met a threshold
// rule over a rolling window of daily metrics. Signals are independent:
// one keyword can emit several per window. Only the fields relevant to
// the signal type are set.
type Opportunity struct {
	Type         OpportunityType
	Keyword      string
	AvgProducts  *float64 // low_saturation, rounded to 1 decimal
	AvgSponsored *float64 // low_ad_competition, rounded to 1 decimal
	AvgPrice     *float64 // window mean of median prices, rounded to 2 decimals
	NewEntrants  *int     // growing_market, summed over the window
	Priority     string
	Reason       string
}
