package canopy

import "encoding/json"

// Wire types for the Canopy REST API. Numeric fields that the API is
// known to deliver as either numbers or strings are decoded as any and
// coerced downstream.

type searchResponse struct {
	Data struct {
		AmazonProductSearchResults struct {
			ProductResults struct {
				Results  []searchResult `json:"results"`
				PageInfo *pageInfo      `json:"pageInfo"`
			} `json:"productResults"`
		} `json:"amazonProductSearchResults"`
	} `json:"data"`
}

type pageInfo struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	HasNextPage  bool `json:"hasNextPage"`
	TotalResults int  `json:"totalResults"`
}

type searchResult struct {
	ASIN         string     `json:"asin"`
	Title        string     `json:"title"`
	Price        *priceInfo `json:"price"`
	Rating       any        `json:"rating"`
	RatingsTotal any        `json:"ratingsTotal"`
	Sponsored    bool       `json:"sponsored"`
	MainImageURL string     `json:"mainImageUrl"`
	URL          string     `json:"url"`
}

type priceInfo struct {
	Value    any    `json:"value"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

type productResponse struct {
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Title       string          `json:"title"`
	Price       json.RawMessage `json:"price"`
	Rating      any             `json:"rating"`
	ReviewCount any             `json:"review_count"`
}

type reviewsResponse struct {
	Reviews []reviewEntry `json:"reviews"`
}

type reviewEntry struct {
	ReviewID         string `json:"review_id"`
	ID               string `json:"id"`
	Rating           any    `json:"rating"`
	Title            string `json:"title"`
	Text             string `json:"text"`
	Body             string `json:"body"`
	VerifiedPurchase bool   `json:"verified_purchase"`
	ReviewDate       string `json:"review_date"`
	Date             string `json:"date"`
	HelpfulVotes     *int   `json:"helpful_votes"`
}
