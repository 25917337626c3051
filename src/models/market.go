package models

// -----------------------------------------------------------------------------
// Market snapshot items (upstream wire format, decimals kept as strings)
// -----------------------------------------------------------------------------

type MDirection string

const (
	DirectionUp   MDirection = "Up"
	DirectionDown MDirection = "Down"
)

type MCurrencyPair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

type MPriceChange struct {
	Direction MDirection `json:"direction"`
	Percent   string     `json:"percent"`
	Amount    string     `json:"amount,omitempty"`
}

type MPrice struct {
	Last   string       `json:"last"`
	Change MPriceChange `json:"change"`
}

type MVolume struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// MMarketDataItem is one quoted pair. Items are replaced wholesale on every
// accepted fetch and never mutated in place.
type MMarketDataItem struct {
	Pair         MCurrencyPair `json:"pair"`
	Price        MPrice        `json:"price"`
	Volume       MVolume       `json:"volume"`
	PriceHistory []float64     `json:"priceHistory,omitempty"`
}

// -----------------------------------------------------------------------------
// View state and derived aggregates
// -----------------------------------------------------------------------------

type MSortField string

const (
	SortByName   MSortField = "name"
	SortByPrice  MSortField = "price"
	SortByChange MSortField = "change"
	SortByVolume MSortField = "volume"
)

type MSortOrder string

const (
	SortAsc  MSortOrder = "asc"
	SortDesc MSortOrder = "desc"
)

// SelectedTypeAll disables the type filter.
const SelectedTypeAll = "all"

type MViewState struct {
	SearchQuery  string     `json:"searchQuery"`
	SelectedType string     `json:"selectedType"`
	SortBy       MSortField `json:"sortBy"`
	SortOrder    MSortOrder `json:"sortOrder"`
}

type MMarketStats struct {
	TotalPairs  int              `json:"totalPairs"`
	TotalVolume string           `json:"totalVolume"`
	AvgChange   string           `json:"avgChange"`
	TopGainer   *MMarketDataItem `json:"topGainer"`
	TopLoser    *MMarketDataItem `json:"topLoser"`
}

const (
	TrendNone    = "N/A"
	TrendBullish = "Bullish"
	TrendBearish = "Bearish"
	TrendMixed   = "Mixed"
)
