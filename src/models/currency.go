package models

// MCurrencyType distinguishes tradeable assets from quote currencies.
type MCurrencyType string

const (
	CurrencyPrimary   MCurrencyType = "Primary"
	CurrencySecondary MCurrencyType = "Secondary"
)

// MCurrencyInfo is one entry of the currency directory.
// Identity is Code, compared case-insensitively.
type MCurrencyInfo struct {
	Code           string        `json:"code"`
	SortOrder      int           `json:"sort_order"`
	Ticker         string        `json:"ticker"`
	Type           MCurrencyType `json:"type"`
	DecimalsPlaces int           `json:"decimals_places"`
	Icon           string        `json:"icon"`
}
