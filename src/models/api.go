package models

import "time"

// -----------------------------------------------------------------------------
// REST request bodies
// -----------------------------------------------------------------------------

type MCurrencyChangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// MViewUpdateRequest patches the view state; nil fields are left unchanged.
// An empty SortOrder with a SortBy toggles or picks the field default.
type MViewUpdateRequest struct {
	SearchQuery  *string    `json:"searchQuery"`
	SelectedType *string    `json:"selectedType"`
	SortBy       MSortField `json:"sortBy"`
	SortOrder    MSortOrder `json:"sortOrder"`
}

type MPollingRequest struct {
	IntervalMs int64 `json:"intervalMs"`
}

type MTooltipRequest struct {
	Event MCrosshairEvent `json:"event"`
	Width float64         `json:"width"`
}

// -----------------------------------------------------------------------------
// REST responses
// -----------------------------------------------------------------------------

type MHealth struct {
	Status      string     `json:"status"`
	Connections int        `json:"connections"`
	LastUpdate  *time.Time `json:"latest_update"`
	Online      bool       `json:"online"`
	Polling     bool       `json:"polling"`
}

type MPollingStatus struct {
	IsPolling     bool       `json:"isPolling"`
	IntervalMs    int64      `json:"intervalMs"`
	TimeRemaining int        `json:"timeRemaining"`
	NextUpdateAt  *time.Time `json:"nextUpdateAt"`
}

// MCryptoDetail is the single-pair view with its chart
type MCryptoDetail struct {
	Item            MMarketDataItem `json:"item"`
	Info            *MCurrencyInfo  `json:"info"`
	Pair            string          `json:"pair"`
	FormattedPrice  string          `json:"formattedPrice"`
	FormattedVolume string          `json:"formattedVolume"`
	FormattedChange string          `json:"formattedChange"`
	Available       []MCurrencyInfo `json:"availableCurrencies"`
	History         MHistorySummary `json:"history"`
	Chart           any             `json:"chart"`
}
