package models

import "time"

// -----------------------------------------------------------------------------
// Dashboard snapshot pushed to views
// -----------------------------------------------------------------------------

const (
	StateInitial = "INITIAL"
	StateUpdate  = "UPDATE"
)

type MErrorView struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Status    int       `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Friendly  string    `json:"friendly"`
}

type MDashboardState struct {
	Type             string            `json:"type"` // "INITIAL" or "UPDATE"
	Currencies       []MCurrencyInfo   `json:"currencies"`
	Secondary        []MCurrencyInfo   `json:"secondaryCurrencies"`
	SelectedCurrency string            `json:"selectedCurrency"`
	MarketData       []MMarketDataItem `json:"filteredMarketData"`
	Stats            MMarketStats      `json:"marketStats"`
	Trend            string            `json:"marketTrend"`
	View             MViewState        `json:"view"`
	Loading          bool              `json:"loading"`
	IsInitialLoad    bool              `json:"isInitialLoad"`
	Error            *MErrorView       `json:"error"`
	LastUpdate       *time.Time        `json:"lastUpdate"`
	IsPolling        bool              `json:"isPolling"`
	PollingInterval  int64             `json:"pollingInterval"`
	TimeRemaining    int               `json:"timeRemaining"`
	Timestamp        int64             `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// MClientCommand for client messages
// -----------------------------------------------------------------------------

type MClientCommand struct {
	Command   string `json:"command"` // subscribe, search, type, sort, currency, refresh, clear_search
	Value     string `json:"value"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}
