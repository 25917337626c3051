package models

// MPricePoint is one sample of a pair's price history, taken on every
// accepted market snapshot.
type MPricePoint struct {
	Timestamp     int64   `json:"timestamp"`
	Price         float64 `json:"price"`
	Volume        float64 `json:"volume"`
	ChangePercent float64 `json:"change_percent"`
}

// MHistorySummary describes a pair's recorded price history.
type MHistorySummary struct {
	Points     int     `json:"points"`
	From       int64   `json:"from"`
	To         int64   `json:"to"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	ChangePct  float64 `json:"change_percent"`
	Volatility float64 `json:"volatility"` // std dev of per-sample returns, percent
}
