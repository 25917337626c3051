package utils

import "time"

// -----------------------------------------------------------------------------

// Upstream endpoints used when the config does not override them.
const (
	CurrencyEndpoint = "https://requestly.tech/api/mockv2/test/api/currency?username=user26614"
	MarketEndpoint   = "https://requestly.tech/api/mockv2/test/api/market?username=user26614"
)

// Request client defaults.
const (
	APITimeout    = 10 * time.Second
	RetryAttempts = 3
	RetryDelay    = time.Second
)

// FetchTimeout bounds one store fetch across every attempt and backoff delay.
const FetchTimeout = APITimeout*RetryAttempts + RetryDelay*RetryAttempts*(RetryAttempts-1)/2

// Polling defaults.
const (
	PollingInterval   = 10 * time.Second
	CountdownInterval = time.Second
)

const (
	StatusOK          = 200
	StatusTimeout     = 408
	StatusNotFound    = 404
	StatusServerError = 500
)

// -----------------------------------------------------------------------------

const (
	SelectedCurrencyKey     = "selectedCurrency"
	DefaultSelectedCurrency = "Aud"
)

// -----------------------------------------------------------------------------

// Price history retention. One point per accepted snapshot, so with the
// default 10s cadence 720 points cover two hours.
const (
	DefaultHistoryPoints = 720
	MinHistoryPoints     = 50
)
