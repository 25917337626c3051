package stores

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/storage"
)

// Observable field names shared by the stores
const (
	FieldCurrencies       = "currencies"
	FieldSelectedCurrency = "selectedCurrency"
	FieldMarketData       = "marketData"
	FieldLoading          = "loading"
	FieldInitialLoad      = "isInitialLoad"
	FieldError            = "error"
	FieldLastUpdate       = "lastUpdate"
	FieldView             = "view"
	FieldPolling          = "polling"
	FieldCountdown        = "countdown"
)

// Error registry keys
const (
	CurrenciesFetchKey = "currencies-fetch"
	MarketFetchKey     = "market-fetch"
)

const (
	MsgCurrenciesFetch = "Failed to load currencies"
	MsgMarketFetch     = "Failed to load market data"
)

// -----------------------------------------------------------------------------

// CurrencyStore holds the currency directory and the selected display currency.
// The directory starts from the static table and is replaced wholesale by each
// fetch.
type CurrencyStore struct {
	client   interfaces.IRequestClient
	url      string
	selected *storage.LocalStorage[string]
	registry *helpers.ErrorRegistry
	Logger   *logger.Logger
	now      func() time.Time

	mu         sync.RWMutex
	currencies []models.MCurrencyInfo
	loading    bool
	err        *helpers.ApiError
	lastUpdate *time.Time
	notifier   helpers.Notifier[string]
}

// NewCurrencyStore wires the store to its endpoint. registry may be nil.
func NewCurrencyStore(client interfaces.IRequestClient, url string, selected *storage.LocalStorage[string], registry *helpers.ErrorRegistry, log *logger.Logger) *CurrencyStore {
	if log == nil {
		log = logger.NewLogger(nil, "CurrencyStore")
	}
	return &CurrencyStore{
		client:     client,
		url:        url,
		selected:   selected,
		registry:   registry,
		Logger:     log,
		now:        time.Now,
		currencies: StaticCurrencies(),
	}
}

// Subscribe registers fn, called with the changed field name
func (s *CurrencyStore) Subscribe(fn func(field string)) func() {
	return s.notifier.Subscribe(fn)
}

func (s *CurrencyStore) notify(fields ...string) {
	for _, f := range fields {
		s.notifier.Notify(f)
	}
}

// -----------------------------------------------------------------------------

// FetchCurrencies loads the directory from the currency endpoint. Remote
// entries win; static Secondary entries missing remotely are appended. A
// request failure or an empty response falls back to the static table, and
// only a failure records CURRENCIES_FETCH_ERROR. A failure caused by the
// caller cancelling ctx changes nothing.
func (s *CurrencyStore) FetchCurrencies(ctx context.Context) bool {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()
	s.notify(FieldLoading, FieldError)

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notify(FieldLoading)
	}()

	var remote []models.MCurrencyInfo
	if err := s.client.Request(ctx, s.url, nil, &remote); err != nil {
		if cancelledByCaller(ctx) {
			s.Logger.Info("Currencies fetch cancelled: %v", err)
			return false
		}

		s.Logger.Error("Failed to fetch currencies: %v", err)
		apiErr := &helpers.ApiError{
			Message:   MsgCurrenciesFetch,
			Code:      helpers.CodeCurrenciesFetch,
			Timestamp: s.now(),
			Cause:     err,
		}

		s.mu.Lock()
		s.err = apiErr
		s.currencies = StaticCurrencies()
		s.mu.Unlock()

		if s.registry != nil {
			s.registry.Add(CurrenciesFetchKey, apiErr)
		}
		s.notify(FieldError, FieldCurrencies)
		return false
	}

	if s.registry != nil {
		s.registry.Remove(CurrenciesFetchKey)
	}

	if len(remote) == 0 {
		s.Logger.Warning("Using fallback currency data")
		s.mu.Lock()
		s.currencies = StaticCurrencies()
		s.mu.Unlock()
		s.notify(FieldCurrencies)
		return false
	}

	combined := mergeWithStatic(remote)
	at := s.now()

	s.mu.Lock()
	s.currencies = combined
	s.lastUpdate = &at
	s.mu.Unlock()

	s.Logger.Info("Currencies updated: %d currencies loaded", len(combined))
	s.notify(FieldCurrencies, FieldLastUpdate)
	return true
}

func mergeWithStatic(remote []models.MCurrencyInfo) []models.MCurrencyInfo {
	seen := make(map[string]struct{}, len(remote))
	for _, c := range remote {
		seen[c.Code] = struct{}{}
	}

	combined := make([]models.MCurrencyInfo, 0, len(remote)+len(staticCurrencies))
	combined = append(combined, remote...)
	for _, c := range staticCurrencies {
		if _, ok := seen[c.Code]; c.Type == models.CurrencySecondary && !ok {
			combined = append(combined, c)
		}
	}
	return combined
}

// -----------------------------------------------------------------------------

// GetCurrencyInfo looks code up case-insensitively
func (s *CurrencyStore) GetCurrencyInfo(code string) (models.MCurrencyInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findCurrency(s.currencies, code)
}

func findCurrency(list []models.MCurrencyInfo, code string) (models.MCurrencyInfo, bool) {
	for _, c := range list {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return models.MCurrencyInfo{}, false
}

// ChangeCurrency selects and persists a Secondary currency. Unknown codes and
// Primary currencies leave the selection unchanged.
func (s *CurrencyStore) ChangeCurrency(ctx context.Context, code string) bool {
	info, ok := s.GetCurrencyInfo(code)
	if !ok || info.Type != models.CurrencySecondary {
		s.Logger.Warning("Invalid secondary currency code: %s", code)
		return false
	}

	s.selected.Set(ctx, info.Code)
	s.Logger.Info("Currency changed to: %s", info.Code)
	s.notify(FieldSelectedCurrency)
	return true
}

// SelectedCurrency is the persisted display currency code
func (s *CurrencyStore) SelectedCurrency() string {
	return s.selected.Value()
}

// SelectedCurrencyInfo resolves the selection with an exact code match
func (s *CurrencyStore) SelectedCurrencyInfo() (models.MCurrencyInfo, bool) {
	code := s.SelectedCurrency()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.currencies {
		if c.Code == code {
			return c, true
		}
	}
	return models.MCurrencyInfo{}, false
}

// -----------------------------------------------------------------------------

// Currencies returns a copy of the directory
func (s *CurrencyStore) Currencies() []models.MCurrencyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MCurrencyInfo, len(s.currencies))
	copy(out, s.currencies)
	return out
}

func (s *CurrencyStore) PrimaryCurrencies() []models.MCurrencyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MCurrencyInfo
	for _, c := range s.currencies {
		if c.Type == models.CurrencyPrimary {
			out = append(out, c)
		}
	}
	return out
}

// SecondaryCurrencies de-duplicates by code (first wins) and orders by
// SortOrder, keeping directory order among equal sort orders.
func (s *CurrencyStore) SecondaryCurrencies() []models.MCurrencyInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []models.MCurrencyInfo
	for _, c := range s.currencies {
		if c.Type != models.CurrencySecondary {
			continue
		}
		if _, dup := seen[c.Code]; dup {
			continue
		}
		seen[c.Code] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// AvailableSecondaryCurrencies keeps the secondary currencies quoted by at
// least one pair of market
func (s *CurrencyStore) AvailableSecondaryCurrencies(market []models.MMarketDataItem) []models.MCurrencyInfo {
	quoted := make(map[string]struct{})
	for _, item := range market {
		quoted[item.Pair.Secondary] = struct{}{}
	}
	return filterByCode(s.SecondaryCurrencies(), quoted)
}

// AvailableCurrenciesForCrypto keeps the secondary currencies quoted against
// primary (case-insensitive)
func (s *CurrencyStore) AvailableCurrenciesForCrypto(primary string, market []models.MMarketDataItem) []models.MCurrencyInfo {
	quoted := make(map[string]struct{})
	for _, item := range market {
		if strings.EqualFold(item.Pair.Primary, primary) {
			quoted[item.Pair.Secondary] = struct{}{}
		}
	}
	return filterByCode(s.SecondaryCurrencies(), quoted)
}

func filterByCode(list []models.MCurrencyInfo, codes map[string]struct{}) []models.MCurrencyInfo {
	out := []models.MCurrencyInfo{}
	for _, c := range list {
		if _, ok := codes[c.Code]; ok {
			out = append(out, c)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (s *CurrencyStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the last fetch failure, nil when the last fetch succeeded
func (s *CurrencyStore) Error() *helpers.ApiError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *CurrencyStore) LastUpdate() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

func (s *CurrencyStore) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	if s.registry != nil {
		s.registry.Remove(CurrenciesFetchKey)
	}
	s.notify(FieldError)
}

// Reset restores the static directory and the default selection
func (s *CurrencyStore) Reset(ctx context.Context) {
	s.mu.Lock()
	s.currencies = StaticCurrencies()
	s.loading = false
	s.err = nil
	s.lastUpdate = nil
	s.mu.Unlock()

	s.selected.Reset(ctx)
	if s.registry != nil {
		s.registry.Remove(CurrenciesFetchKey)
	}
	s.notify(FieldCurrencies, FieldLoading, FieldError, FieldLastUpdate, FieldSelectedCurrency)
}
