package stores

import (
	"context"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// CryptoStore is the single read/write surface views use. It holds no state
// of its own and delegates to the currency and market stores.
type CryptoStore struct {
	Currencies *CurrencyStore
	Market     *MarketStore
	registry   *helpers.ErrorRegistry
	now        func() time.Time
}

func NewCryptoStore(currencies *CurrencyStore, market *MarketStore, registry *helpers.ErrorRegistry) *CryptoStore {
	return &CryptoStore{
		Currencies: currencies,
		Market:     market,
		registry:   registry,
		now:        time.Now,
	}
}

// Subscribe fans in the notifications of both stores
func (c *CryptoStore) Subscribe(fn func(field string)) func() {
	unsubCurrencies := c.Currencies.Subscribe(fn)
	unsubMarket := c.Market.Subscribe(fn)
	return func() {
		unsubCurrencies()
		unsubMarket()
	}
}

// -----------------------------------------------------------------------------
// Combined status
// -----------------------------------------------------------------------------

// Loading is true while either store has a foreground fetch in flight
func (c *CryptoStore) Loading() bool {
	return c.Currencies.IsLoading() || c.Market.IsLoading()
}

// Error prefers the market error over the currency error
func (c *CryptoStore) Error() *helpers.ApiError {
	if err := c.Market.Error(); err != nil {
		return err
	}
	return c.Currencies.Error()
}

// LastUpdate prefers the market stamp over the currency stamp
func (c *CryptoStore) LastUpdate() *time.Time {
	if t := c.Market.LastUpdate(); t != nil {
		return t
	}
	return c.Currencies.LastUpdate()
}

func (c *CryptoStore) ClearError() {
	c.Market.ClearError()
	c.Currencies.ClearError()
}

// -----------------------------------------------------------------------------
// Currency passthrough
// -----------------------------------------------------------------------------

func (c *CryptoStore) FetchCurrencies(ctx context.Context) bool {
	return c.Currencies.FetchCurrencies(ctx)
}

func (c *CryptoStore) SelectedCurrency() string {
	return c.Currencies.SelectedCurrency()
}

func (c *CryptoStore) ChangeCurrency(ctx context.Context, code string) bool {
	return c.Currencies.ChangeCurrency(ctx, code)
}

func (c *CryptoStore) GetCurrencyInfo(code string) (models.MCurrencyInfo, bool) {
	return c.Currencies.GetCurrencyInfo(code)
}

// GetSecondaryCurrencies lists the display currencies quoted by the current
// snapshot
func (c *CryptoStore) GetSecondaryCurrencies() []models.MCurrencyInfo {
	return c.Currencies.AvailableSecondaryCurrencies(c.Market.MarketData())
}

func (c *CryptoStore) GetAvailableCurrenciesForCrypto(primary string) []models.MCurrencyInfo {
	return c.Currencies.AvailableCurrenciesForCrypto(primary, c.Market.MarketData())
}

// -----------------------------------------------------------------------------
// Market passthrough
// -----------------------------------------------------------------------------

func (c *CryptoStore) FetchMarketData(ctx context.Context, isPollingUpdate bool) bool {
	return c.Market.FetchMarketData(ctx, isPollingUpdate)
}

// Refresh reloads the directory first, then the market snapshot
func (c *CryptoStore) Refresh(ctx context.Context) bool {
	currenciesOK := c.Currencies.FetchCurrencies(ctx)
	marketOK := c.Market.FetchMarketData(ctx, false)
	return currenciesOK && marketOK
}

func (c *CryptoStore) FilteredMarketData() []models.MMarketDataItem {
	return c.Market.FilteredMarketData()
}

func (c *CryptoStore) MarketStats() models.MMarketStats {
	return c.Market.MarketStats()
}

func (c *CryptoStore) MarketTrend() string {
	return c.Market.MarketTrend()
}

func (c *CryptoStore) GetCryptoData(primary, secondary string) (models.MMarketDataItem, bool) {
	return c.Market.GetCryptoData(primary, secondary)
}

func (c *CryptoStore) View() models.MViewState {
	return c.Market.View()
}

func (c *CryptoStore) SetSearchQuery(q string) {
	c.Market.SetSearchQuery(q)
}

func (c *CryptoStore) ClearSearch() {
	c.Market.ClearSearch()
}

func (c *CryptoStore) SetSelectedType(t string) {
	c.Market.SetSelectedType(t)
}

func (c *CryptoStore) SetSortBy(field models.MSortField, order models.MSortOrder) {
	c.Market.SetSortBy(field, order)
}

// -----------------------------------------------------------------------------
// Polling passthrough
// -----------------------------------------------------------------------------

func (c *CryptoStore) StartAutoRefresh(interval time.Duration) error {
	return c.Market.StartRealTimePolling(interval)
}

func (c *CryptoStore) StopAutoRefresh() {
	c.Market.StopRealTimePolling()
}

func (c *CryptoStore) IsPolling() bool {
	return c.Market.IsPolling()
}

func (c *CryptoStore) PollingInterval() time.Duration {
	return c.Market.PollingInterval()
}

func (c *CryptoStore) TimeRemaining() int {
	return c.Market.TimeRemaining()
}

// -----------------------------------------------------------------------------
// Formatting passthrough
// -----------------------------------------------------------------------------

// GetDecimalPlaces uses the directory's precision for code, falling back to
// the magnitude of price
func (c *CryptoStore) GetDecimalPlaces(code string, price float64) int {
	if info, ok := c.Currencies.GetCurrencyInfo(code); ok && info.DecimalsPlaces > 0 {
		return info.DecimalsPlaces
	}
	return utils.GetDecimalPlaces(price)
}

func (c *CryptoStore) FormatPrice(price any, decimals int) string {
	return utils.FormatPrice(price, decimals)
}

func (c *CryptoStore) FormatVolume(volume any) string {
	return utils.FormatVolume(volume)
}

func (c *CryptoStore) FormatPercentage(percent string, direction models.MDirection) string {
	return utils.FormatPercentage(percent, direction)
}

// -----------------------------------------------------------------------------

// Snapshot renders the facade for views. kind is models.StateInitial or
// models.StateUpdate.
func (c *CryptoStore) Snapshot(kind string) models.MDashboardState {
	state := models.MDashboardState{
		Type:             kind,
		Currencies:       c.Currencies.Currencies(),
		Secondary:        c.GetSecondaryCurrencies(),
		SelectedCurrency: c.SelectedCurrency(),
		MarketData:       c.FilteredMarketData(),
		Stats:            c.MarketStats(),
		Trend:            c.MarketTrend(),
		View:             c.View(),
		Loading:          c.Loading(),
		IsInitialLoad:    c.Market.IsInitialLoad(),
		LastUpdate:       c.LastUpdate(),
		IsPolling:        c.IsPolling(),
		PollingInterval:  c.PollingInterval().Milliseconds(),
		TimeRemaining:    c.TimeRemaining(),
		Timestamp:        c.now().Unix(),
	}
	state.Error = c.ErrorView()
	return state
}

// ErrorView renders the combined error with its user facing message, nil
// when there is none
func (c *CryptoStore) ErrorView() *models.MErrorView {
	if err := c.Error(); err != nil {
		return c.errorView(err)
	}
	return nil
}

func (c *CryptoStore) errorView(err *helpers.ApiError) *models.MErrorView {
	view := &models.MErrorView{
		Message:   err.Message,
		Code:      err.Code,
		Status:    err.Status,
		Timestamp: err.Timestamp,
		Friendly:  err.Message,
	}
	if c.registry != nil {
		view.Friendly = c.registry.FormatUserMessage(&helpers.ErrorInfo{
			Message: err.Message,
			Code:    err.Code,
			Status:  err.Status,
		})
	}
	return view
}

// Reset restores both stores to their construction defaults
func (c *CryptoStore) Reset(ctx context.Context) {
	c.Market.Reset()
	c.Currencies.Reset(ctx)
}
