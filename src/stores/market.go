package stores

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"

	"market-dashboard/src/analysis"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// MarketStore holds the latest market snapshot and the view state that
// derives the filtered, sorted table and its statistics. Derived values are
// recomputed on every read.
type MarketStore struct {
	client     interfaces.IRequestClient
	url        string
	currencies interfaces.ICurrencyDirectory
	scheduler  *utils.PollingScheduler
	history    *utils.MemoryManager
	registry   *helpers.ErrorRegistry
	locale     language.Tag
	Logger     *logger.Logger
	now        func() time.Time

	fetchTimeout time.Duration

	mu          sync.RWMutex
	marketData  []models.MMarketDataItem
	loading     bool
	initialLoad bool
	err         *helpers.ApiError
	lastUpdate  *time.Time
	view        models.MViewState
	notifier    helpers.Notifier[string]

	unsubscribeScheduler func()
}

// MarketOption configures a MarketStore.
type MarketOption func(*MarketStore)

// WithHistory records every accepted snapshot into mm.
func WithHistory(mm *utils.MemoryManager) MarketOption {
	return func(s *MarketStore) {
		s.history = mm
	}
}

// WithRegistry mirrors fetch failures into the error registry.
func WithRegistry(r *helpers.ErrorRegistry) MarketOption {
	return func(s *MarketStore) {
		s.registry = r
	}
}

// WithLocale sets the collation used for name sorting.
func WithLocale(tag language.Tag) MarketOption {
	return func(s *MarketStore) {
		s.locale = tag
	}
}

// WithFetchTimeout bounds each background poll fetch.
func WithFetchTimeout(d time.Duration) MarketOption {
	return func(s *MarketStore) {
		s.fetchTimeout = d
	}
}

// WithMarketClock replaces time.Now for lastUpdate stamps and history samples.
func WithMarketClock(now func() time.Time) MarketOption {
	return func(s *MarketStore) {
		s.now = now
	}
}

func defaultView() models.MViewState {
	return models.MViewState{
		SelectedType: models.SelectedTypeAll,
		SortBy:       models.SortByName,
		SortOrder:    models.SortAsc,
	}
}

// staticDirectory serves the built-in currency table with the default
// selection, standing in for a missing directory
type staticDirectory struct{}

func (staticDirectory) GetCurrencyInfo(code string) (models.MCurrencyInfo, bool) {
	return findCurrency(staticCurrencies, code)
}

func (staticDirectory) SelectedCurrency() string {
	return utils.DefaultSelectedCurrency
}

// -----------------------------------------------------------------------------

func NewMarketStore(client interfaces.IRequestClient, url string, currencies interfaces.ICurrencyDirectory, scheduler *utils.PollingScheduler, log *logger.Logger, opts ...MarketOption) *MarketStore {
	if log == nil {
		log = logger.NewLogger(nil, "MarketStore")
	}
	if scheduler == nil {
		scheduler = utils.NewPollingScheduler(log.Named("PollingScheduler"))
	}
	if currencies == nil {
		currencies = staticDirectory{}
	}

	s := &MarketStore{
		client:       client,
		url:          url,
		currencies:   currencies,
		scheduler:    scheduler,
		locale:       language.English,
		Logger:       log,
		now:          time.Now,
		fetchTimeout: utils.FetchTimeout,
		initialLoad:  true,
		view:         defaultView(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetchTimeout <= 0 {
		s.fetchTimeout = utils.FetchTimeout
	}

	s.unsubscribeScheduler = scheduler.Subscribe(func(field string) {
		if field == utils.FieldActive {
			s.notifier.Notify(FieldPolling)
		} else {
			s.notifier.Notify(FieldCountdown)
		}
	})
	return s
}

// Subscribe registers fn, called with the changed field name
func (s *MarketStore) Subscribe(fn func(field string)) func() {
	return s.notifier.Subscribe(fn)
}

func (s *MarketStore) notify(fields ...string) {
	for _, f := range fields {
		s.notifier.Notify(f)
	}
}

// Close stops polling and waits for the scheduler to exit
func (s *MarketStore) Close() {
	s.scheduler.Close()
	if s.unsubscribeScheduler != nil {
		s.unsubscribeScheduler()
	}
}

// -----------------------------------------------------------------------------

// FetchMarketData loads a snapshot from the market endpoint. The snapshot only
// replaces the current one, stamping lastUpdate, when its JSON differs; the
// call still reports true. An empty response clears the data and reports
// false without recording an error, as does a failure caused by the caller
// cancelling ctx. Background polls skip the loading flag.
func (s *MarketStore) FetchMarketData(ctx context.Context, isPollingUpdate bool) bool {
	s.mu.Lock()
	if !isPollingUpdate {
		s.loading = true
	}
	s.err = nil
	s.mu.Unlock()
	s.notify(FieldLoading, FieldError)

	defer func() {
		s.mu.Lock()
		if !isPollingUpdate {
			s.loading = false
		}
		s.initialLoad = false
		s.mu.Unlock()
		s.notify(FieldLoading, FieldInitialLoad)
	}()

	var fresh []models.MMarketDataItem
	if err := s.client.Request(ctx, s.url, nil, &fresh); err != nil {
		if cancelledByCaller(ctx) {
			s.Logger.Info("Market data fetch cancelled: %v", err)
			return false
		}

		s.Logger.Error("Failed to fetch market data: %v", err)
		apiErr := &helpers.ApiError{
			Message:   MsgMarketFetch,
			Code:      helpers.CodeMarketFetch,
			Timestamp: s.now(),
			Cause:     err,
		}

		s.mu.Lock()
		s.err = apiErr
		s.mu.Unlock()

		if s.registry != nil {
			s.registry.Add(MarketFetchKey, apiErr)
		}
		s.notify(FieldError)
		return false
	}

	if s.registry != nil {
		s.registry.Remove(MarketFetchKey)
	}

	if len(fresh) == 0 {
		s.Logger.Warning("No market data received from API")
		s.mu.Lock()
		s.marketData = nil
		s.mu.Unlock()
		s.notify(FieldMarketData)
		return false
	}

	at := s.now()
	s.recordHistory(fresh, at)

	s.mu.Lock()
	changed := !sameSnapshot(s.marketData, fresh)
	if changed {
		s.marketData = fresh
		s.lastUpdate = &at
	}
	s.mu.Unlock()

	if changed {
		s.Logger.Info("Market data updated: %d pairs loaded", len(fresh))
		s.notify(FieldMarketData, FieldLastUpdate)
	}
	return true
}

// sameSnapshot compares the JSON serialization of two snapshots
func sameSnapshot(a, b []models.MMarketDataItem) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

func (s *MarketStore) recordHistory(items []models.MMarketDataItem, at time.Time) {
	if s.history == nil {
		return
	}
	for _, item := range items {
		s.history.AddDataPoint(utils.PairKey(item.Pair.Primary, item.Pair.Secondary), models.MPricePoint{
			Timestamp:     at.Unix(),
			Price:         utils.ParseNumberOrZero(item.Price.Last),
			Volume:        utils.ParseNumberOrZero(item.Volume.Secondary),
			ChangePercent: analysis.SignedChange(item),
		})
	}
}

// -----------------------------------------------------------------------------

// MarketData returns the raw snapshot
func (s *MarketStore) MarketData() []models.MMarketDataItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketData
}

// GetCryptoData finds the pair for primary (case-insensitive) and secondary
// (exact). An empty secondary means the selected display currency.
func (s *MarketStore) GetCryptoData(primary, secondary string) (models.MMarketDataItem, bool) {
	if secondary == "" {
		secondary = s.currencies.SelectedCurrency()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.marketData {
		if strings.EqualFold(item.Pair.Primary, primary) && item.Pair.Secondary == secondary {
			return item, true
		}
	}
	return models.MMarketDataItem{}, false
}

// PriceHistory returns the recorded prices for a pair, oldest first
func (s *MarketStore) PriceHistory(primary, secondary string) []models.MPricePoint {
	if s.history == nil {
		return nil
	}
	return s.history.History(utils.PairKey(primary, secondary))
}

// -----------------------------------------------------------------------------

// FilteredMarketData keeps pairs quoted in the selected currency, applies the
// search and type filters, then sorts per the view state.
func (s *MarketStore) FilteredMarketData() []models.MMarketDataItem {
	s.mu.RLock()
	data := s.marketData
	view := s.view
	s.mu.RUnlock()

	selected := s.currencies.SelectedCurrency()
	query := strings.ToLower(view.SearchQuery)
	typeFilter := strings.ToLower(view.SelectedType)

	out := make([]models.MMarketDataItem, 0, len(data))
	for _, item := range data {
		if item.Pair.Secondary != selected {
			continue
		}

		info, known := s.currencies.GetCurrencyInfo(item.Pair.Primary)
		if query != "" && !matchesSearch(item, info, known, query) {
			continue
		}
		if view.SelectedType != models.SelectedTypeAll {
			if !known || strings.ToLower(string(info.Type)) != typeFilter {
				continue
			}
		}
		out = append(out, item)
	}

	sortMarketData(out, view, s.currencies, s.locale)
	return out
}

func matchesSearch(item models.MMarketDataItem, info models.MCurrencyInfo, known bool, query string) bool {
	if known {
		if info.Ticker != "" && strings.Contains(strings.ToLower(info.Ticker), query) {
			return true
		}
		if strings.Contains(strings.ToLower(info.Code), query) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(item.Pair.Primary), query)
}

// MarketStats aggregates the filtered set
func (s *MarketStore) MarketStats() models.MMarketStats {
	return analysis.ComputeMarketStats(s.FilteredMarketData())
}

// MarketTrend classifies the raw snapshot
func (s *MarketStore) MarketTrend() string {
	return analysis.ComputeMarketTrend(s.MarketData())
}

// -----------------------------------------------------------------------------
// View state
// -----------------------------------------------------------------------------

func (s *MarketStore) View() models.MViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *MarketStore) updateView(fn func(v *models.MViewState)) {
	s.mu.Lock()
	fn(&s.view)
	s.mu.Unlock()
	s.notify(FieldView)
}

func (s *MarketStore) SetSearchQuery(q string) {
	s.updateView(func(v *models.MViewState) { v.SearchQuery = q })
}

func (s *MarketStore) ClearSearch() {
	s.SetSearchQuery("")
}

// SetSelectedType filters by currency type; "all" disables the filter
func (s *MarketStore) SetSelectedType(t string) {
	if t == "" {
		t = models.SelectedTypeAll
	}
	s.updateView(func(v *models.MViewState) { v.SelectedType = t })
}

func (s *MarketStore) SetSortOrder(order models.MSortOrder) {
	s.updateView(func(v *models.MViewState) { v.SortOrder = order })
}

// SetSortBy toggles the direction when field is already active and order is
// empty. Otherwise it switches field, using order or the field's default.
func (s *MarketStore) SetSortBy(field models.MSortField, order models.MSortOrder) {
	s.updateView(func(v *models.MViewState) {
		if v.SortBy == field && order == "" {
			if v.SortOrder == models.SortAsc {
				v.SortOrder = models.SortDesc
			} else {
				v.SortOrder = models.SortAsc
			}
			return
		}

		v.SortBy = field
		if order != "" {
			v.SortOrder = order
			return
		}
		v.SortOrder = DefaultSortOrder(field)
	})
}

// DefaultSortOrder is desc for numeric fields and asc for name
func DefaultSortOrder(field models.MSortField) models.MSortOrder {
	switch field {
	case models.SortByPrice, models.SortByVolume, models.SortByChange:
		return models.SortDesc
	default:
		return models.SortAsc
	}
}

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *MarketStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *MarketStore) IsInitialLoad() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoad
}

func (s *MarketStore) Error() *helpers.ApiError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *MarketStore) LastUpdate() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

func (s *MarketStore) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
	if s.registry != nil {
		s.registry.Remove(MarketFetchKey)
	}
	s.notify(FieldError)
}

// -----------------------------------------------------------------------------
// Polling
// -----------------------------------------------------------------------------

// StartRealTimePolling re-fetches as a background update every interval.
// 0 selects the default interval.
func (s *MarketStore) StartRealTimePolling(interval time.Duration) error {
	return s.scheduler.Start(s.pollOnce, interval)
}

// UpdatePollingInterval restarts active polling with interval
func (s *MarketStore) UpdatePollingInterval(interval time.Duration) error {
	return s.scheduler.UpdateInterval(interval, s.pollOnce)
}

// pollOnce fetches on a context detached from the scheduler so Stop never
// aborts a request already on the wire; a late result still lands and is
// diff-suppressed when unchanged
func (s *MarketStore) pollOnce(ctx context.Context) error {
	fetchCtx, cancel := Detach(ctx, s.fetchTimeout)
	defer cancel()

	s.FetchMarketData(fetchCtx, true)
	return nil
}

func (s *MarketStore) StopRealTimePolling() {
	s.scheduler.Stop()
}

func (s *MarketStore) IsPolling() bool {
	return s.scheduler.IsActive()
}

func (s *MarketStore) PollingInterval() time.Duration {
	return s.scheduler.Interval()
}

// TimeRemaining is the whole seconds until the next poll, 0 when idle
func (s *MarketStore) TimeRemaining() int {
	return s.scheduler.TimeRemaining()
}

func (s *MarketStore) NextUpdateAt() (time.Time, bool) {
	return s.scheduler.NextFireAt()
}

// -----------------------------------------------------------------------------

// Reset restores construction defaults and stops polling
func (s *MarketStore) Reset() {
	s.mu.Lock()
	s.marketData = nil
	s.loading = false
	s.initialLoad = true
	s.err = nil
	s.lastUpdate = nil
	s.view = defaultView()
	s.mu.Unlock()

	if s.history != nil {
		s.history.Cleanup()
	}
	if s.registry != nil {
		s.registry.Remove(MarketFetchKey)
	}
	s.StopRealTimePolling()
	s.notify(FieldMarketData, FieldLoading, FieldInitialLoad, FieldError, FieldLastUpdate, FieldView)
}
