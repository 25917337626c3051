package server

import (
	"net/http"
	"time"

	"market-dashboard/src/analysis"
	"market-dashboard/src/chart"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/stores"
	"market-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	online := true
	if s.registry != nil {
		online = s.registry.IsOnline()
	}

	c.JSON(http.StatusOK, models.MHealth{
		Status:      "ok",
		Connections: s.ConnectionCount(),
		LastUpdate:  s.store.LastUpdate(),
		Online:      online,
		Polling:     s.store.IsPolling(),
	})
}

// -----------------------------------------------------------------------------
// Currencies
// -----------------------------------------------------------------------------

func (s *DashboardServer) currenciesBody() gin.H {
	return gin.H{
		"currencies":          s.store.Currencies.Currencies(),
		"secondaryCurrencies": s.store.Currencies.SecondaryCurrencies(),
		"selectedCurrency":    s.store.SelectedCurrency(),
		"lastUpdate":          s.store.Currencies.LastUpdate(),
		"error":               apiErrorBody(s.store.Currencies.Error()),
	}
}

func (s *DashboardServer) getCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, s.currenciesBody())
}

// refresh handlers fetch on a detached context so a client hanging up does
// not abort the shared fetch

func (s *DashboardServer) refreshCurrencies(c *gin.Context) {
	ctx, cancel := stores.Detach(c.Request.Context(), refreshTimeout)
	defer cancel()

	ok := s.store.FetchCurrencies(ctx)
	body := s.currenciesBody()
	body["updated"] = ok
	c.JSON(http.StatusOK, body)
}

func (s *DashboardServer) changeCurrency(c *gin.Context) {
	var req models.MCurrencyChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, helpers.InvalidArgument("currency code is required"))
		return
	}

	if !s.store.ChangeCurrency(c.Request.Context(), req.Code) {
		respondError(c, invalidCurrency(req.Code))
		return
	}
	c.JSON(http.StatusOK, gin.H{"selectedCurrency": s.store.SelectedCurrency()})
}

// -----------------------------------------------------------------------------
// Market
// -----------------------------------------------------------------------------

func (s *DashboardServer) marketBody() gin.H {
	return gin.H{
		"filteredMarketData": s.store.FilteredMarketData(),
		"marketStats":        s.store.MarketStats(),
		"marketTrend":        s.store.MarketTrend(),
		"view":               s.store.View(),
		"selectedCurrency":   s.store.SelectedCurrency(),
		"lastUpdate":         s.store.Market.LastUpdate(),
		"loading":            s.store.Loading(),
		"isInitialLoad":      s.store.Market.IsInitialLoad(),
		"error":              s.store.ErrorView(),
	}
}

func (s *DashboardServer) getMarket(c *gin.Context) {
	c.JSON(http.StatusOK, s.marketBody())
}

func (s *DashboardServer) refreshMarket(c *gin.Context) {
	ctx, cancel := stores.Detach(c.Request.Context(), refreshTimeout)
	defer cancel()

	ok := s.store.FetchMarketData(ctx, false)
	body := s.marketBody()
	body["updated"] = ok
	c.JSON(http.StatusOK, body)
}

func (s *DashboardServer) updateView(c *gin.Context) {
	var req models.MViewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, helpers.InvalidArgument("malformed view update: %v", err))
		return
	}

	// validate everything before mutating anything
	var (
		field models.MSortField
		order models.MSortOrder
		err   error
	)
	if req.SortBy != "" {
		field, order, err = parseSort(string(req.SortBy), string(req.SortOrder))
		if err != nil {
			respondError(c, err)
			return
		}
	} else if req.SortOrder != "" {
		if _, order, err = parseSort(string(models.SortByName), string(req.SortOrder)); err != nil {
			respondError(c, err)
			return
		}
	}

	if req.SearchQuery != nil {
		s.store.SetSearchQuery(*req.SearchQuery)
	}
	if req.SelectedType != nil {
		s.store.SetSelectedType(*req.SelectedType)
	}
	switch {
	case field != "":
		s.store.SetSortBy(field, order)
	case order != "":
		s.store.Market.SetSortOrder(order)
	}

	c.JSON(http.StatusOK, s.marketBody())
}

// -----------------------------------------------------------------------------
// Single pair
// -----------------------------------------------------------------------------

func (s *DashboardServer) getCrypto(c *gin.Context) {
	primary := c.Param("primary")
	secondary := c.Query("secondary")

	item, ok := s.store.GetCryptoData(primary, secondary)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "pair not found"})
		return
	}

	prices := s.pairPrices(item)
	price := utils.ParseNumberOrZero(item.Price.Last)
	detail := models.MCryptoDetail{
		Item:            item,
		Pair:            utils.FormatCurrencyPair(item.Pair.Primary, item.Pair.Secondary),
		FormattedPrice:  utils.FormatPrice(item.Price.Last, s.store.GetDecimalPlaces(item.Pair.Secondary, price)),
		FormattedVolume: utils.FormatVolume(item.Volume.Secondary),
		FormattedChange: utils.FormatPercentage(item.Price.Change.Percent, item.Price.Change.Direction),
		Available:       s.store.GetAvailableCurrenciesForCrypto(item.Pair.Primary),
		History:         analysis.SummarizeHistory(s.store.Market.PriceHistory(item.Pair.Primary, item.Pair.Secondary)),
		Chart:           chart.Build(prices, models.MSize{}, time.Now()),
	}
	if info, known := s.store.GetCurrencyInfo(item.Pair.Primary); known {
		detail.Info = &info
	}
	c.JSON(http.StatusOK, detail)
}

// pairPrices prefers recorded history, resampled to the chart step, over the
// history embedded in the snapshot
func (s *DashboardServer) pairPrices(item models.MMarketDataItem) []float64 {
	history := s.store.Market.PriceHistory(item.Pair.Primary, item.Pair.Secondary)
	if len(history) < 2 {
		return item.PriceHistory
	}

	points := analysis.ResampleLast(history, chart.TimeStep)
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}
	return prices
}

func (s *DashboardServer) getTooltip(c *gin.Context) {
	var req models.MTooltipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, helpers.InvalidArgument("malformed crosshair event: %v", err))
		return
	}

	handler := chart.NewCrosshairHandler(func() (float64, bool) {
		return req.Width, req.Width > 0
	})
	c.JSON(http.StatusOK, handler.Handle(req.Event))
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

func (s *DashboardServer) getErrors(c *gin.Context) {
	entries := s.registry.All()
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		info := e.Error
		out = append(out, gin.H{
			"key":      e.Key,
			"error":    info,
			"friendly": s.registry.FormatUserMessage(&info),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"errors": out,
		"online": s.registry.IsOnline(),
	})
}

// deleteError also clears the owning store's error for store keys
func (s *DashboardServer) deleteError(c *gin.Context) {
	key := c.Param("key")
	switch key {
	case stores.MarketFetchKey:
		s.store.Market.ClearError()
	case stores.CurrenciesFetchKey:
		s.store.Currencies.ClearError()
	default:
		s.registry.Remove(key)
	}
	c.Status(http.StatusNoContent)
}

func (s *DashboardServer) clearErrors(c *gin.Context) {
	s.store.ClearError()
	s.registry.Clear()
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Polling
// -----------------------------------------------------------------------------

func (s *DashboardServer) pollingStatus() models.MPollingStatus {
	status := models.MPollingStatus{
		IsPolling:     s.store.IsPolling(),
		IntervalMs:    s.store.PollingInterval().Milliseconds(),
		TimeRemaining: s.store.TimeRemaining(),
	}
	if at, ok := s.store.Market.NextUpdateAt(); ok {
		status.NextUpdateAt = &at
	}
	return status
}

func (s *DashboardServer) getPolling(c *gin.Context) {
	c.JSON(http.StatusOK, s.pollingStatus())
}

func (s *DashboardServer) startPolling(c *gin.Context) {
	var req models.MPollingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, helpers.InvalidArgument("malformed polling request: %v", err))
			return
		}
	}

	if err := s.store.StartAutoRefresh(time.Duration(req.IntervalMs) * time.Millisecond); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.pollingStatus())
}

func (s *DashboardServer) stopPolling(c *gin.Context) {
	s.store.StopAutoRefresh()
	c.JSON(http.StatusOK, s.pollingStatus())
}
