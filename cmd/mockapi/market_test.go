package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/models"
	"market-dashboard/src/stores"
	"market-dashboard/src/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSnapshotCoversEveryPair(t *testing.T) {
	m := newMockMarket(1, map[string]float64{"Xbt": 100000, "Eth": 5000})
	items := m.Snapshot()
	require.Len(t, items, 2*len(fxFromAud))

	for _, item := range items {
		assert.NotEmpty(t, item.Price.Last)
		assert.Contains(t, []models.MDirection{models.DirectionUp, models.DirectionDown}, item.Price.Change.Direction)
		assert.Positive(t, utils.ParseNumberOrZero(item.Price.Last))
		assert.Len(t, item.PriceHistory, 2)
	}
}

func TestSnapshotIsDeterministicPerSeed(t *testing.T) {
	a := newMockMarket(7, defaultBasePrices).Snapshot()
	b := newMockMarket(7, defaultBasePrices).Snapshot()
	assert.Equal(t, a, b)
}

func TestHistoryIsBounded(t *testing.T) {
	m := newMockMarket(3, map[string]float64{"Xbt": 1})
	var items []models.MMarketDataItem
	for range historyLength * 2 {
		items = m.Snapshot()
	}
	assert.Len(t, items[0].PriceHistory, historyLength)
}

func TestRouterServesBothEndpoints(t *testing.T) {
	engine := newRouter(newMockMarket(1, defaultBasePrices), stores.StaticCurrencies())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/currency", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var currencies []models.MCurrencyInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &currencies))
	assert.Len(t, currencies, len(stores.StaticCurrencies()))

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/market", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.MMarketDataItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, len(defaultBasePrices)*len(fxFromAud))
}
