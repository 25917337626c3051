package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
	"market-dashboard/src/storage"
	"market-dashboard/src/stores"
	"market-dashboard/src/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream serves the two dashboard endpoints
type upstream struct {
	mu      sync.Mutex
	market  []models.MMarketDataItem
	failing bool
	srv     *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{market: []models.MMarketDataItem{
		testItem("Xbt", "Aud", models.DirectionUp, "95000.5", "2.5", "1200000"),
		testItem("Eth", "Aud", models.DirectionDown, "5200", "1.25", "300000"),
		testItem("Xbt", "Usd", models.DirectionUp, "62000", "2.4", "5000000"),
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("/currency", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(stores.StaticCurrencies())
	})
	mux.HandleFunc("/market", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(u.market)
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) setFailing(v bool) {
	u.mu.Lock()
	u.failing = v
	u.mu.Unlock()
}

func testItem(primary, secondary string, dir models.MDirection, last, percent, volume string) models.MMarketDataItem {
	return models.MMarketDataItem{
		Pair:   models.MCurrencyPair{Primary: primary, Secondary: secondary},
		Price:  models.MPrice{Last: last, Change: models.MPriceChange{Direction: dir, Percent: percent}},
		Volume: models.MVolume{Primary: "1", Secondary: volume},
	}
}

func quiet(name string) *logger.Logger {
	l := logger.NewLogger(nil, name)
	l.SetOutput(io.Discard)
	return l
}

type harness struct {
	up       *upstream
	srv      *DashboardServer
	store    *stores.CryptoStore
	registry *helpers.ErrorRegistry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	up := newUpstream(t)
	ctx := context.Background()

	client := network.NewRequestClient(network.WithRetries(1, 0), network.WithTimeout(2*time.Second), network.WithLogger(quiet("RequestClient")))
	registry := helpers.NewErrorRegistry(helpers.NewManualProbe(true), quiet("ErrorRegistry"))

	selected, err := storage.NewLocalStorage(ctx, storage.NewMemoryStore(), utils.SelectedCurrencyKey, utils.DefaultSelectedCurrency, quiet("LocalStorage"))
	require.NoError(t, err)

	currencies := stores.NewCurrencyStore(client, up.srv.URL+"/currency", selected, registry, quiet("CurrencyStore"))
	market := stores.NewMarketStore(client, up.srv.URL+"/market", currencies, nil, quiet("MarketStore"),
		stores.WithRegistry(registry),
		stores.WithHistory(utils.NewMemoryManager(0, 50, quiet("MemoryManager"))),
	)
	t.Cleanup(market.Close)
	store := stores.NewCryptoStore(currencies, market, registry)

	srv := NewDashboardServer(&models.MConfig{Host: "127.0.0.1"}, store, registry, quiet("DashboardServer"))
	srv.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	return &harness{up: up, srv: srv, store: store, registry: registry}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["online"])
	assert.Equal(t, float64(0), body["connections"])
}

func TestMarketRefreshAndFilter(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodPost, "/api/market/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["updated"])

	data := body["filteredMarketData"].([]any)
	assert.Len(t, data, 2)
	assert.Equal(t, "Bullish", body["marketTrend"])

	rec, body = h.do(t, http.MethodPut, "/api/currency", gin.H{"code": "usd"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Usd", body["selectedCurrency"])

	_, body = h.do(t, http.MethodGet, "/api/market", nil)
	assert.Len(t, body["filteredMarketData"].([]any), 1)
}

func TestChangeCurrencyRejectsPrimary(t *testing.T) {
	h := newHarness(t)
	rec, body := h.do(t, http.MethodPut, "/api/currency", gin.H{"code": "Xbt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Xbt")

	rec, _ = h.do(t, http.MethodPut, "/api/currency", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateView(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/market/refresh", nil)

	rec, body := h.do(t, http.MethodPut, "/api/market/view", gin.H{"sortBy": "price"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := body["view"].(map[string]any)
	assert.Equal(t, "price", view["sortBy"])
	assert.Equal(t, "desc", view["sortOrder"])

	data := body["filteredMarketData"].([]any)
	first := data[0].(map[string]any)["pair"].(map[string]any)
	assert.Equal(t, "Xbt", first["primary"])

	_, body = h.do(t, http.MethodPut, "/api/market/view", gin.H{"searchQuery": "eth"})
	assert.Len(t, body["filteredMarketData"].([]any), 1)

	rec, _ = h.do(t, http.MethodPut, "/api/market/view", gin.H{"sortBy": "colour", "searchQuery": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "eth", h.store.View().SearchQuery, "rejected update leaves state untouched")
}

func TestMarketFailureSurfacesError(t *testing.T) {
	h := newHarness(t)
	h.up.setFailing(true)

	_, body := h.do(t, http.MethodPost, "/api/market/refresh", nil)
	assert.Equal(t, false, body["updated"])
	errView := body["error"].(map[string]any)
	assert.Equal(t, helpers.CodeMarketFetch, errView["code"])

	_, body = h.do(t, http.MethodGet, "/api/errors", nil)
	entries := body["errors"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, stores.MarketFetchKey, entries[0].(map[string]any)["key"])

	rec, _ := h.do(t, http.MethodDelete, "/api/errors/"+stores.MarketFetchKey, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, h.store.Error())
	assert.False(t, h.registry.HasAny())
}

func TestRefreshOutlivesClientHangup(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, path := range []string{"/api/currencies/refresh", "/api/market/refresh"} {
		req := httptest.NewRequest(http.MethodPost, path, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.srv.Handler().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	assert.False(t, h.registry.HasAny())
	assert.Nil(t, h.store.Currencies.Error())
	assert.Len(t, h.store.FilteredMarketData(), 2)
}

func TestRefreshCommandAfterStop(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.srv.Stop(ctx))

	assert.NoError(t, h.srv.applyCommand(models.MClientCommand{Command: CmdRefresh}))
	h.srv.wg.Wait()
	assert.Nil(t, h.store.Market.LastUpdate(), "no refresh runs once stopped")
}

func TestCryptoDetail(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/api/market/refresh", nil)
	h.do(t, http.MethodPost, "/api/market/refresh", nil)

	rec, body := h.do(t, http.MethodGet, "/api/crypto/xbt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "XBT/AUD", body["pair"])
	assert.Equal(t, "95,000.50", body["formattedPrice"])
	assert.Equal(t, "+2.5%", body["formattedChange"])
	assert.Len(t, body["availableCurrencies"].([]any), 2)
	assert.NotNil(t, body["chart"])

	rec, _ = h.do(t, http.MethodGet, "/api/crypto/doge", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTooltip(t *testing.T) {
	h := newHarness(t)
	at := int64(1_700_000_000)
	value := 1.5

	rec, body := h.do(t, http.MethodPost, "/api/crypto/xbt/tooltip", models.MTooltipRequest{
		Event: models.MCrosshairEvent{Point: &models.MPoint{X: 10, Y: 50}, Time: &at, SeriesValue: &value},
		Width: 600,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["visible"])
	assert.Equal(t, 25.0, body["x"])
	assert.Equal(t, "1.5000", body["price"])
}

func TestPollingEndpoints(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodPost, "/api/polling/start", models.MPollingRequest{IntervalMs: 60_000})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isPolling"])
	assert.Equal(t, float64(60_000), body["intervalMs"])
	assert.NotNil(t, body["nextUpdateAt"])

	rec, _ = h.do(t, http.MethodPost, "/api/polling/start", models.MPollingRequest{IntervalMs: -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, body = h.do(t, http.MethodPost, "/api/polling/stop", nil)
	assert.Equal(t, false, body["isPolling"])
	assert.Nil(t, body["nextUpdateAt"])
}

// -----------------------------------------------------------------------------

func dial(t *testing.T, h *harness) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(h.srv.Handler())
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) models.MDashboardState {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var state models.MDashboardState
	require.NoError(t, conn.ReadJSON(&state))
	return state
}

func TestWebSocketInitialAndUpdates(t *testing.T) {
	h := newHarness(t)
	conn := dial(t, h)

	initial := readState(t, conn)
	assert.Equal(t, models.StateInitial, initial.Type)
	assert.Equal(t, "Aud", initial.SelectedCurrency)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: CmdSort, SortBy: "volume"}))

	// coalesced UPDATE carrying the new sort
	var update models.MDashboardState
	for range 5 {
		update = readState(t, conn)
		if update.View.SortBy == models.SortByVolume {
			break
		}
	}
	assert.Equal(t, models.StateUpdate, update.Type)
	assert.Equal(t, models.SortByVolume, update.View.SortBy)
	assert.Equal(t, models.SortDesc, h.store.View().SortOrder)
	assert.Equal(t, 1, h.srv.ConnectionCount())
}

func TestWebSocketSubscribeAndRejects(t *testing.T) {
	h := newHarness(t)
	conn := dial(t, h)
	readState(t, conn)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: CmdSubscribe}))
	assert.Equal(t, models.StateInitial, readState(t, conn).Type)

	require.NoError(t, conn.WriteJSON(models.MClientCommand{Command: CmdCurrency, Value: "Xbt"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "ERROR", reply["type"])
	assert.Equal(t, CmdCurrency, reply["command"])
}

func TestParseSort(t *testing.T) {
	field, order, err := parseSort("PRICE", "")
	require.NoError(t, err)
	assert.Equal(t, models.SortByPrice, field)
	assert.Equal(t, models.MSortOrder(""), order)

	_, order, err = parseSort("name", "Desc")
	require.NoError(t, err)
	assert.Equal(t, models.SortDesc, order)

	_, _, err = parseSort("name", "sideways")
	assert.ErrorIs(t, err, helpers.ErrInvalidArgument)
}
