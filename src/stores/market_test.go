package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

func sampleMarket() []models.MMarketDataItem {
	return []models.MMarketDataItem{
		pair("Xbt", "Aud", models.DirectionUp, "95000.5", "2.5", "1200000"),
		pair("Eth", "Aud", models.DirectionDown, "5200", "1.25", "300000"),
		pair("Xbt", "Usd", models.DirectionUp, "62000", "2.4", "5000000"),
	}
}

func TestMarketStoreInitialState(t *testing.T) {
	f := newFixture(t)
	m := f.market

	assert.Empty(t, m.MarketData())
	assert.True(t, m.IsInitialLoad())
	assert.False(t, m.IsLoading())
	assert.False(t, m.IsPolling())
	assert.Equal(t, 0, m.TimeRemaining())
	assert.Equal(t, models.MViewState{SelectedType: "all", SortBy: models.SortByName, SortOrder: models.SortAsc}, m.View())
	assert.Equal(t, models.TrendNone, m.MarketTrend())
	assert.Equal(t, 0, m.MarketStats().TotalPairs)
}

func TestFilteredMarketDataBySelectedCurrency(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, sampleMarket())

	require.True(t, f.market.FetchMarketData(context.Background(), false))
	assert.False(t, f.market.IsInitialLoad())
	assert.NotNil(t, f.market.LastUpdate())

	filtered := f.market.FilteredMarketData()
	require.Len(t, filtered, 2)
	for _, item := range filtered {
		assert.Equal(t, "Aud", item.Pair.Secondary)
	}
	assert.ElementsMatch(t, []string{"Xbt", "Eth"}, primaries(filtered))

	require.True(t, f.currencies.ChangeCurrency(context.Background(), "Usd"))
	assert.Equal(t, []string{"Xbt"}, primaries(f.market.FilteredMarketData()))
}

func TestIdenticalFetchKeepsLastUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.respond(marketURL, sampleMarket())

	require.True(t, f.market.FetchMarketData(ctx, false))
	first := f.market.LastUpdate()
	require.NotNil(t, first)

	var fields []string
	unsub := f.market.Subscribe(func(field string) { fields = append(fields, field) })
	defer unsub()

	assert.True(t, f.market.FetchMarketData(ctx, true))
	assert.Same(t, first, f.market.LastUpdate())
	assert.NotContains(t, fields, FieldMarketData)

	changed := sampleMarket()
	changed[0].Price.Last = "96000"
	f.client.respond(marketURL, changed)
	require.True(t, f.market.FetchMarketData(ctx, true))
	assert.NotSame(t, first, f.market.LastUpdate())
	assert.Contains(t, fields, FieldMarketData)
}

func TestFetchMarketDataFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.respond(marketURL, sampleMarket())
	require.True(t, f.market.FetchMarketData(ctx, false))

	f.client.fail(marketURL, helpers.NewApiError("timeout of 10000ms exceeded", helpers.CodeTimeoutError, 0))
	assert.False(t, f.market.FetchMarketData(ctx, false))

	require.NotNil(t, f.market.Error())
	assert.Equal(t, helpers.CodeMarketFetch, f.market.Error().Code)
	assert.Len(t, f.market.MarketData(), 3, "previous snapshot kept")
	assert.False(t, f.market.IsLoading())

	info, ok := f.registry.Get(MarketFetchKey)
	require.True(t, ok)
	assert.Equal(t, helpers.CodeMarketFetch, info.Code)

	f.market.ClearError()
	assert.Nil(t, f.market.Error())
	assert.False(t, f.registry.HasAny())
}

func TestFetchMarketDataEmptyClearsData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.respond(marketURL, sampleMarket())
	require.True(t, f.market.FetchMarketData(ctx, false))

	f.client.respond(marketURL, []models.MMarketDataItem{})
	assert.False(t, f.market.FetchMarketData(ctx, false))
	assert.Empty(t, f.market.MarketData())
	assert.Nil(t, f.market.Error())
}

func TestFetchMarketDataRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.respond(marketURL, sampleMarket())

	f.market.FetchMarketData(ctx, false)
	f.market.FetchMarketData(ctx, true)

	history := f.market.PriceHistory("Xbt", "Aud")
	require.Len(t, history, 2)
	assert.Equal(t, 95000.5, history[1].Price)
	assert.Equal(t, 2.5, history[1].ChangePercent)
	assert.True(t, f.history.HasPair(utils.PairKey("Eth", "Aud")))
}

// -----------------------------------------------------------------------------

func TestSearchAndTypeFilters(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, []models.MMarketDataItem{
		pair("Xbt", "Aud", models.DirectionUp, "1", "1", "1"),
		pair("Eth", "Aud", models.DirectionUp, "1", "1", "1"),
		pair("Mystery", "Aud", models.DirectionUp, "1", "1", "1"),
	})
	require.True(t, f.market.FetchMarketData(context.Background(), false))

	f.market.SetSearchQuery("btc")
	assert.Equal(t, []string{"Xbt"}, primaries(f.market.FilteredMarketData()), "ticker match")

	f.market.SetSearchQuery("ET")
	assert.Equal(t, []string{"Eth"}, primaries(f.market.FilteredMarketData()), "code match")

	f.market.SetSearchQuery("myst")
	assert.Equal(t, []string{"Mystery"}, primaries(f.market.FilteredMarketData()), "raw primary match")

	f.market.ClearSearch()
	f.market.SetSelectedType("primary")
	assert.ElementsMatch(t, []string{"Xbt", "Eth"}, primaries(f.market.FilteredMarketData()), "unknown currency has no type")

	f.market.SetSelectedType("secondary")
	assert.Empty(t, f.market.FilteredMarketData())

	f.market.SetSelectedType("")
	assert.Len(t, f.market.FilteredMarketData(), 3)
}

func TestSortByFields(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, []models.MMarketDataItem{
		pair("Eth", "Aud", models.DirectionDown, "5200", "3", "300"),
		pair("Zzz", "Aud", models.DirectionUp, "0.5", "1", "50"),
		pair("Xbt", "Aud", models.DirectionUp, "95000", "2", "1000"),
		pair("Doge", "Aud", models.DirectionUp, "0.2", "5", "900"),
	})
	require.True(t, f.market.FetchMarketData(context.Background(), false))

	assert.Equal(t, []string{"Xbt", "Doge", "Eth", "Zzz"}, primaries(f.market.FilteredMarketData()), "name asc by ticker")

	f.market.SetSortBy(models.SortByPrice, "")
	assert.Equal(t, models.SortDesc, f.market.View().SortOrder)
	assert.Equal(t, []string{"Xbt", "Eth", "Zzz", "Doge"}, primaries(f.market.FilteredMarketData()))

	f.market.SetSortBy(models.SortByChange, "")
	assert.Equal(t, []string{"Doge", "Xbt", "Zzz", "Eth"}, primaries(f.market.FilteredMarketData()))

	f.market.SetSortBy(models.SortByVolume, models.SortAsc)
	assert.Equal(t, []string{"Zzz", "Eth", "Doge", "Xbt"}, primaries(f.market.FilteredMarketData()))
}

func TestSortIsStableOnTies(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, []models.MMarketDataItem{
		pair("Xbt", "Aud", models.DirectionUp, "10", "1", "1"),
		pair("Eth", "Aud", models.DirectionUp, "10", "1", "1"),
		pair("Sol", "Aud", models.DirectionUp, "10", "1", "1"),
	})
	require.True(t, f.market.FetchMarketData(context.Background(), false))

	f.market.SetSortBy(models.SortByPrice, models.SortDesc)
	assert.Equal(t, []string{"Xbt", "Eth", "Sol"}, primaries(f.market.FilteredMarketData()))
	f.market.SetSortBy(models.SortByPrice, models.SortAsc)
	assert.Equal(t, []string{"Xbt", "Eth", "Sol"}, primaries(f.market.FilteredMarketData()))
}

func TestSetSortByToggle(t *testing.T) {
	f := newFixture(t)
	m := f.market

	m.SetSortBy(models.SortByName, "")
	assert.Equal(t, models.SortDesc, m.View().SortOrder)
	m.SetSortBy(models.SortByName, "")
	assert.Equal(t, models.SortAsc, m.View().SortOrder)

	m.SetSortBy(models.SortByVolume, "")
	assert.Equal(t, models.MViewState{SelectedType: "all", SortBy: models.SortByVolume, SortOrder: models.SortDesc}, m.View())

	m.SetSortBy(models.SortByVolume, models.SortDesc)
	assert.Equal(t, models.SortDesc, m.View().SortOrder, "explicit order never toggles")

	m.SetSortBy(models.SortByName, "")
	assert.Equal(t, models.SortAsc, m.View().SortOrder)
}

func TestDefaultSortOrder(t *testing.T) {
	assert.Equal(t, models.SortAsc, DefaultSortOrder(models.SortByName))
	assert.Equal(t, models.SortDesc, DefaultSortOrder(models.SortByPrice))
	assert.Equal(t, models.SortDesc, DefaultSortOrder(models.SortByVolume))
	assert.Equal(t, models.SortDesc, DefaultSortOrder(models.SortByChange))
}

func TestMarketStatsUseFilteredSetAndTrendUsesRaw(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, []models.MMarketDataItem{
		pair("Xbt", "Aud", models.DirectionUp, "1", "4", "1500000"),
		pair("Eth", "Aud", models.DirectionDown, "1", "2", "0"),
		pair("Xbt", "Usd", models.DirectionDown, "1", "9", "10"),
		pair("Eth", "Usd", models.DirectionDown, "1", "9", "10"),
	})
	require.True(t, f.market.FetchMarketData(context.Background(), false))

	stats := f.market.MarketStats()
	assert.Equal(t, 2, stats.TotalPairs)
	assert.Equal(t, "1.5M", stats.TotalVolume)
	assert.Equal(t, "1.00", stats.AvgChange)
	require.NotNil(t, stats.TopGainer)
	assert.Equal(t, "Xbt", stats.TopGainer.Pair.Primary)
	assert.Equal(t, "Eth", stats.TopLoser.Pair.Primary)

	assert.Equal(t, models.TrendBearish, f.market.MarketTrend())

	f.market.SetSearchQuery("nothing-matches")
	stats = f.market.MarketStats()
	assert.Equal(t, 0, stats.TotalPairs)
	assert.Nil(t, stats.TopGainer)
	assert.Nil(t, stats.TopLoser)
}

func TestGetCryptoData(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, sampleMarket())
	require.True(t, f.market.FetchMarketData(context.Background(), false))

	item, ok := f.market.GetCryptoData("xbt", "")
	require.True(t, ok)
	assert.Equal(t, "Aud", item.Pair.Secondary)

	item, ok = f.market.GetCryptoData("Xbt", "Usd")
	require.True(t, ok)
	assert.Equal(t, "62000", item.Price.Last)

	_, ok = f.market.GetCryptoData("Xbt", "usd")
	assert.False(t, ok, "secondary matches exactly")
}

// -----------------------------------------------------------------------------

func TestRealTimePolling(t *testing.T) {
	f := newFixture(t)
	f.client.respond(marketURL, sampleMarket())

	require.NoError(t, f.market.StartRealTimePolling(20*time.Millisecond))
	assert.True(t, f.market.IsPolling())
	assert.Equal(t, 20*time.Millisecond, f.market.PollingInterval())

	assert.Eventually(t, func() bool {
		return f.client.callCount(marketURL) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, f.market.IsLoading(), "polling fetches never raise the loading flag")
	assert.Len(t, f.market.MarketData(), 3)

	f.market.StopRealTimePolling()
	assert.False(t, f.market.IsPolling())
	assert.Equal(t, 0, f.market.TimeRemaining())

	assert.Error(t, f.market.StartRealTimePolling(-time.Second))
}

func TestMarketStoreReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.client.respond(marketURL, sampleMarket())
	require.True(t, f.market.FetchMarketData(ctx, false))
	f.market.SetSortBy(models.SortByPrice, "")
	f.market.SetSearchQuery("x")
	require.NoError(t, f.market.StartRealTimePolling(time.Hour))

	f.market.Reset()

	assert.Empty(t, f.market.MarketData())
	assert.True(t, f.market.IsInitialLoad())
	assert.Nil(t, f.market.LastUpdate())
	assert.Equal(t, defaultView(), f.market.View())
	assert.False(t, f.market.IsPolling())
	assert.Zero(t, f.history.PairCount())
}

func TestResetDuringInFlightPoll(t *testing.T) {
	f := newFixture(t)
	client := newBlockingClient(sampleMarket())
	market := NewMarketStore(client, marketURL, f.currencies, nil, silentLogger("MarketStore"), WithRegistry(f.registry))
	t.Cleanup(market.Close)
	t.Cleanup(client.unblock)

	require.NoError(t, market.StartRealTimePolling(20*time.Millisecond))
	select {
	case <-client.started:
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not start")
	}

	market.Reset()
	time.Sleep(50 * time.Millisecond)

	assert.False(t, market.IsPolling())
	assert.Nil(t, market.Error(), "stopping must not abort the request on the wire")
	assert.Zero(t, f.registry.Count())

	client.unblock()
	assert.Eventually(t, func() bool {
		return len(market.MarketData()) == 3
	}, 2*time.Second, 5*time.Millisecond, "late response still lands")
	assert.Nil(t, market.Error())
	assert.Zero(t, f.registry.Count())
}

func TestFetchMarketDataCancelledByCaller(t *testing.T) {
	f := newFixture(t)
	client := newBlockingClient(sampleMarket())
	market := NewMarketStore(client, marketURL, f.currencies, nil, silentLogger("MarketStore"), WithRegistry(f.registry))
	t.Cleanup(market.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, market.FetchMarketData(ctx, false))
	assert.Nil(t, market.Error())
	assert.False(t, market.IsLoading())
	assert.False(t, market.IsInitialLoad())
	assert.False(t, f.registry.HasAny())
}

func TestFetchMarketDataTimeoutIsRecorded(t *testing.T) {
	client := newBlockingClient(sampleMarket())
	t.Cleanup(client.unblock)
	registry := helpers.NewErrorRegistry(nil, silentLogger("ErrorRegistry"))
	market := NewMarketStore(client, marketURL, nil, nil, silentLogger("MarketStore"), WithRegistry(registry))
	t.Cleanup(market.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.False(t, market.FetchMarketData(ctx, false))
	require.NotNil(t, market.Error())
	assert.Equal(t, helpers.CodeMarketFetch, market.Error().Code)
	assert.Equal(t, 1, registry.Count())
}

func TestMarketStoreWithoutDirectory(t *testing.T) {
	client := newFakeClient()
	client.respond(marketURL, sampleMarket())
	market := NewMarketStore(client, marketURL, nil, nil, silentLogger("MarketStore"))
	t.Cleanup(market.Close)

	require.True(t, market.FetchMarketData(context.Background(), false))

	assert.ElementsMatch(t, []string{"Xbt", "Eth"}, primaries(market.FilteredMarketData()))
	item, ok := market.GetCryptoData("xbt", "")
	require.True(t, ok)
	assert.Equal(t, utils.DefaultSelectedCurrency, item.Pair.Secondary)

	market.SetSelectedType(string(models.CurrencyPrimary))
	assert.Len(t, market.FilteredMarketData(), 2)
}
