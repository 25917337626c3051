package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// SignedChange is the item's percent change, negative when the direction is Down
func SignedChange(item models.MMarketDataItem) float64 {
	return core.SignedChange(utils.ParseNumberOrZero(item.Price.Change.Percent), item.Price.Change.Direction == models.DirectionUp)
}

func signedChangeDecimal(item models.MMarketDataItem) decimal.Decimal {
	d := parseDecimal(item.Price.Change.Percent)
	if item.Price.Change.Direction != models.DirectionUp {
		d = d.Neg()
	}
	return d
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// -----------------------------------------------------------------------------

// ComputeMarketStats aggregates a (filtered) snapshot: pair count, formatted
// secondary volume total, two-decimal average signed change, and the items
// with the highest and lowest signed change.
func ComputeMarketStats(items []models.MMarketDataItem) models.MMarketStats {
	if len(items) == 0 {
		return models.MMarketStats{
			TotalPairs:  0,
			TotalVolume: "0",
			AvgChange:   "0.00",
		}
	}

	totalVolume := decimal.Zero
	totalChange := decimal.Zero
	for _, item := range items {
		totalVolume = totalVolume.Add(parseDecimal(item.Volume.Secondary))
		totalChange = totalChange.Add(signedChangeDecimal(item))
	}
	avg := totalChange.Div(decimal.NewFromInt(int64(len(items))))

	byChange := SortByChangeDesc(items)
	gainer := byChange[0]
	loser := byChange[len(byChange)-1]

	return models.MMarketStats{
		TotalPairs:  len(items),
		TotalVolume: utils.FormatVolume(totalVolume),
		AvgChange:   avg.StringFixed(2),
		TopGainer:   &gainer,
		TopLoser:    &loser,
	}
}

// SortByChangeDesc returns a copy ordered by signed change, largest first.
// Equal changes keep their input order.
func SortByChangeDesc(items []models.MMarketDataItem) []models.MMarketDataItem {
	out := make([]models.MMarketDataItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return SignedChange(out[i]) > SignedChange(out[j])
	})
	return out
}

// -----------------------------------------------------------------------------

// ComputeMarketTrend compares Up against everything else over the raw snapshot
func ComputeMarketTrend(items []models.MMarketDataItem) string {
	if len(items) == 0 {
		return models.TrendNone
	}

	up := 0
	for _, item := range items {
		if item.Price.Change.Direction == models.DirectionUp {
			up++
		}
	}
	down := len(items) - up

	switch {
	case up > down:
		return models.TrendBullish
	case down > up:
		return models.TrendBearish
	default:
		return models.TrendMixed
	}
}
