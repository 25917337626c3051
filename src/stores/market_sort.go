package stores

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"market-dashboard/src/analysis"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// sortMarketData orders items in place. Names use locale collation on the
// uppercased display ticker; numeric fields compare as floats. Ties keep the
// input order.
func sortMarketData(items []models.MMarketDataItem, view models.MViewState, currencies interfaces.ICurrencyDirectory, tag language.Tag) {
	cmp := comparatorFor(view.SortBy, currencies, tag)
	desc := view.SortOrder == models.SortDesc

	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return cmp(items[j], items[i]) < 0
		}
		return cmp(items[i], items[j]) < 0
	})
}

type itemComparator func(a, b models.MMarketDataItem) int

func comparatorFor(field models.MSortField, currencies interfaces.ICurrencyDirectory, tag language.Tag) itemComparator {
	switch field {
	case models.SortByPrice:
		return numericComparator(func(it models.MMarketDataItem) float64 {
			return utils.ParseNumberOrZero(it.Price.Last)
		})
	case models.SortByChange:
		return numericComparator(analysis.SignedChange)
	case models.SortByVolume:
		return numericComparator(func(it models.MMarketDataItem) float64 {
			return utils.ParseNumberOrZero(it.Volume.Secondary)
		})
	default:
		col := collate.New(tag)
		return func(a, b models.MMarketDataItem) int {
			return col.CompareString(displayName(a, currencies), displayName(b, currencies))
		}
	}
}

func numericComparator(value func(models.MMarketDataItem) float64) itemComparator {
	return func(a, b models.MMarketDataItem) int {
		va, vb := value(a), value(b)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	}
}

// displayName is the resolved ticker, or the raw primary id when unknown
func displayName(item models.MMarketDataItem, currencies interfaces.ICurrencyDirectory) string {
	if currencies != nil {
		if info, ok := currencies.GetCurrencyInfo(item.Pair.Primary); ok && info.Ticker != "" {
			return strings.ToUpper(info.Ticker)
		}
	}
	return strings.ToUpper(item.Pair.Primary)
}
