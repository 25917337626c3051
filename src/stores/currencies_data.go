package stores

import "market-dashboard/src/models"

// staticCurrencies seeds the directory and backs it whenever the currency
// endpoint fails or returns nothing.
var staticCurrencies = []models.MCurrencyInfo{
	{Code: "Xbt", SortOrder: 1, Ticker: "BTC", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "btc.svg"},
	{Code: "Eth", SortOrder: 2, Ticker: "ETH", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "eth.svg"},
	{Code: "Xrp", SortOrder: 3, Ticker: "XRP", Type: models.CurrencyPrimary, DecimalsPlaces: 6, Icon: "xrp.svg"},
	{Code: "Sol", SortOrder: 4, Ticker: "SOL", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "sol.svg"},
	{Code: "Ada", SortOrder: 5, Ticker: "ADA", Type: models.CurrencyPrimary, DecimalsPlaces: 6, Icon: "ada.svg"},
	{Code: "Ltc", SortOrder: 6, Ticker: "LTC", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "ltc.svg"},
	{Code: "Doge", SortOrder: 7, Ticker: "DOGE", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "doge.svg"},
	{Code: "Link", SortOrder: 8, Ticker: "LINK", Type: models.CurrencyPrimary, DecimalsPlaces: 8, Icon: "link.svg"},
	{Code: "Usdt", SortOrder: 9, Ticker: "USDT", Type: models.CurrencyPrimary, DecimalsPlaces: 4, Icon: "usdt.svg"},
	{Code: "Aud", SortOrder: 1, Ticker: "AUD", Type: models.CurrencySecondary, DecimalsPlaces: 2, Icon: "aud.svg"},
	{Code: "Usd", SortOrder: 2, Ticker: "USD", Type: models.CurrencySecondary, DecimalsPlaces: 2, Icon: "usd.svg"},
	{Code: "Nzd", SortOrder: 3, Ticker: "NZD", Type: models.CurrencySecondary, DecimalsPlaces: 2, Icon: "nzd.svg"},
	{Code: "Sgd", SortOrder: 4, Ticker: "SGD", Type: models.CurrencySecondary, DecimalsPlaces: 2, Icon: "sgd.svg"},
}

// StaticCurrencies returns a copy of the fallback directory
func StaticCurrencies() []models.MCurrencyInfo {
	out := make([]models.MCurrencyInfo, len(staticCurrencies))
	copy(out, staticCurrencies)
	return out
}
