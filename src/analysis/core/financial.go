package core

import "math"

// -----------------------------------------------------------------------------

// OHLC holds the open/high/low/close of a price series.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// ComputeOHLC summarizes prices in order. An empty series is all zero.
func ComputeOHLC(prices []float64) OHLC {
	if len(prices) == 0 {
		return OHLC{}
	}

	out := OHLC{
		Open:  prices[0],
		Close: prices[len(prices)-1],
		High:  math.Inf(-1),
		Low:   math.Inf(1),
	}
	for _, p := range prices {
		out.High = math.Max(out.High, p)
		out.Low = math.Min(out.Low, p)
	}
	return out
}

// -----------------------------------------------------------------------------

// CalculateChangePercent returns (current-previous)/previous as a percentage.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// SignedChange applies the quoted direction to an unsigned percent.
func SignedChange(percent float64, up bool) float64 {
	if up {
		return percent
	}
	return -percent
}
