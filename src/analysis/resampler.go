package analysis

import (
	"sort"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/models"
)

// Window is one aligned time bucket over a sorted series.
type Window struct {
	Indices   []int
	StartTime int64
	EndTime   int64
}

// -----------------------------------------------------------------------------

// ResampleIndices groups ascending timestamps into windowSeconds buckets
// aligned on the first timestamp. Empty buckets are skipped.
func ResampleIndices(timestamps []int64, windowSeconds int64) []Window {
	if len(timestamps) == 0 || windowSeconds <= 0 {
		return nil
	}

	minTs := timestamps[0]
	maxTs := timestamps[len(timestamps)-1]

	var out []Window
	for start := minTs; start <= maxTs; start += windowSeconds {
		end := start + windowSeconds
		lo := sort.Search(len(timestamps), func(j int) bool { return timestamps[j] >= start })
		hi := sort.Search(len(timestamps), func(j int) bool { return timestamps[j] >= end })
		if lo >= hi {
			continue
		}

		indices := make([]int, hi-lo)
		for i := range indices {
			indices[i] = lo + i
		}
		out = append(out, Window{Indices: indices, StartTime: start, EndTime: end})
	}
	return out
}

// -----------------------------------------------------------------------------

// ResampleLast keeps the newest sample of every window. points must be in
// ascending timestamp order.
func ResampleLast(points []models.MPricePoint, windowSeconds int64) []models.MPricePoint {
	if windowSeconds <= 0 {
		return points
	}

	timestamps := make([]int64, len(points))
	for i, p := range points {
		timestamps[i] = p.Timestamp
	}

	windows := ResampleIndices(timestamps, windowSeconds)
	out := make([]models.MPricePoint, 0, len(windows))
	for _, w := range windows {
		out = append(out, points[w.Indices[len(w.Indices)-1]])
	}
	return out
}

// -----------------------------------------------------------------------------

// SummarizeHistory reports range, change and volatility of a price history
func SummarizeHistory(points []models.MPricePoint) models.MHistorySummary {
	if len(points) == 0 {
		return models.MHistorySummary{}
	}

	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	ohlc := core.ComputeOHLC(prices)
	_, volatility := core.CalculateMeanStd(core.CalculateReturns(prices))

	return models.MHistorySummary{
		Points:     len(points),
		From:       points[0].Timestamp,
		To:         points[len(points)-1].Timestamp,
		Open:       ohlc.Open,
		High:       ohlc.High,
		Low:        ohlc.Low,
		Close:      ohlc.Close,
		ChangePct:  core.CalculateChangePercent(ohlc.Close, ohlc.Open),
		Volatility: volatility,
	}
}
