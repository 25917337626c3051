package helpers

import "market-dashboard/src/logger"

const fallbackHistoryMemoryMB = 64

// RecommendedHistoryMemoryMB sizes the in-memory price history budget at 5%
// of physical RAM, clamped to [32, 256] MB.
func RecommendedHistoryMemoryMB(log *logger.Logger) int {
	totalMB := GetTotalSystemMemoryMB()
	if totalMB == 0 {
		if log != nil {
			log.Warning("Could not determine system memory. Defaulting history budget to %dMB.", fallbackHistoryMemoryMB)
		}
		return fallbackHistoryMemoryMB
	}

	limit := totalMB / 20
	switch {
	case limit < 32:
		return 32
	case limit > 256:
		return 256
	}
	return limit
}
