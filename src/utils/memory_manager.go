package utils

import (
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// MemoryManager keeps one price-history ring buffer per currency pair and
// halves retention when the heap grows past MaxMemoryMB.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	streams       map[string]*RingBuffer
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex
	heapMB        func() float64
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB, maxDataPoints int, l *logger.Logger) *MemoryManager {
	if maxDataPoints <= 0 {
		maxDataPoints = DefaultHistoryPoints
	}
	if l == nil {
		l = logger.NewLogger(nil, "MemoryManager")
	}
	return &MemoryManager{
		streams:       make(map[string]*RingBuffer),
		MaxMemoryMB:   maxMemoryMB,
		MaxDataPoints: maxDataPoints,
		Logger:        l,
		heapMB:        processHeapMB,
	}
}

// PairKey identifies a pair's history. Primary ids compare case-insensitively,
// secondary codes exactly.
func PairKey(primary, secondary string) string {
	return strings.ToLower(primary) + "/" + secondary
}

// -----------------------------------------------------------------------------

// AddDataPoint appends one sample to the pair's buffer, creating it on first use
func (mm *MemoryManager) AddDataPoint(key string, point models.MPricePoint) {
	mm.mu.Lock()
	buf, ok := mm.streams[key]
	if !ok {
		buf = NewRingBuffer(mm.MaxDataPoints)
		mm.streams[key] = buf
	}
	buf.Append(point)
	check := buf.Size()%100 == 0
	mm.mu.Unlock()

	if check {
		mm.CheckMemoryLimits()
	}
}

// History returns the pair's samples oldest first, nil when unknown
func (mm *MemoryManager) History(key string) []models.MPricePoint {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buf, ok := mm.streams[key]
	if !ok || buf.Size() == 0 {
		return nil
	}
	return buf.GetAll()
}

// Prices returns up to limit newest prices oldest first; limit <= 0 means all
func (mm *MemoryManager) Prices(key string, limit int) []float64 {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buf, ok := mm.streams[key]
	if !ok {
		return nil
	}
	prices := buf.Prices()
	if limit > 0 && len(prices) > limit {
		prices = prices[len(prices)-limit:]
	}
	return prices
}

// Latest returns the newest sample of every pair
func (mm *MemoryManager) Latest() map[string]models.MPricePoint {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	out := make(map[string]models.MPricePoint, len(mm.streams))
	for key, buf := range mm.streams {
		if p, ok := buf.Last(); ok {
			out[key] = p
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits halves every buffer above MinHistoryPoints*2 capacity when
// the heap exceeds MaxMemoryMB. A zero limit disables the check.
func (mm *MemoryManager) CheckMemoryLimits() {
	if mm.MaxMemoryMB <= 0 {
		return
	}
	current := mm.heapMB()
	if current <= float64(mm.MaxMemoryMB) {
		return
	}

	mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Trimming price history.", current, mm.MaxMemoryMB)

	mm.mu.Lock()
	for _, buf := range mm.streams {
		if buf.Capacity() > MinHistoryPoints*2 {
			buf.Resize(max(buf.Capacity()/2, MinHistoryPoints))
		}
	}
	mm.mu.Unlock()

	runtime.GC()
	debug.FreeOSMemory()
}

func processHeapMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup drops all history
func (mm *MemoryManager) Cleanup() {
	mm.mu.Lock()
	mm.streams = make(map[string]*RingBuffer)
	mm.mu.Unlock()
}

func (mm *MemoryManager) HasPair(key string) bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	_, ok := mm.streams[key]
	return ok
}

func (mm *MemoryManager) PairCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.streams)
}
