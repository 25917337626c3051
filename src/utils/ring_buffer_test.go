package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/models"
)

func point(ts int64, price float64) models.MPricePoint {
	return models.MPricePoint{Timestamp: ts, Price: price, Volume: price * 10, ChangePercent: 1.5}
}

func TestRingBufferWrapsAndKeepsNewest(t *testing.T) {
	rb := NewRingBuffer(3)
	assert.Empty(t, rb.GetAll())
	_, ok := rb.Last()
	assert.False(t, ok)

	for i := int64(1); i <= 5; i++ {
		rb.Append(point(i, float64(i)))
	}

	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())
	assert.Equal(t, []float64{3, 4, 5}, rb.Prices())

	all := rb.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].Timestamp)
	assert.Equal(t, 50.0, all[2].Volume)

	latest := rb.GetLatest(2)
	assert.Equal(t, []int64{4, 5}, []int64{latest[0].Timestamp, latest[1].Timestamp})

	last, ok := rb.Last()
	assert.True(t, ok)
	assert.Equal(t, 5.0, last.Price)
}

func TestRingBufferResize(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := int64(1); i <= 6; i++ {
		rb.Append(point(i, float64(i)))
	}

	rb.Resize(2)
	assert.Equal(t, 2, rb.Capacity())
	assert.Equal(t, []float64{5, 6}, rb.Prices())

	rb.Resize(5)
	rb.Append(point(7, 7))
	assert.Equal(t, []float64{5, 6, 7}, rb.Prices())

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	assert.Empty(t, rb.Prices())
}

func TestNewRingBufferDefaultsCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistoryPoints, NewRingBuffer(0).Capacity())
}

func TestMemoryManagerTracksPairs(t *testing.T) {
	mm := NewMemoryManager(0, 10, nil)
	key := PairKey("BITCOIN", "Aud")
	assert.Equal(t, "bitcoin/Aud", key)

	mm.AddDataPoint(key, point(1, 100))
	mm.AddDataPoint(key, point(2, 101))
	mm.AddDataPoint(PairKey("ethereum", "Aud"), point(2, 5))

	assert.True(t, mm.HasPair(key))
	assert.Equal(t, 2, mm.PairCount())
	assert.Equal(t, []float64{100, 101}, mm.Prices(key, 0))
	assert.Equal(t, []float64{101}, mm.Prices(key, 1))
	assert.Len(t, mm.History(key), 2)
	assert.Nil(t, mm.History("unknown/Aud"))
	assert.Equal(t, 101.0, mm.Latest()[key].Price)

	mm.Cleanup()
	assert.Equal(t, 0, mm.PairCount())
}

func TestMemoryManagerTrimsWhenOverLimit(t *testing.T) {
	mm := NewMemoryManager(1, 400, nil)
	mm.heapMB = func() float64 { return 10 }

	key := PairKey("bitcoin", "Aud")
	for i := range int64(150) {
		mm.AddDataPoint(key, point(i, float64(i)))
	}

	prices := mm.Prices(key, 0)
	assert.Len(t, prices, 150)
	assert.Equal(t, 149.0, prices[len(prices)-1])

	mm.mu.RLock()
	capacity := mm.streams[key].Capacity()
	mm.mu.RUnlock()
	assert.Equal(t, 200, capacity)
}
