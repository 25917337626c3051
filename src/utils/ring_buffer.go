package utils

import (
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-capacity circular buffer of price samples for one
// pair. Rows are stored flat; the oldest sample is overwritten when full.
// -----------------------------------------------------------------------------

type priceRow = [models.RB_NUM_FEATURES]float64

type RingBuffer struct {
	data     []priceRow
	capacity int
	index    int // next write position
	size     int
}

// -----------------------------------------------------------------------------

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultHistoryPoints
	}

	return &RingBuffer{
		data:     make([]priceRow, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Append(point models.MPricePoint) {
	rb.data[rb.index] = priceRow{
		models.RB_IDX_TIMESTAMP:  float64(point.Timestamp),
		models.RB_IDX_PRICE:      point.Price,
		models.RB_IDX_VOLUME:     point.Volume,
		models.RB_IDX_CHANGE_PCT: point.ChangePercent,
	}

	rb.index = (rb.index + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns up to n newest samples, oldest first
func (rb *RingBuffer) GetLatest(n int) []models.MPricePoint {
	if rb.size == 0 || n <= 0 {
		return []models.MPricePoint{}
	}
	count := min(n, rb.size)

	start := (rb.index - count + rb.capacity) % rb.capacity
	out := make([]models.MPricePoint, count)
	for i := range count {
		out[i] = rowToPoint(rb.data[(start+i)%rb.capacity])
	}
	return out
}

// GetAll returns every sample in insertion order
func (rb *RingBuffer) GetAll() []models.MPricePoint {
	return rb.GetLatest(rb.size)
}

// Prices returns only the price column, oldest first
func (rb *RingBuffer) Prices() []float64 {
	out := make([]float64, rb.size)
	start := rb.oldest()
	for i := range rb.size {
		out[i] = rb.data[(start+i)%rb.capacity][models.RB_IDX_PRICE]
	}
	return out
}

// Last returns the newest sample
func (rb *RingBuffer) Last() (models.MPricePoint, bool) {
	if rb.size == 0 {
		return models.MPricePoint{}, false
	}
	return rowToPoint(rb.data[(rb.index-1+rb.capacity)%rb.capacity]), true
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Size() int {
	return rb.size
}

func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}

// -----------------------------------------------------------------------------

// Resize changes the capacity, keeping the newest samples that fit
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 || newCapacity == rb.capacity {
		return
	}

	count := min(rb.size, newCapacity)
	start := (rb.index - count + rb.capacity) % rb.capacity

	data := make([]priceRow, newCapacity)
	for i := range count {
		data[i] = rb.data[(start+i)%rb.capacity]
	}

	rb.data = data
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) oldest() int {
	if rb.size == rb.capacity {
		return rb.index
	}
	return 0
}

func rowToPoint(row priceRow) models.MPricePoint {
	return models.MPricePoint{
		Timestamp:     int64(row[models.RB_IDX_TIMESTAMP]),
		Price:         row[models.RB_IDX_PRICE],
		Volume:        row[models.RB_IDX_VOLUME],
		ChangePercent: row[models.RB_IDX_CHANGE_PCT],
	}
}
