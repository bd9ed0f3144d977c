package utils

// -----------------------------------------------------------------------------
// PriceRing is a fixed-size circular buffer of prices.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type PriceRing struct {
	data     []float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewPriceRing creates a new buffer with fixed capacity
func NewPriceRing(capacity int) *PriceRing {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &PriceRing{
		data:     make([]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a price, overwriting the oldest element when full.
func (rb *PriceRing) Append(price float64) {
	rb.data[rb.index] = price
	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetAll returns all prices in insertion order (oldest to newest)
func (rb *PriceRing) GetAll() []float64 {
	if rb.size == 0 {
		return []float64{}
	}

	result := make([]float64, rb.size)

	// Oldest element position depends on whether we have wrapped yet
	var startIdx int
	if rb.size == rb.capacity {
		startIdx = rb.index
	} else {
		startIdx = 0
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent prices in insertion order.
func (rb *PriceRing) GetLatest(n int) []float64 {
	if rb.size == 0 || n <= 0 {
		return []float64{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]float64, count)
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		result[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *PriceRing) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *PriceRing) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *PriceRing) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *PriceRing) Clear() {
	rb.index = 0
	rb.size = 0
}
