package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestPriceRingWrapAround(t *testing.T) {
	rb := NewPriceRing(3)

	assert.Equal(t, 0, rb.Size())
	assert.Equal(t, []float64{}, rb.GetAll())

	rb.Append(1)
	rb.Append(2)
	assert.Equal(t, []float64{1, 2}, rb.GetAll())
	assert.False(t, rb.IsFull())

	rb.Append(3)
	rb.Append(4)
	rb.Append(5)
	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())
	assert.Equal(t, []float64{3, 4, 5}, rb.GetAll())
}

// -----------------------------------------------------------------------------

func TestPriceRingGetLatest(t *testing.T) {
	rb := NewPriceRing(4)
	for i := 1; i <= 6; i++ {
		rb.Append(float64(i))
	}

	assert.Equal(t, []float64{5, 6}, rb.GetLatest(2))
	// Asking for more than stored returns what is there
	assert.Equal(t, []float64{3, 4, 5, 6}, rb.GetLatest(10))
	assert.Equal(t, []float64{}, rb.GetLatest(0))
}

// -----------------------------------------------------------------------------

func TestPriceRingClear(t *testing.T) {
	rb := NewPriceRing(2)
	rb.Append(1)
	rb.Append(2)

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	assert.Equal(t, 2, rb.Capacity())
	assert.Equal(t, []float64{}, rb.GetAll())
}
