//nolint:funlen // ok for tests
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoostHand_Consume(t *testing.T) {
	h := NewBoostHand()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, h.Available())
	assert.Equal(t, FirstCycle, h.CycleNumber)

	assert.NoError(t, h.Consume(2))
	assert.False(t, h.IsAvailable(2))
	assert.Equal(t, []int{0, 1, 3, 4}, h.Available())
	assert.Equal(t, 4, h.RemainingUntilReplenish())

	// a card is single use within its cycle
	assert.ErrorIs(t, h.Consume(2), ErrCardNotAvailable)
}

func TestBoostHand_ConsumeInvalid(t *testing.T) {
	h := NewBoostHand()
	assert.ErrorIs(t, h.Consume(-1), ErrInvalidBoost)
	assert.ErrorIs(t, h.Consume(5), ErrInvalidBoost)
}

func TestBoostHand_Replenish(t *testing.T) {
	h := NewBoostHand()
	for _, v := range []int{3, 0, 4, 1} {
		assert.NoError(t, h.Consume(v))
	}
	assert.Equal(t, []int{2}, h.Available())
	assert.Equal(t, 1, h.RemainingUntilReplenish())

	// consuming the last card starts a fresh cycle
	assert.NoError(t, h.Consume(2))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, h.Available())
	assert.Equal(t, FirstCycle+1, h.CycleNumber)
	assert.Equal(t, 1, h.CyclesCompleted)

	// the replenished card may be used again
	assert.NoError(t, h.Consume(2))
}
