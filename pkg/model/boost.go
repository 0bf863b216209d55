package model

import (
	"errors"
	"slices"
)

const (
	BoostMin   = 0
	BoostMax   = 4
	HandSize   = BoostMax - BoostMin + 1
	FirstCycle = 1
)

var (
	ErrInvalidBoost     = errors.New("boost value out of range")
	ErrCardNotAvailable = errors.New("boost card already used in current cycle")
)

// BoostHand tracks the single-use boost cards of one participant.
// Once all cards of a cycle are used the hand replenishes.
type BoostHand struct {
	Used            []int `json:"used"`
	CycleNumber     int   `json:"cycleNumber"`
	CyclesCompleted int   `json:"cyclesCompleted"`
}

func NewBoostHand() BoostHand {
	return BoostHand{Used: []int{}, CycleNumber: FirstCycle}
}

func ValidBoost(value int) bool {
	return value >= BoostMin && value <= BoostMax
}

func (h *BoostHand) IsAvailable(value int) bool {
	return ValidBoost(value) && !slices.Contains(h.Used, value)
}

// Available returns the cards not yet used in the current cycle, ascending.
func (h *BoostHand) Available() []int {
	ret := make([]int, 0, HandSize)
	for v := BoostMin; v <= BoostMax; v++ {
		if !slices.Contains(h.Used, v) {
			ret = append(ret, v)
		}
	}
	return ret
}

func (h *BoostHand) RemainingUntilReplenish() int {
	return HandSize - len(h.Used)
}

// Consume marks value as used. When the last card of the cycle is
// consumed the hand resets and the cycle counters advance.
func (h *BoostHand) Consume(value int) error {
	if !ValidBoost(value) {
		return ErrInvalidBoost
	}
	if slices.Contains(h.Used, value) {
		return ErrCardNotAvailable
	}
	h.Used = append(h.Used, value)
	if len(h.Used) == HandSize {
		h.Used = []int{}
		h.CycleNumber++
		h.CyclesCompleted++
	}
	return nil
}

func (h *BoostHand) clone() BoostHand {
	ret := *h
	ret.Used = slices.Clone(h.Used)
	return ret
}
