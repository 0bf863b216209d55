package model

import (
	"errors"
	"fmt"
)

type SectorKind string

const (
	SectorKindStart    SectorKind = "start"
	SectorKindStraight SectorKind = "straight"
	SectorKindCurve    SectorKind = "curve"
	SectorKindFinish   SectorKind = "finish"
)

// CapacityUnbounded marks a sector without an occupancy limit.
const CapacityUnbounded = 0

// Sector is one position band of the track. Higher index on the
// track means better standing.
type Sector struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	MinValue int        `json:"minValue"`
	MaxValue int        `json:"maxValue"`
	Capacity int        `json:"capacity"` // CapacityUnbounded = no limit
	Kind     SectorKind `json:"kind"`
}

func (s Sector) Unbounded() bool { return s.Capacity == CapacityUnbounded }

// Track is an ordered sequence of sectors, index order worst to best.
// Immutable after race creation.
type Track struct {
	Name    string   `json:"name"`
	Sectors []Sector `json:"sectors"`
}

var (
	ErrTrackTooShort      = errors.New("track needs at least a start and a finish sector")
	ErrSectorBounds       = errors.New("sector min value must not exceed max value")
	ErrBoundedEdgeSector  = errors.New("start and finish sectors must be unbounded")
	ErrSectorKindMismatch = errors.New("first sector must be start, last sector must be finish")
)

func (t Track) Validate() error {
	if len(t.Sectors) < 2 {
		return ErrTrackTooShort
	}
	if t.Sectors[0].Kind != SectorKindStart ||
		t.Sectors[len(t.Sectors)-1].Kind != SectorKindFinish {
		return ErrSectorKindMismatch
	}
	for i, s := range t.Sectors {
		if s.MinValue > s.MaxValue {
			return fmt.Errorf("sector %d (%s): %w", i, s.Name, ErrSectorBounds)
		}
	}
	if !t.Sectors[0].Unbounded() || !t.Sectors[len(t.Sectors)-1].Unbounded() {
		return ErrBoundedEdgeSector
	}
	return nil
}

func (t Track) StartIndex() int  { return 0 }
func (t Track) FinishIndex() int { return len(t.Sectors) - 1 }
