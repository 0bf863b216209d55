package model

import (
	"slices"
	"strings"
	"time"
)

const (
	SnapshotPhasePre  = "pre"
	SnapshotPhasePost = "post"
)

// OccupantState is the per-participant portion of a snapshot.
type OccupantState struct {
	PlayerID         string `json:"playerId"`
	PositionInSector int    `json:"positionInSector"`
	AccumulatedValue int    `json:"accumulatedValue"`
	CurrentLap       int    `json:"currentLap"`
	LapDone          bool   `json:"lapDone"`
	IsFinished       bool   `json:"isFinished"`
}

type SectorOccupancy struct {
	SectorID  int             `json:"sectorId"`
	Occupants []OccupantState `json:"occupants"`
}

// TurnSnapshot is an immutable record of the race state around one
// turn resolution; captured once before and once after.
type TurnSnapshot struct {
	TurnNumber     int               `json:"turnNumber"`
	LapNumber      int               `json:"lapNumber"`
	Characteristic LapCharacteristic `json:"characteristic"`
	Phase          string            `json:"phase"` // pre|post
	Sectors        []SectorOccupancy `json:"sectors"`
	Actions        []LapAction       `json:"actions"`
	RecordStamp    time.Time         `json:"recordStamp"`
}

// NewTurnSnapshot captures the current sector occupancy of the race
// together with the actions of the turn.
func NewTurnSnapshot(r *Race, phase string, actions map[string]LapAction) TurnSnapshot {
	ret := TurnSnapshot{
		TurnNumber:     r.CurrentTurn,
		LapNumber:      r.CurrentLap,
		Characteristic: r.Characteristic,
		Phase:          phase,
		Sectors:        make([]SectorOccupancy, 0, len(r.Track.Sectors)),
		Actions:        make([]LapAction, 0, len(actions)),
		RecordStamp:    time.Now(),
	}
	for idx := range r.Track.Sectors {
		occ := SectorOccupancy{SectorID: r.Track.Sectors[idx].ID}
		for _, p := range r.SectorOccupants(idx) {
			occ.Occupants = append(occ.Occupants, OccupantState{
				PlayerID:         p.PlayerID,
				PositionInSector: p.PositionInSector,
				AccumulatedValue: p.AccumulatedValue,
				CurrentLap:       p.CurrentLap,
				LapDone:          p.LapDone,
				IsFinished:       p.IsFinished,
			})
		}
		ret.Sectors = append(ret.Sectors, occ)
	}
	for _, a := range actions {
		ret.Actions = append(ret.Actions, a)
	}
	slices.SortFunc(ret.Actions, func(a, b LapAction) int {
		return strings.Compare(a.PlayerID, b.PlayerID)
	})
	return ret
}

// HasAction reports whether the snapshot contains an action of the player.
func (s *TurnSnapshot) HasAction(playerID string) bool {
	return slices.ContainsFunc(s.Actions, func(a LapAction) bool {
		return a.PlayerID == playerID
	})
}
