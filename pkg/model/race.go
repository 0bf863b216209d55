package model

import (
	"maps"
	"slices"
	"time"
)

type RaceStatus string

const (
	RaceStatusWaiting    RaceStatus = "waiting"
	RaceStatusInProgress RaceStatus = "inProgress"
	RaceStatusFinished   RaceStatus = "finished"
)

// Race is the aggregate and the unit of concurrency control: all
// mutations of one race happen under one logical lock.
type Race struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Track          Track                `json:"track"`
	Participants   []*Participant       `json:"participants"`
	Characteristic LapCharacteristic    `json:"characteristic"`
	CurrentLap     int                  `json:"currentLap"`
	TotalLaps      int                  `json:"totalLaps"`
	CurrentTurn    int                  `json:"currentTurn"`
	Status         RaceStatus           `json:"status"`
	PendingActions map[string]LapAction `json:"pendingActions"`
	RecordStamp    time.Time            `json:"recordStamp"`

	// append-only, persisted separately in turn_history
	History []TurnSnapshot `json:"-"`
}

func (r *Race) Participant(playerID string) *Participant {
	for _, p := range r.Participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// ActiveParticipants returns the non-finished participants.
func (r *Race) ActiveParticipants() []*Participant {
	ret := make([]*Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if !p.IsFinished {
			ret = append(ret, p)
		}
	}
	return ret
}

// SectorOccupants returns the non-finished participants of the sector
// ordered by their position (best first).
func (r *Race) SectorOccupants(sectorIdx int) []*Participant {
	ret := make([]*Participant, 0)
	for _, p := range r.Participants {
		if !p.IsFinished && p.CurrentSector == sectorIdx {
			ret = append(ret, p)
		}
	}
	slices.SortStableFunc(ret, func(a, b *Participant) int {
		return a.PositionInSector - b.PositionInSector
	})
	return ret
}

// Clone returns a deep copy. Mutating operations work on a clone and
// swap it in only after the durable write committed.
func (r *Race) Clone() *Race {
	ret := *r
	ret.Participants = make([]*Participant, len(r.Participants))
	for i, p := range r.Participants {
		ret.Participants[i] = p.clone()
	}
	ret.Track.Sectors = slices.Clone(r.Track.Sectors)
	ret.PendingActions = maps.Clone(r.PendingActions)
	ret.History = slices.Clone(r.History)
	return &ret
}
