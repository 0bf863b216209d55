// Package movement implements the per-turn relocation of participants
// between sectors.
package movement

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/perf"
)

type Kind string

const (
	KindStayedInSector Kind = "stayedInSector"
	KindMovedUp        Kind = "movedUp"
	KindMovedDown      Kind = "movedDown"
	KindFinishedLap    Kind = "finishedLap"
	KindFinishedRace   Kind = "finishedRace"
)

// Entry describes the outcome of one participant's turn.
type Entry struct {
	PlayerID   string         `json:"playerId"`
	Kind       Kind           `json:"kind"`
	FromSector int            `json:"fromSector"`
	ToSector   int            `json:"toSector"`
	Breakdown  perf.Breakdown `json:"breakdown"`
}

// Report is the result of one resolved turn.
type Report struct {
	Entries      []Entry `json:"entries"`
	LapAdvanced  bool    `json:"lapAdvanced"`
	RaceFinished bool    `json:"raceFinished"`
}

func (r *Report) Entry(playerID string) *Entry {
	for i := range r.Entries {
		if r.Entries[i].PlayerID == playerID {
			return &r.Entries[i]
		}
	}
	return nil
}

// These indicate violated preconditions. A resolution returning one of
// them has not modified the race.
var (
	ErrNoActiveParticipants = errors.New("race has no active participants")
	ErrMissingAction        = errors.New("active participant without action")
	ErrInvalidAction        = errors.New("action with boost value out of range")
	ErrCapacityExceeded     = errors.New("sector occupancy exceeds capacity")
	ErrNoPlacement          = errors.New("participant could not be placed in any sector")
)

type resolver struct {
	race       *model.Race
	sectors    []model.Sector
	occupants  [][]*model.Participant
	breakdowns map[string]perf.Breakdown
	entries    map[string]*Entry
	moved      map[string]bool
}

// Resolve runs the movement algorithm for one turn. Preconditions:
// every active participant has exactly one action in actions. The race
// is modified in place; callers provide a disposable copy and must
// discard it when an error is returned.
func Resolve(race *model.Race, actions map[string]model.LapAction) (*Report, error) {
	active := race.ActiveParticipants()
	if len(active) == 0 {
		return nil, ErrNoActiveParticipants
	}
	r := &resolver{
		race:       race,
		sectors:    race.Track.Sectors,
		breakdowns: make(map[string]perf.Breakdown, len(active)),
		entries:    make(map[string]*Entry, len(active)),
		moved:      make(map[string]bool),
	}
	if err := r.computePerformances(active, actions); err != nil {
		return nil, err
	}
	r.collectOccupants()

	for idx := len(r.sectors) - 1; idx >= 0; idx-- {
		if err := r.processSector(idx); err != nil {
			return nil, err
		}
	}
	if err := r.checkCapacities(); err != nil {
		return nil, err
	}

	report := &Report{}
	r.finishBookkeeping(report)
	r.writeBack()

	for _, p := range race.Participants {
		if e, ok := r.entries[p.PlayerID]; ok {
			report.Entries = append(report.Entries, *e)
		}
	}
	return report, nil
}

func (r *resolver) computePerformances(
	active []*model.Participant,
	actions map[string]model.LapAction,
) error {
	for _, p := range active {
		action, ok := actions[p.PlayerID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAction, p.PlayerID)
		}
		if !model.ValidBoost(action.BoostValue) {
			return fmt.Errorf("%w: %s", ErrInvalidAction, p.PlayerID)
		}
		b := perf.Calculate(perf.Input{
			Stats:          p.Stats,
			Characteristic: r.race.Characteristic,
			Sector:         r.sectors[p.CurrentSector],
			Boost:          action.BoostValue,
		})
		r.breakdowns[p.PlayerID] = b
		p.AccumulatedValue += b.FinalValue
		r.entries[p.PlayerID] = &Entry{
			PlayerID:   p.PlayerID,
			Kind:       KindStayedInSector,
			FromSector: p.CurrentSector,
			ToSector:   p.CurrentSector,
			Breakdown:  b,
		}
	}
	return nil
}

func (r *resolver) collectOccupants() {
	r.occupants = make([][]*model.Participant, len(r.sectors))
	for idx := range r.sectors {
		r.occupants[idx] = r.race.SectorOccupants(idx)
	}
}

func (r *resolver) hasFreeSlot(idx int) bool {
	return r.sectors[idx].Unbounded() ||
		len(r.occupants[idx]) < r.sectors[idx].Capacity
}

// processSector applies move-down, re-rank and move-up for one sector.
// Participants that already moved this turn keep their appended (last)
// position and are not evaluated again.
func (r *resolver) processSector(idx int) error {
	residents := make([]*model.Participant, 0, len(r.occupants[idx]))
	incomers := make([]*model.Participant, 0)
	for _, p := range r.occupants[idx] {
		if r.moved[p.PlayerID] {
			incomers = append(incomers, p)
		} else {
			residents = append(residents, p)
		}
	}

	// move down everyone below the sector threshold (not possible in
	// the start sector, lap-done participants wait for the field)
	if idx > 0 {
		keep := make([]*model.Participant, 0, len(residents))
		for _, p := range residents {
			if !p.LapDone &&
				r.breakdowns[p.PlayerID].FinalValue < r.sectors[idx].MinValue {
				if err := r.placeDown(idx, p); err != nil {
					return err
				}
				continue
			}
			keep = append(keep, p)
		}
		residents = keep
	}

	// stable re-rank on accumulated value; ties keep pre-turn order
	var topBefore *model.Participant
	if len(residents) > 0 {
		topBefore = residents[0]
	}
	slices.SortStableFunc(residents, func(a, b *model.Participant) int {
		return b.AccumulatedValue - a.AccumulatedValue
	})

	// move-up: only the participant that was and remains top-ranked
	// may advance, and only into free capacity
	if len(residents) > 0 && residents[0] == topBefore &&
		!topBefore.LapDone && idx < len(r.sectors)-1 && r.hasFreeSlot(idx+1) {
		mover := residents[0]
		residents = residents[1:]
		r.occupants[idx+1] = append(r.occupants[idx+1], mover)
		r.moved[mover.PlayerID] = true
		entry := r.entries[mover.PlayerID]
		entry.ToSector = idx + 1
		entry.Kind = KindMovedUp
		if idx+1 == r.race.Track.FinishIndex() {
			mover.LapDone = true
			entry.Kind = KindFinishedLap
		}
	}

	r.occupants[idx] = append(residents, incomers...)
	return nil
}

// placeDown reinserts a participant starting at the next lower sector,
// skipping full sectors. The unbounded start sector guarantees a slot.
func (r *resolver) placeDown(fromIdx int, p *model.Participant) error {
	for target := fromIdx - 1; target >= 0; target-- {
		if !r.hasFreeSlot(target) {
			continue
		}
		r.occupants[target] = append(r.occupants[target], p)
		r.moved[p.PlayerID] = true
		entry := r.entries[p.PlayerID]
		entry.ToSector = target
		entry.Kind = KindMovedDown
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoPlacement, p.PlayerID)
}

func (r *resolver) checkCapacities() error {
	for idx := range r.sectors {
		if r.sectors[idx].Unbounded() {
			continue
		}
		if len(r.occupants[idx]) > r.sectors[idx].Capacity {
			return fmt.Errorf("%w: sector %d holds %d of %d",
				ErrCapacityExceeded, idx,
				len(r.occupants[idx]), r.sectors[idx].Capacity)
		}
	}
	return nil
}

// finishBookkeeping advances the lap once the whole field has reached
// the finish sector and ends the race after the final lap.
func (r *resolver) finishBookkeeping(report *Report) {
	active := r.race.ActiveParticipants()
	allDone := len(active) > 0
	for _, p := range active {
		if !p.LapDone {
			allDone = false
			break
		}
	}
	if !allDone {
		return
	}

	// standings: best sector first, best rank within sector first
	standings := make([]*model.Participant, 0, len(active))
	for idx := len(r.sectors) - 1; idx >= 0; idx-- {
		standings = append(standings, r.occupants[idx]...)
	}

	r.race.CurrentLap++
	if r.race.CurrentLap > r.race.TotalLaps {
		r.race.Status = model.RaceStatusFinished
		for pos, p := range standings {
			p.IsFinished = true
			p.FinishPosition = pos + 1
			r.entries[p.PlayerID].Kind = KindFinishedRace
		}
		report.RaceFinished = true
		return
	}

	// next lap: alternate characteristic, whole field restarts in the
	// start sector keeping the standings order
	r.race.Characteristic = r.race.Characteristic.Next()
	for idx := range r.occupants {
		r.occupants[idx] = nil
	}
	startIdx := r.race.Track.StartIndex()
	for _, p := range standings {
		p.LapDone = false
		p.CurrentLap = r.race.CurrentLap
		r.occupants[startIdx] = append(r.occupants[startIdx], p)
	}
	report.LapAdvanced = true
}

// writeBack projects the occupant lists into dense sector ranks.
func (r *resolver) writeBack() {
	for idx := range r.occupants {
		for pos, p := range r.occupants[idx] {
			p.CurrentSector = idx
			p.PositionInSector = pos
		}
	}
}
