package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func twoEntryRace() *Race {
	return &Race{
		ID:   "race1",
		Name: "clone test",
		Track: Track{Name: "t", Sectors: []Sector{
			{ID: 1, MaxValue: 10, Kind: SectorKindStart},
			{ID: 2, MinValue: 5, MaxValue: 20, Kind: SectorKindFinish},
		}},
		Participants: []*Participant{
			{PlayerID: "alice", Hand: NewBoostHand()},
			{PlayerID: "bob", Hand: NewBoostHand(), CurrentSector: 1},
		},
		Characteristic: CharacteristicStraight,
		CurrentLap:     1,
		TotalLaps:      3,
		CurrentTurn:    1,
		Status:         RaceStatusInProgress,
		PendingActions: map[string]LapAction{
			"alice": {PlayerID: "alice", BoostValue: 2},
		},
	}
}

func TestRace_Clone(t *testing.T) {
	orig := twoEntryRace()
	clone := orig.Clone()

	clone.Participants[0].AccumulatedValue = 99
	assert.NoError(t, clone.Participants[1].Hand.Consume(3))
	clone.PendingActions["bob"] = LapAction{PlayerID: "bob", BoostValue: 1}
	clone.Status = RaceStatusFinished

	assert.Equal(t, 0, orig.Participants[0].AccumulatedValue)
	assert.True(t, orig.Participants[1].Hand.IsAvailable(3))
	assert.Len(t, orig.PendingActions, 1)
	assert.Equal(t, RaceStatusInProgress, orig.Status)
}

func TestRace_SectorOccupants(t *testing.T) {
	r := twoEntryRace()
	r.Participants = append(r.Participants,
		&Participant{PlayerID: "carol", CurrentSector: 1, PositionInSector: 1},
		&Participant{PlayerID: "dave", CurrentSector: 1, IsFinished: true},
	)
	occ := r.SectorOccupants(1)
	assert.Len(t, occ, 2)
	assert.Equal(t, "bob", occ[0].PlayerID)
	assert.Equal(t, "carol", occ[1].PlayerID)
}

func TestRace_ActiveParticipants(t *testing.T) {
	r := twoEntryRace()
	r.Participants[0].IsFinished = true
	active := r.ActiveParticipants()
	assert.Len(t, active, 1)
	assert.Equal(t, "bob", active[0].PlayerID)
}
