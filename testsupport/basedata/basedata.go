// Package basedata provides sample aggregates for tests.
package basedata

import (
	"github.com/pitgrid/boostrace-service-go/pkg/model"
)

// SampleTrack has four sectors: unbounded start and finish and two
// bounded middle sectors.
func SampleTrack() model.Track {
	return model.Track{
		Name: "testtrack",
		Sectors: []model.Sector{
			{
				ID:       1,
				Name:     "grid",
				MinValue: 0,
				MaxValue: 10,
				Capacity: model.CapacityUnbounded,
				Kind:     model.SectorKindStart,
			},
			{
				ID:       2,
				Name:     "back straight",
				MinValue: 8,
				MaxValue: 16,
				Capacity: 3,
				Kind:     model.SectorKindStraight,
			},
			{
				ID:       3,
				Name:     "chicane",
				MinValue: 12,
				MaxValue: 20,
				Capacity: 2,
				Kind:     model.SectorKindCurve,
			},
			{
				ID:       4,
				Name:     "finish straight",
				MinValue: 16,
				MaxValue: 24,
				Capacity: model.CapacityUnbounded,
				Kind:     model.SectorKindFinish,
			},
		},
	}
}

// SampleStats yields the same value on every contributor axis.
func SampleStats(straight, curve int) model.ParticipantStats {
	return model.ParticipantStats{
		Engine: model.StatAxis{Straight: straight, Curve: curve},
		Body:   model.StatAxis{Straight: straight, Curve: curve},
		Pilot:  model.StatAxis{Straight: straight, Curve: curve},
	}
}

// SampleEntries are the three competitors used by SampleRace.
func SampleEntries() []*model.Participant {
	stats := []model.ParticipantStats{
		SampleStats(5, 3),
		SampleStats(4, 4),
		SampleStats(3, 5),
	}
	ids := []string{"alice", "bob", "carol"}
	ret := make([]*model.Participant, 0, len(ids))
	for i, id := range ids {
		ret = append(ret, &model.Participant{
			PlayerID:         id,
			CarID:            "car" + id,
			PilotID:          "pilot" + id,
			Stats:            stats[i],
			CurrentSector:    0,
			PositionInSector: i,
			CurrentLap:       1,
			Hand:             model.NewBoostHand(),
		})
	}
	return ret
}

// SampleRace is a started two lap race on SampleTrack ready for
// submissions.
func SampleRace(id string) *model.Race {
	return &model.Race{
		ID:             id,
		Name:           "testrace",
		Track:          SampleTrack(),
		Participants:   SampleEntries(),
		Characteristic: model.CharacteristicStraight,
		CurrentLap:     1,
		TotalLaps:      2,
		CurrentTurn:    1,
		Status:         model.RaceStatusInProgress,
		PendingActions: make(map[string]model.LapAction),
	}
}
