// Package perf computes the per-turn performance of a participant.
package perf

import (
	"github.com/pitgrid/boostrace-service-go/pkg/model"
)

// Input collects everything the calculation depends on. The boost
// value is validated by the caller before a turn is resolved.
type Input struct {
	Stats          model.ParticipantStats
	Characteristic model.LapCharacteristic
	Sector         model.Sector
	Boost          int
}

// Breakdown is the full result of one calculation.
type Breakdown struct {
	EngineValue int `json:"engineValue"`
	BodyValue   int `json:"bodyValue"`
	PilotValue  int `json:"pilotValue"`
	BaseValue   int `json:"baseValue"`
	CappedBase  int `json:"cappedBase"`
	Boost       int `json:"boost"`
	FinalValue  int `json:"finalValue"`
}

// Calculate sums the stat axis selected by the lap characteristic,
// truncates the sum at the current sector's max value and adds the
// boost on top. The cap is applied before the boost: raw potential is
// limited by the sector, the boost is not.
func Calculate(in Input) Breakdown {
	ret := Breakdown{
		EngineValue: in.Stats.Engine.Value(in.Characteristic),
		BodyValue:   in.Stats.Body.Value(in.Characteristic),
		PilotValue:  in.Stats.Pilot.Value(in.Characteristic),
		Boost:       in.Boost,
	}
	ret.BaseValue = ret.EngineValue + ret.BodyValue + ret.PilotValue
	ret.CappedBase = min(ret.BaseValue, in.Sector.MaxValue)
	ret.FinalValue = ret.CappedBase + ret.Boost
	return ret
}
