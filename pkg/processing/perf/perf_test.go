package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
)

func sampleStats() model.ParticipantStats {
	return model.ParticipantStats{
		Engine: model.StatAxis{Straight: 6, Curve: 2},
		Body:   model.StatAxis{Straight: 5, Curve: 3},
		Pilot:  model.StatAxis{Straight: 4, Curve: 7},
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		characteristic model.LapCharacteristic
		sectorMax      int
		boost          int
		want           Breakdown
	}{
		{
			name:           "base below sector max",
			characteristic: model.CharacteristicStraight,
			sectorMax:      20,
			boost:          2,
			want: Breakdown{
				EngineValue: 6, BodyValue: 5, PilotValue: 4,
				BaseValue: 15, CappedBase: 15, Boost: 2, FinalValue: 17,
			},
		},
		{
			name:           "base capped at sector max",
			characteristic: model.CharacteristicStraight,
			sectorMax:      10,
			boost:          0,
			want: Breakdown{
				EngineValue: 6, BodyValue: 5, PilotValue: 4,
				BaseValue: 15, CappedBase: 10, Boost: 0, FinalValue: 10,
			},
		},
		{
			// the cap applies to the raw potential only, never to the boost
			name:           "boost exceeds sector max",
			characteristic: model.CharacteristicStraight,
			sectorMax:      10,
			boost:          4,
			want: Breakdown{
				EngineValue: 6, BodyValue: 5, PilotValue: 4,
				BaseValue: 15, CappedBase: 10, Boost: 4, FinalValue: 14,
			},
		},
		{
			name:           "curve lap selects curve axis",
			characteristic: model.CharacteristicCurve,
			sectorMax:      20,
			boost:          1,
			want: Breakdown{
				EngineValue: 2, BodyValue: 3, PilotValue: 7,
				BaseValue: 12, CappedBase: 12, Boost: 1, FinalValue: 13,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(Input{
				Stats:          sampleStats(),
				Characteristic: tt.characteristic,
				Sector:         model.Sector{MaxValue: tt.sectorMax},
				Boost:          tt.boost,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}
