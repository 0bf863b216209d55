package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Validate(t *testing.T) {
	valid := Track{Name: "t", Sectors: []Sector{
		{ID: 1, MaxValue: 10, Kind: SectorKindStart},
		{ID: 2, MinValue: 5, MaxValue: 15, Capacity: 2, Kind: SectorKindCurve},
		{ID: 3, MinValue: 10, MaxValue: 20, Kind: SectorKindFinish},
	}}

	tests := []struct {
		name    string
		track   Track
		wantErr error
	}{
		{name: "valid", track: valid},
		{
			name:    "too short",
			track:   Track{Sectors: []Sector{{Kind: SectorKindStart}}},
			wantErr: ErrTrackTooShort,
		},
		{
			name: "wrong edge kinds",
			track: Track{Sectors: []Sector{
				{Kind: SectorKindStraight},
				{Kind: SectorKindFinish},
			}},
			wantErr: ErrSectorKindMismatch,
		},
		{
			name: "min above max",
			track: Track{Sectors: []Sector{
				{Kind: SectorKindStart, MaxValue: 10},
				{Kind: SectorKindCurve, MinValue: 9, MaxValue: 5},
				{Kind: SectorKindFinish, MinValue: 5, MaxValue: 20},
			}},
			wantErr: ErrSectorBounds,
		},
		{
			name: "bounded start",
			track: Track{Sectors: []Sector{
				{Kind: SectorKindStart, MaxValue: 10, Capacity: 2},
				{Kind: SectorKindFinish, MinValue: 5, MaxValue: 20},
			}},
			wantErr: ErrBoundedEdgeSector,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
