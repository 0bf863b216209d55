package model

type LapCharacteristic string

const (
	CharacteristicStraight LapCharacteristic = "straight"
	CharacteristicCurve    LapCharacteristic = "curve"
)

// Next returns the characteristic of the following lap.
func (c LapCharacteristic) Next() LapCharacteristic {
	if c == CharacteristicStraight {
		return CharacteristicCurve
	}
	return CharacteristicStraight
}

// StatAxis holds the two stat values of one contributor; the lap
// characteristic selects which one is active.
type StatAxis struct {
	Straight int `json:"straight"`
	Curve    int `json:"curve"`
}

func (a StatAxis) Value(c LapCharacteristic) int {
	if c == CharacteristicCurve {
		return a.Curve
	}
	return a.Straight
}

// ParticipantStats are the static contributors of one entry. They do
// not change during a race.
type ParticipantStats struct {
	Engine StatAxis `json:"engine"`
	Body   StatAxis `json:"body"`
	Pilot  StatAxis `json:"pilot"`
}

// Participant is the mutable per-race record of one competitor.
// Owned exclusively by its race; mutated only during turn resolution.
type Participant struct {
	PlayerID         string           `json:"playerId"`
	CarID            string           `json:"carId"`
	PilotID          string           `json:"pilotId"`
	Stats            ParticipantStats `json:"stats"`
	CurrentSector    int              `json:"currentSector"`
	PositionInSector int              `json:"positionInSector"` // 0 = best
	AccumulatedValue int              `json:"accumulatedValue"`
	CurrentLap       int              `json:"currentLap"`
	LapDone          bool             `json:"lapDone"` // reached finish sector this lap
	IsFinished       bool             `json:"isFinished"`
	FinishPosition   int              `json:"finishPosition"` // 1-based, 0 = none
	Hand             BoostHand        `json:"hand"`
}

func (p *Participant) clone() *Participant {
	ret := *p
	ret.Hand = p.Hand.clone()
	return &ret
}

// LapAction is one pending boost submission. It exists only until the
// turn it belongs to is resolved.
type LapAction struct {
	PlayerID   string `json:"playerId"`
	BoostValue int    `json:"boostValue"`
	Forced     bool   `json:"forced,omitempty"`
}
