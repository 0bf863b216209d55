package service

import (
	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/movement"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/turn"
	"github.com/pitgrid/boostrace-service-go/pkg/repository/history"
)

// RaceEntryRequest describes one competitor of a race to be registered.
type RaceEntryRequest struct {
	PlayerID string                 `json:"playerId"`
	CarID    string                 `json:"carId"`
	PilotID  string                 `json:"pilotId"`
	Stats    model.ParticipantStats `json:"stats"`
}

type RegisterRaceRequest struct {
	Name           string                  `json:"name"`
	Track          model.Track             `json:"track"`
	Entries        []RaceEntryRequest      `json:"entries"`
	TotalLaps      int                     `json:"totalLaps"`
	Characteristic model.LapCharacteristic `json:"characteristic"`
}

type SubmitActionRequest struct {
	RaceID     string `json:"raceId"`
	PlayerID   string `json:"playerId"`
	BoostValue int    `json:"boostValue"`
}

// TurnPhaseInfo is the public view of the turn state machine.
type TurnPhaseInfo struct {
	RaceID         string                  `json:"raceId"`
	TurnNumber     int                     `json:"turnNumber"`
	LapNumber      int                     `json:"lapNumber"`
	Characteristic model.LapCharacteristic `json:"characteristic"`
	Phase          turn.Phase              `json:"phase"`
	SubmittedCount int                     `json:"submittedCount"`
	TotalActive    int                     `json:"totalActive"`
	Submitted      []string                `json:"submitted"`
	Pending        []string                `json:"pending"`
	Status         model.RaceStatus        `json:"status"`
}

// BoostAvailability reports the hand of one participant.
type BoostAvailability struct {
	PlayerID        string `json:"playerId"`
	Available       []int  `json:"available"`
	CycleNumber     int    `json:"cycleNumber"`
	CyclesCompleted int    `json:"cyclesCompleted"`
	UntilReplenish  int    `json:"untilReplenish"`
}

// LocalView is the track excerpt around one participant. Sectors
// outside the radius are omitted.
type LocalView struct {
	RaceID         string                  `json:"raceId"`
	PlayerID       string                  `json:"playerId"`
	Characteristic model.LapCharacteristic `json:"characteristic"`
	CurrentLap     int                     `json:"currentLap"`
	TotalLaps      int                     `json:"totalLaps"`
	Sectors        []LocalSectorView       `json:"sectors"`
}

type LocalSectorView struct {
	Sector    model.Sector          `json:"sector"`
	Index     int                   `json:"index"`
	Occupants []model.OccupantState `json:"occupants"`
}

// HistoryRequest selects turn snapshots of a race.
type HistoryRequest struct {
	RaceID string         `json:"raceId"`
	Filter history.Filter `json:"filter"`
}

type HistoryPage struct {
	RaceID    string               `json:"raceId"`
	Snapshots []model.TurnSnapshot `json:"snapshots"`
}

// TurnEvent is emitted after a turn resolved and its state committed.
type TurnEvent struct {
	RaceID string              `json:"raceId"`
	Report *movement.Report    `json:"report"`
	Pre    *model.TurnSnapshot `json:"pre"`
	Post   *model.TurnSnapshot `json:"post"`
}
