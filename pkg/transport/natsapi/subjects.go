package natsapi

import "fmt"

// Request/reply subjects served by the endpoint.
const (
	SubjectRegister   = "brs.race.register"
	SubjectStart      = "brs.race.start"
	SubjectSubmit     = "brs.race.submit"
	SubjectForce      = "brs.race.force"
	SubjectPhase      = "brs.race.phase"
	SubjectBoost      = "brs.race.boost"
	SubjectView       = "brs.race.view"
	SubjectHistory    = "brs.race.history"
	SubjectUnregister = "brs.race.unregister"
)

// SubjectForRaceTurn is the per-race subject resolved turns are
// published on.
func SubjectForRaceTurn(raceID string) string {
	return fmt.Sprintf("brs.race.%s.turn", raceID)
}
