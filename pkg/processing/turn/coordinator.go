// Package turn coordinates the submission and resolution of one turn.
package turn

import (
	"errors"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/movement"
)

type Phase string

const (
	PhaseWaitingForPlayers Phase = "waitingForPlayers"
	PhaseAllSubmitted      Phase = "allSubmitted"
	PhaseProcessing        Phase = "processing"
	PhaseComplete          Phase = "complete"
)

var (
	ErrRaceNotInProgress    = errors.New("race is not in progress")
	ErrPlayerNotActive      = errors.New("player is not an active participant")
	ErrDuplicateSubmission  = errors.New("player already submitted an action this turn")
	ErrNoActiveParticipants = movement.ErrNoActiveParticipants
	// re-exported so callers handle the whole taxonomy in one place
	ErrInvalidBoost     = model.ErrInvalidBoost
	ErrCardNotAvailable = model.ErrCardNotAvailable
)

// Status is returned after a successful submission or forced resolve.
// Report and the snapshots are only set when the turn resolved.
type Status struct {
	Phase          Phase
	SubmittedCount int
	TotalActive    int
	Report         *movement.Report
	PreSnapshot    *model.TurnSnapshot
	PostSnapshot   *model.TurnSnapshot
}

// Coordinator drives the turn state machine of one race. It is not
// safe for concurrent use; the owning registry serializes access per
// race (one race, one lock).
type Coordinator struct {
	race  *model.Race
	phase Phase
}

func NewCoordinator(race *model.Race) *Coordinator {
	return &Coordinator{race: race, phase: PhaseWaitingForPlayers}
}

func (c *Coordinator) Phase() Phase { return c.phase }

// SubmitAction records the boost of one player and consumes the
// matching card. The submission completing the turn triggers the
// resolution synchronously; deferred resolution has proven to produce
// stuck turns.
func (c *Coordinator) SubmitAction(playerID string, boost int) (*Status, error) {
	if c.phase != PhaseWaitingForPlayers {
		return nil, ErrDuplicateSubmission
	}
	if c.race.Status != model.RaceStatusInProgress {
		return nil, ErrRaceNotInProgress
	}
	if !model.ValidBoost(boost) {
		return nil, ErrInvalidBoost
	}
	p := c.race.Participant(playerID)
	if p == nil || p.IsFinished {
		return nil, ErrPlayerNotActive
	}
	if _, ok := c.race.PendingActions[playerID]; ok {
		return nil, ErrDuplicateSubmission
	}
	if err := p.Hand.Consume(boost); err != nil {
		return nil, err
	}
	if c.race.PendingActions == nil {
		c.race.PendingActions = make(map[string]model.LapAction)
	}
	c.race.PendingActions[playerID] = model.LapAction{
		PlayerID:   playerID,
		BoostValue: boost,
	}

	active := c.race.ActiveParticipants()
	if len(c.race.PendingActions) < len(active) {
		return &Status{
			Phase:          PhaseWaitingForPlayers,
			SubmittedCount: len(c.race.PendingActions),
			TotalActive:    len(active),
		}, nil
	}
	c.phase = PhaseAllSubmitted
	return c.resolve(len(active))
}

// ForceResolve is the operator escape hatch for a stalled turn:
// missing submissions are treated as boost 0 without consuming a card.
func (c *Coordinator) ForceResolve() (*Status, error) {
	if c.phase != PhaseWaitingForPlayers {
		return nil, ErrDuplicateSubmission
	}
	if c.race.Status != model.RaceStatusInProgress {
		return nil, ErrRaceNotInProgress
	}
	active := c.race.ActiveParticipants()
	if len(active) == 0 {
		return nil, ErrNoActiveParticipants
	}
	if c.race.PendingActions == nil {
		c.race.PendingActions = make(map[string]model.LapAction)
	}
	for _, p := range active {
		if _, ok := c.race.PendingActions[p.PlayerID]; !ok {
			c.race.PendingActions[p.PlayerID] = model.LapAction{
				PlayerID:   p.PlayerID,
				BoostValue: model.BoostMin,
				Forced:     true,
			}
		}
	}
	c.phase = PhaseAllSubmitted
	return c.resolve(len(active))
}

// resolve runs the movement pass exactly once and advances the race to
// the next turn. On a precondition failure the turn stays unresolved
// and the caller discards the working copy.
func (c *Coordinator) resolve(totalActive int) (*Status, error) {
	c.phase = PhaseProcessing
	actions := c.race.PendingActions
	pre := model.NewTurnSnapshot(c.race, model.SnapshotPhasePre, actions)
	report, err := movement.Resolve(c.race, actions)
	if err != nil {
		c.phase = PhaseAllSubmitted
		return nil, err
	}
	post := model.NewTurnSnapshot(c.race, model.SnapshotPhasePost, actions)
	c.race.History = append(c.race.History, pre, post)
	c.race.PendingActions = make(map[string]model.LapAction)
	c.race.CurrentTurn++
	c.phase = PhaseWaitingForPlayers

	return &Status{
		Phase:          PhaseComplete,
		SubmittedCount: 0,
		TotalActive:    totalActive,
		Report:         report,
		PreSnapshot:    &pre,
		PostSnapshot:   &post,
	}, nil
}
