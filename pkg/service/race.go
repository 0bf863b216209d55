// Package service implements the race lifecycle operations on top of
// the in-memory registry and the postgres repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pitgrid/boostrace-service-go/log"
	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/turn"
	"github.com/pitgrid/boostrace-service-go/pkg/repository/history"
	racerepo "github.com/pitgrid/boostrace-service-go/pkg/repository/race"
	"github.com/pitgrid/boostrace-service-go/pkg/utils"
)

var (
	ErrRaceNotFound       = utils.ErrRaceNotFound
	ErrInvalidRaceID      = errors.New("race id is not a valid uuid")
	ErrNoEntries          = errors.New("race needs at least one entry")
	ErrDuplicateEntry     = errors.New("duplicate player id in entries")
	ErrInvalidLapCount    = errors.New("total laps must be positive")
	ErrRaceAlreadyStarted = errors.New("race has already been started")
	ErrUnknownPlayer      = errors.New("player is not part of this race")
)

type Option func(*RaceService)

func WithPool(pool *pgxpool.Pool) Option {
	return func(s *RaceService) { s.pool = pool }
}

func WithLookup(lookup *utils.RaceLookup) Option {
	return func(s *RaceService) { s.lookup = lookup }
}

// WithTurnSink registers the channel resolved turns are published on.
// Events are dropped when the sink is full.
func WithTurnSink(sink chan<- TurnEvent) Option {
	return func(s *RaceService) { s.turnSink = sink }
}

func WithLogger(l *log.Logger) Option {
	return func(s *RaceService) { s.log = l }
}

type RaceService struct {
	pool     *pgxpool.Pool
	lookup   *utils.RaceLookup
	turnSink chan<- TurnEvent
	log      *log.Logger
}

func NewRaceService(opts ...Option) *RaceService {
	ret := &RaceService{
		lookup: utils.NewRaceLookup(),
		log:    log.Default().Named("service"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Lookup exposes the registry, mainly for startup recovery wiring.
func (s *RaceService) Lookup() *utils.RaceLookup { return s.lookup }

// RegisterRace creates a new race in waiting state. All entries start
// in the start sector in registration order with a fresh hand.
func (s *RaceService) RegisterRace(
	ctx context.Context,
	req *RegisterRaceRequest,
) (*model.Race, error) {
	if err := req.Track.Validate(); err != nil {
		return nil, err
	}
	if len(req.Entries) == 0 {
		return nil, ErrNoEntries
	}
	if req.TotalLaps <= 0 {
		return nil, ErrInvalidLapCount
	}
	seen := make(map[string]bool, len(req.Entries))
	for _, e := range req.Entries {
		if seen[e.PlayerID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.PlayerID)
		}
		seen[e.PlayerID] = true
	}
	characteristic := req.Characteristic
	if characteristic == "" {
		characteristic = model.CharacteristicStraight
	}

	race := &model.Race{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Track:          req.Track,
		Characteristic: characteristic,
		CurrentLap:     1,
		TotalLaps:      req.TotalLaps,
		CurrentTurn:    1,
		Status:         model.RaceStatusWaiting,
		PendingActions: make(map[string]model.LapAction),
	}
	startIdx := req.Track.StartIndex()
	for i, e := range req.Entries {
		race.Participants = append(race.Participants, &model.Participant{
			PlayerID:         e.PlayerID,
			CarID:            e.CarID,
			PilotID:          e.PilotID,
			Stats:            e.Stats,
			CurrentSector:    startIdx,
			PositionInSector: i,
			CurrentLap:       1,
			Hand:             model.NewBoostHand(),
		})
	}

	if err := racerepo.Create(ctx, s.pool, race); err != nil {
		return nil, err
	}
	s.lookup.AddRace(race)
	s.log.Info("race registered",
		log.String("raceId", race.ID),
		log.String("name", race.Name),
		log.Int("entries", len(race.Participants)))
	return race.Clone(), nil
}

// StartRace moves a waiting race into progress.
func (s *RaceService) StartRace(ctx context.Context, raceID string) error {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()
	if entry.Race.Status != model.RaceStatusWaiting {
		return ErrRaceAlreadyStarted
	}
	work := entry.Race.Clone()
	work.Status = model.RaceStatusInProgress
	if _, err := racerepo.Update(ctx, s.pool, work); err != nil {
		return err
	}
	entry.Race = work
	s.log.Info("race started", log.String("raceId", raceID))
	return nil
}

// SubmitAction records one boost submission. The last outstanding
// submission resolves the turn; the returned status carries the report
// and both snapshots in that case.
func (s *RaceService) SubmitAction(
	ctx context.Context,
	req *SubmitActionRequest,
) (*turn.Status, error) {
	entry, err := s.getEntry(req.RaceID)
	if err != nil {
		return nil, err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()

	work := entry.Race.Clone()
	status, err := turn.NewCoordinator(work).SubmitAction(req.PlayerID, req.BoostValue)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, work, status); err != nil {
		return nil, err
	}
	entry.Race = work
	s.emit(req.RaceID, status)
	return status, nil
}

// ForceResolve resolves the current turn treating missing submissions
// as boost 0 without consuming a card.
func (s *RaceService) ForceResolve(ctx context.Context, raceID string) (
	*turn.Status, error,
) {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return nil, err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()

	work := entry.Race.Clone()
	status, err := turn.NewCoordinator(work).ForceResolve()
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, work, status); err != nil {
		return nil, err
	}
	entry.Race = work
	s.log.Warn("turn force-resolved",
		log.String("raceId", raceID),
		log.Int("turn", status.PostSnapshot.TurnNumber))
	s.emit(raceID, status)
	return status, nil
}

func (s *RaceService) GetTurnPhase(raceID string) (*TurnPhaseInfo, error) {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return nil, err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()

	r := entry.Race
	active := r.ActiveParticipants()
	ret := &TurnPhaseInfo{
		RaceID:         r.ID,
		TurnNumber:     r.CurrentTurn,
		LapNumber:      r.CurrentLap,
		Characteristic: r.Characteristic,
		Phase:          turn.PhaseWaitingForPlayers,
		SubmittedCount: len(r.PendingActions),
		TotalActive:    len(active),
		Status:         r.Status,
	}
	for _, p := range active {
		if _, ok := r.PendingActions[p.PlayerID]; ok {
			ret.Submitted = append(ret.Submitted, p.PlayerID)
		} else {
			ret.Pending = append(ret.Pending, p.PlayerID)
		}
	}
	if r.Status == model.RaceStatusFinished {
		ret.Phase = turn.PhaseComplete
	}
	return ret, nil
}

func (s *RaceService) GetBoostAvailability(raceID, playerID string) (
	*BoostAvailability, error,
) {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return nil, err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()

	p := entry.Race.Participant(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	return &BoostAvailability{
		PlayerID:        playerID,
		Available:       p.Hand.Available(),
		CycleNumber:     p.Hand.CycleNumber,
		CyclesCompleted: p.Hand.CyclesCompleted,
		UntilReplenish:  p.Hand.RemainingUntilReplenish(),
	}, nil
}

// GetLocalView returns the sectors within radius around the player's
// current sector, including their occupants.
func (s *RaceService) GetLocalView(raceID, playerID string, radius int) (
	*LocalView, error,
) {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return nil, err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()

	r := entry.Race
	p := r.Participant(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if radius < 0 {
		radius = 0
	}
	lo := max(0, p.CurrentSector-radius)
	hi := min(len(r.Track.Sectors)-1, p.CurrentSector+radius)

	ret := &LocalView{
		RaceID:         r.ID,
		PlayerID:       playerID,
		Characteristic: r.Characteristic,
		CurrentLap:     r.CurrentLap,
		TotalLaps:      r.TotalLaps,
	}
	for idx := lo; idx <= hi; idx++ {
		view := LocalSectorView{Sector: r.Track.Sectors[idx], Index: idx}
		for _, occ := range r.SectorOccupants(idx) {
			view.Occupants = append(view.Occupants, model.OccupantState{
				PlayerID:         occ.PlayerID,
				PositionInSector: occ.PositionInSector,
				AccumulatedValue: occ.AccumulatedValue,
				CurrentLap:       occ.CurrentLap,
				LapDone:          occ.LapDone,
				IsFinished:       occ.IsFinished,
			})
		}
		ret.Sectors = append(ret.Sectors, view)
	}
	return ret, nil
}

// GetTurnHistory reads persisted snapshots; it does not touch the
// in-memory race and needs no lock.
func (s *RaceService) GetTurnHistory(
	ctx context.Context,
	req *HistoryRequest,
) (*HistoryPage, error) {
	if err := uuid.Validate(req.RaceID); err != nil {
		return nil, ErrInvalidRaceID
	}
	snaps, err := history.LoadByRace(ctx, s.pool, req.RaceID, req.Filter)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{RaceID: req.RaceID, Snapshots: snaps}, nil
}

// UnregisterRace persists the current state and removes the race from
// the registry. The database rows remain.
func (s *RaceService) UnregisterRace(ctx context.Context, raceID string) error {
	entry, err := s.getEntry(raceID)
	if err != nil {
		return err
	}
	entry.Mutex.Lock()
	defer entry.Mutex.Unlock()
	if _, err := racerepo.Update(ctx, s.pool, entry.Race); err != nil {
		return err
	}
	s.lookup.RemoveRace(raceID)
	s.log.Info("race unregistered", log.String("raceId", raceID))
	return nil
}

func (s *RaceService) getEntry(raceID string) (*utils.RaceEntry, error) {
	if err := uuid.Validate(raceID); err != nil {
		return nil, ErrInvalidRaceID
	}
	return s.lookup.GetRace(raceID)
}

// persist writes the race document and, when the turn resolved, both
// snapshots in one transaction. The in-memory swap only happens after
// this commits.
func (s *RaceService) persist(
	ctx context.Context,
	work *model.Race,
	status *turn.Status,
) error {
	if status.Phase != turn.PhaseComplete {
		_, err := racerepo.Update(ctx, s.pool, work)
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := racerepo.Update(ctx, tx, work); err != nil {
			return err
		}
		if err := history.Create(ctx, tx, work.ID, status.PreSnapshot); err != nil {
			return err
		}
		return history.Create(ctx, tx, work.ID, status.PostSnapshot)
	})
}

func (s *RaceService) emit(raceID string, status *turn.Status) {
	if status.Phase != turn.PhaseComplete || s.turnSink == nil {
		return
	}
	event := TurnEvent{
		RaceID: raceID,
		Report: status.Report,
		Pre:    status.PreSnapshot,
		Post:   status.PostSnapshot,
	}
	select {
	case s.turnSink <- event:
	default:
		s.log.Warn("turn event dropped, sink full", log.String("raceId", raceID))
	}
}
