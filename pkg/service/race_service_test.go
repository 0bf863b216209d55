//nolint:funlen // ok for this test code
package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/processing/turn"
	"github.com/pitgrid/boostrace-service-go/testsupport/basedata"
	"github.com/pitgrid/boostrace-service-go/testsupport/testdb"
)

func sampleRegisterRequest() *RegisterRaceRequest {
	return &RegisterRaceRequest{
		Name:      "testrace",
		Track:     basedata.SampleTrack(),
		TotalLaps: 2,
		Entries: []RaceEntryRequest{
			{PlayerID: "alice", CarID: "car1", Stats: basedata.SampleStats(5, 3)},
			{PlayerID: "bob", CarID: "car2", Stats: basedata.SampleStats(4, 4)},
			{PlayerID: "carol", CarID: "car3", Stats: basedata.SampleStats(3, 5)},
		},
	}
}

func newTestService(pool *pgxpool.Pool, sink chan TurnEvent) *RaceService {
	opts := []Option{WithPool(pool)}
	if sink != nil {
		opts = append(opts, WithTurnSink(sink))
	}
	return NewRaceService(opts...)
}

func TestRaceService_Lifecycle(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sink := make(chan TurnEvent, 4)
	svc := newTestService(pool, sink)

	race, err := svc.RegisterRace(ctx, sampleRegisterRequest())
	assert.NilError(t, err)
	assert.Equal(t, model.RaceStatusWaiting, race.Status)
	assert.Equal(t, 3, len(race.Participants))

	// no submissions before the race started
	_, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "alice", BoostValue: 1})
	assert.ErrorIs(t, err, turn.ErrRaceNotInProgress)

	assert.NilError(t, svc.StartRace(ctx, race.ID))
	assert.ErrorIs(t, svc.StartRace(ctx, race.ID), ErrRaceAlreadyStarted)

	status, err := svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "alice", BoostValue: 2})
	assert.NilError(t, err)
	assert.Equal(t, turn.PhaseWaitingForPlayers, status.Phase)
	assert.Equal(t, 1, status.SubmittedCount)

	phase, err := svc.GetTurnPhase(race.ID)
	assert.NilError(t, err)
	assert.Equal(t, 1, phase.SubmittedCount)
	assert.Equal(t, 3, phase.TotalActive)
	assert.Equal(t, 1, phase.TurnNumber)
	assert.DeepEqual(t, []string{"alice"}, phase.Submitted)
	assert.DeepEqual(t, []string{"bob", "carol"}, phase.Pending)

	_, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "bob", BoostValue: 1})
	assert.NilError(t, err)

	status, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "carol", BoostValue: 0})
	assert.NilError(t, err)
	assert.Equal(t, turn.PhaseComplete, status.Phase)
	assert.Assert(t, status.Report != nil)

	// the resolved turn is published on the sink
	event := <-sink
	assert.Equal(t, race.ID, event.RaceID)
	assert.Assert(t, event.Post != nil)

	phase, err = svc.GetTurnPhase(race.ID)
	assert.NilError(t, err)
	assert.Equal(t, 2, phase.TurnNumber)
	assert.Equal(t, 0, phase.SubmittedCount)

	boost, err := svc.GetBoostAvailability(race.ID, "alice")
	assert.NilError(t, err)
	assert.DeepEqual(t, []int{0, 1, 3, 4}, boost.Available)
	assert.Equal(t, 4, boost.UntilReplenish)

	view, err := svc.GetLocalView(race.ID, "alice", 1)
	assert.NilError(t, err)
	// alice advanced to sector 1, radius 1 covers sectors 0..2
	assert.Equal(t, 3, len(view.Sectors))
	assert.Equal(t, 0, view.Sectors[0].Index)
	assert.Equal(t, 2, view.Sectors[2].Index)

	hist, err := svc.GetTurnHistory(ctx, &HistoryRequest{RaceID: race.ID})
	assert.NilError(t, err)
	assert.Equal(t, 2, len(hist.Snapshots))
	assert.Equal(t, model.SnapshotPhasePre, hist.Snapshots[0].Phase)
	assert.Equal(t, model.SnapshotPhasePost, hist.Snapshots[1].Phase)

	assert.NilError(t, svc.UnregisterRace(ctx, race.ID))
	_, err = svc.GetTurnPhase(race.ID)
	assert.ErrorIs(t, err, ErrRaceNotFound)
}

func TestRaceService_ForceResolve(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	svc := newTestService(pool, nil)

	race, err := svc.RegisterRace(ctx, sampleRegisterRequest())
	assert.NilError(t, err)
	assert.NilError(t, svc.StartRace(ctx, race.ID))

	_, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "alice", BoostValue: 3})
	assert.NilError(t, err)

	status, err := svc.ForceResolve(ctx, race.ID)
	assert.NilError(t, err)
	assert.Equal(t, turn.PhaseComplete, status.Phase)

	// forced entries did not consume a card
	boost, err := svc.GetBoostAvailability(race.ID, "bob")
	assert.NilError(t, err)
	assert.Equal(t, 5, len(boost.Available))
}

func TestRaceService_FailedSubmissionLeavesStateUntouched(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	svc := newTestService(pool, nil)

	race, err := svc.RegisterRace(ctx, sampleRegisterRequest())
	assert.NilError(t, err)
	assert.NilError(t, svc.StartRace(ctx, race.ID))

	_, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "alice", BoostValue: 2})
	assert.NilError(t, err)

	_, err = svc.SubmitAction(ctx,
		&SubmitActionRequest{RaceID: race.ID, PlayerID: "alice", BoostValue: 3})
	assert.ErrorIs(t, err, turn.ErrDuplicateSubmission)

	// the rejected submission must not have consumed the card
	boost, err := svc.GetBoostAvailability(race.ID, "alice")
	assert.NilError(t, err)
	assert.DeepEqual(t, []int{0, 1, 3, 4}, boost.Available)
}

func TestRaceService_RegisterValidation(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	svc := newTestService(pool, nil)

	t.Run("no entries", func(t *testing.T) {
		req := sampleRegisterRequest()
		req.Entries = nil
		_, err := svc.RegisterRace(ctx, req)
		assert.ErrorIs(t, err, ErrNoEntries)
	})
	t.Run("duplicate entry", func(t *testing.T) {
		req := sampleRegisterRequest()
		req.Entries = append(req.Entries, req.Entries[0])
		_, err := svc.RegisterRace(ctx, req)
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})
	t.Run("invalid lap count", func(t *testing.T) {
		req := sampleRegisterRequest()
		req.TotalLaps = 0
		_, err := svc.RegisterRace(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidLapCount)
	})
	t.Run("invalid track", func(t *testing.T) {
		req := sampleRegisterRequest()
		req.Track.Sectors = req.Track.Sectors[:1]
		_, err := svc.RegisterRace(ctx, req)
		assert.ErrorIs(t, err, model.ErrTrackTooShort)
	})
}

func TestRaceService_UnknownRace(t *testing.T) {
	pool := testdb.InitTestDb()
	svc := newTestService(pool, nil)

	_, err := svc.GetTurnPhase("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidRaceID)

	_, err = svc.GetTurnPhase(uuid.New().String())
	assert.ErrorIs(t, err, ErrRaceNotFound)
}
