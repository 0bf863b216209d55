//nolint:funlen,errcheck // ok for this test code
package history

import (
	"context"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	racerepo "github.com/pitgrid/boostrace-service-go/pkg/repository/race"
	"github.com/pitgrid/boostrace-service-go/testsupport/basedata"
	"github.com/pitgrid/boostrace-service-go/testsupport/testdb"
)

// seeds a race with pre/post snapshot pairs for the given turns.
// Odd turns carry an action of alice, even turns of bob.
func seedHistory(db *pgxpool.Pool, turns int) *model.Race {
	ctx := context.Background()
	race := basedata.SampleRace(uuid.New().String())
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if err := racerepo.Create(ctx, tx, race); err != nil {
			return err
		}
		for turn := 1; turn <= turns; turn++ {
			player := "alice"
			if turn%2 == 0 {
				player = "bob"
			}
			race.CurrentTurn = turn
			race.CurrentLap = (turn + 1) / 2
			actions := map[string]model.LapAction{
				player: {PlayerID: player, BoostValue: turn % 5},
			}
			for _, phase := range []string{
				model.SnapshotPhasePre, model.SnapshotPhasePost,
			} {
				snap := model.NewTurnSnapshot(race, phase, actions)
				if err := Create(ctx, tx, race.ID, &snap); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seedHistory: %v\n", err)
	}
	return race
}

func TestLoadByRace(t *testing.T) {
	pool := testdb.InitTestDb()
	race := seedHistory(pool, 4)

	t.Run("all snapshots in turn order", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool, race.ID, Filter{})
		assert.NilError(t, err)
		assert.Equal(t, 8, len(got))
		assert.Equal(t, 1, got[0].TurnNumber)
		assert.Equal(t, model.SnapshotPhasePre, got[0].Phase)
		assert.Equal(t, model.SnapshotPhasePost, got[1].Phase)
		assert.Equal(t, 4, got[7].TurnNumber)
	})

	t.Run("turn range", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool, race.ID,
			Filter{TurnFrom: 2, TurnTo: 3})
		assert.NilError(t, err)
		assert.Equal(t, 4, len(got))
		assert.Equal(t, 2, got[0].TurnNumber)
		assert.Equal(t, 3, got[3].TurnNumber)
	})

	t.Run("lap filter", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool, race.ID,
			Filter{LapFrom: 2, LapTo: 2})
		assert.NilError(t, err)
		// turns 3 and 4 belong to lap 2
		assert.Equal(t, 4, len(got))
		assert.Equal(t, 3, got[0].TurnNumber)
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool, race.ID,
			Filter{Limit: 3, Offset: 2})
		assert.NilError(t, err)
		assert.Equal(t, 3, len(got))
		assert.Equal(t, 2, got[0].TurnNumber)
	})

	t.Run("player filter", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool, race.ID,
			Filter{PlayerID: "bob"})
		assert.NilError(t, err)
		// bob acted in turns 2 and 4, pre and post each
		assert.Equal(t, 4, len(got))
		for _, snap := range got {
			assert.Assert(t, snap.HasAction("bob"))
		}
	})

	t.Run("unknown race yields empty result", func(t *testing.T) {
		got, err := LoadByRace(context.Background(), pool,
			uuid.New().String(), Filter{})
		assert.NilError(t, err)
		assert.Equal(t, 0, len(got))
	})
}

func TestCountByRace(t *testing.T) {
	pool := testdb.InitTestDb()
	race := seedHistory(pool, 3)

	count, err := CountByRace(context.Background(), pool, race.ID)
	assert.NilError(t, err)
	assert.Equal(t, 6, count)
}

func TestDeleteByRace(t *testing.T) {
	pool := testdb.InitTestDb()
	race := seedHistory(pool, 2)

	num, err := DeleteByRace(context.Background(), pool, race.ID)
	assert.NilError(t, err)
	assert.Equal(t, 4, num)

	count, err := CountByRace(context.Background(), pool, race.ID)
	assert.NilError(t, err)
	assert.Equal(t, 0, count)
}
