package history

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/repository"
)

func Create(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
	snap *model.TurnSnapshot,
) error {
	_, err := conn.Exec(ctx, `
	insert into turn_history (race_id, turn_no, lap_no, phase, data)
	values ($1,$2,$3,$4,$5)
	`,
		raceID, snap.TurnNumber, snap.LapNumber, snap.Phase, snap)
	if err != nil {
		return err
	}
	return nil
}

// Filter narrows a history query. Zero values mean "no restriction".
type Filter struct {
	LapFrom  int
	LapTo    int
	TurnFrom int
	TurnTo   int
	PlayerID string
	Limit    int
	Offset   int
}

const defaultLimit = 50

// LoadByRace returns snapshot pairs of a race in turn order, filtered
// and paginated. The player filter is applied on the decoded snapshots
// since actions live inside the document.
func LoadByRace(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
	filter Filter,
) ([]model.TurnSnapshot, error) {
	sql := `select data from turn_history where race_id=$1`
	args := []interface{}{raceID}
	addCond := func(cond string, val int) {
		args = append(args, val)
		sql += fmt.Sprintf(" and %s $%d", cond, len(args))
	}
	if filter.LapFrom > 0 {
		addCond("lap_no >=", filter.LapFrom)
	}
	if filter.LapTo > 0 {
		addCond("lap_no <=", filter.LapTo)
	}
	if filter.TurnFrom > 0 {
		addCond("turn_no >=", filter.TurnFrom)
	}
	if filter.TurnTo > 0 {
		addCond("turn_no <=", filter.TurnTo)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	sql += fmt.Sprintf(
		" order by turn_no, phase desc limit %d offset %d", limit, filter.Offset)

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]model.TurnSnapshot, 0)
	for rows.Next() {
		var item model.TurnSnapshot
		if err := rows.Scan(&item); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.PlayerID != "" {
		ret = lo.Filter(ret, func(item model.TurnSnapshot, _ int) bool {
			return item.HasAction(filter.PlayerID)
		})
	}
	return ret, nil
}

// CountByRace returns the number of stored snapshots of a race.
func CountByRace(ctx context.Context, conn repository.Querier, raceID string) (
	int, error,
) {
	row := conn.QueryRow(ctx,
		"select count(*) from turn_history where race_id=$1", raceID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByRace removes all snapshots of a race, returns rows deleted.
func DeleteByRace(ctx context.Context, conn repository.Querier, raceID string) (
	int, error,
) {
	cmdTag, err := conn.Exec(ctx, "delete from turn_history where race_id=$1", raceID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
