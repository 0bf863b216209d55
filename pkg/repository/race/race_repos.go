package race

import (
	"context"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
	"github.com/pitgrid/boostrace-service-go/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, race *model.Race) error {
	_, err := conn.Exec(ctx, `
	insert into race (id, name, status, current_lap, current_turn, data)
	values ($1,$2,$3,$4,$5,$6)
	`,
		race.ID, race.Name, race.Status, race.CurrentLap, race.CurrentTurn, race)
	if err != nil {
		return err
	}
	return nil
}

// Update rewrites the whole race document, returns rows updated.
func Update(ctx context.Context, conn repository.Querier, race *model.Race) (
	int, error,
) {
	cmdTag, err := conn.Exec(ctx, `
	update race set name=$1, status=$2, current_lap=$3, current_turn=$4, data=$5
	where id=$6
	`,
		race.Name, race.Status, race.CurrentLap, race.CurrentTurn, race, race.ID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func LoadByID(ctx context.Context, conn repository.Querier, id string) (
	*model.Race, error,
) {
	row := conn.QueryRow(ctx, "select data from race where id=$1", id)
	var item model.Race
	if err := row.Scan(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// LoadByStatus returns the documents of all races in the given status.
// Used at startup to repopulate the registry with unfinished races.
func LoadByStatus(
	ctx context.Context,
	conn repository.Querier,
	status model.RaceStatus,
) ([]*model.Race, error) {
	rows, err := conn.Query(ctx,
		"select data from race where status=$1 order by record_stamp", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Race, 0)
	for rows.Next() {
		var item model.Race
		if err := rows.Scan(&item); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
