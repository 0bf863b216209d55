package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
)

func TestRaceLookup(t *testing.T) {
	l := NewRaceLookup()
	race := &model.Race{ID: "race1"}

	entry := l.AddRace(race)
	assert.NotNil(t, entry)

	got, err := l.GetRace("race1")
	assert.NoError(t, err)
	assert.Same(t, entry, got)

	// registering again keeps the existing entry (and its mutex)
	again := l.AddRace(&model.Race{ID: "race1"})
	assert.Same(t, entry, again)

	l.AddRace(&model.Race{ID: "race2"})
	assert.ElementsMatch(t, []string{"race1", "race2"}, l.RaceIDs())

	l.RemoveRace("race1")
	_, err = l.GetRace("race1")
	assert.ErrorIs(t, err, ErrRaceNotFound)
}
