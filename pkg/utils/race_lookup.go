package utils

import (
	"errors"
	"sync"

	"github.com/pitgrid/boostrace-service-go/pkg/model"
)

var ErrRaceNotFound = errors.New("race not found")

// RaceEntry pins one race in memory. Its mutex is the serialization
// domain of the race: every submit/resolve/read of the aggregate runs
// while holding it. Races are independent of each other.
type RaceEntry struct {
	Mutex sync.Mutex
	Race  *model.Race
}

// RaceLookup is the in-memory registry of running races.
type RaceLookup struct {
	mutex  sync.RWMutex
	lookup map[string]*RaceEntry
}

func NewRaceLookup() *RaceLookup {
	return &RaceLookup{lookup: make(map[string]*RaceEntry)}
}

// AddRace registers a race. A race already present is left untouched.
func (l *RaceLookup) AddRace(race *model.Race) *RaceEntry {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if entry, ok := l.lookup[race.ID]; ok {
		return entry
	}
	entry := &RaceEntry{Race: race}
	l.lookup[race.ID] = entry
	return entry
}

func (l *RaceLookup) GetRace(raceID string) (*RaceEntry, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if entry, ok := l.lookup[raceID]; ok {
		return entry, nil
	}
	return nil, ErrRaceNotFound
}

func (l *RaceLookup) RemoveRace(raceID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.lookup, raceID)
}

// RaceIDs returns the ids of all registered races.
func (l *RaceLookup) RaceIDs() []string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	ret := make([]string, 0, len(l.lookup))
	for k := range l.lookup {
		ret = append(ret, k)
	}
	return ret
}
