package engine

import (
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/rylis/touchline/internal/match"
)

// simulatedEventTypes weight the random draw toward the common events.
var simulatedEventTypes = []match.EventType{
	match.EventGoal,
	match.EventShot,
	match.EventShot,
	match.EventCorner,
	match.EventFoul,
	match.EventFoul,
	match.EventYellowCard,
	match.EventSubstitution,
}

// SimulateMatch plays a whole match instantly: a handful of random
// events land in the ledger, then the finish sequence runs as usual.
func (e *Engine) SimulateMatch(id string, dryRun bool) (*match.Match, error) {
	started := false
	m, err := e.withMatch(id, func(m *match.Match) error {
		if m.Status == match.StatusFinished {
			return ErrAlreadyFinished
		}
		if m.Status == match.StatusScheduled {
			if err := e.kickOff(m); err != nil {
				return err
			}
			started = true
		}

		now := e.now()
		count := rand.Intn(6)
		minutes := make([]int, count)
		for i := range minutes {
			minutes[i] = rand.Intn(90) + 1
		}
		sort.Ints(minutes)

		for _, minute := range minutes {
			ev := match.Event{
				Minute: minute,
				Type:   simulatedEventTypes[rand.Intn(len(simulatedEventTypes))],
				Team:   match.SideHome,
			}
			if rand.Intn(2) == 1 {
				ev.Team = match.SideAway
			}
			if ev.Type == match.EventShot {
				ev.OnTarget = rand.Intn(2) == 1
			}
			m.Events = append(m.Events, ev)
			if ev.Type == match.EventGoal {
				if ev.Team == match.SideHome {
					m.Score.Home++
				} else {
					m.Score.Away++
				}
			}
			m.AccrueStoppage(ev.Type, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		e.metrics.IncMatchesStarted()
	}
	log.Info("Match simulated", "match", m.ID, "events", len(m.Events))
	return e.FinishMatch(id, dryRun)
}
