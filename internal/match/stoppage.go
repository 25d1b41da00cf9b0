package match

import "time"

// stoppageCredits are the game-minutes credited to the current half per
// event type. Unlisted types earn no credit.
var stoppageCredits = map[EventType]float64{
	EventGoal:         0.5,
	EventYellowCard:   0.3,
	EventRedCard:      1.0,
	EventFoul:         0.2,
	EventSubstitution: 0.3,
	EventInjury:       1.5,
}

// StoppageCredit returns the stoppage credit for an event type.
func StoppageCredit(t EventType) float64 {
	return stoppageCredits[t]
}

// AccrueStoppage adds the event's stoppage credit to the match and stamps
// the last event time. Break and terminal phases earn no credit. It reports
// whether any credit was added.
func (m *Match) AccrueStoppage(t EventType, now time.Time) bool {
	switch m.Phase {
	case PhaseHalfTime, PhaseExtraTime, PhaseFullTime:
		return false
	}
	credit := StoppageCredit(t)
	if credit == 0 {
		return false
	}
	m.StoppageTime += credit
	ts := now
	m.LastEventAt = &ts
	return true
}

// Validate checks an event against the ledger contract.
func (e Event) Validate() error {
	if e.Minute < 0 || e.Minute > 120 {
		return ErrInvalidEvent
	}
	if !validEventTypes[e.Type] {
		return ErrInvalidEvent
	}
	if e.Team != SideHome && e.Team != SideAway {
		return ErrInvalidEvent
	}
	return nil
}
