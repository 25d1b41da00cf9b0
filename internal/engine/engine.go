package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
)

// casRetries bounds the re-fetch loop when a revision-checked write
// loses a race.
const casRetries = 3

// withMatch runs fn against a fresh copy of the match and writes it
// back, retrying on revision conflicts.
func (e *Engine) withMatch(id string, fn func(m *match.Match) error) (*match.Match, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		m, err := e.matches.Get(id)
		if err != nil {
			return nil, err
		}
		if err := fn(m); err != nil {
			return nil, err
		}
		err = e.matches.Update(m)
		if errors.Is(err, match.ErrRevisionConflict) {
			log.Debug("Revision conflict, retrying", "match", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, match.ErrRevisionConflict
}

func (e *Engine) clockOptions() match.ClockOptions {
	return match.ClockOptions{StoppageInDisplay: e.clock.StoppageInDisplay}
}

// CreateMatch inserts an empty fixture in the current season. Teams,
// kickoff and venue are attached later via ScheduleMatch.
func (e *Engine) CreateMatch() (*match.Match, error) {
	m := &match.Match{
		ID:          uuid.NewString(),
		Season:      e.league.Season,
		Competition: e.league.Competition,
		Stage:       match.StageLeague,
		Status:      match.StatusScheduled,
	}
	if err := e.matches.Create(m); err != nil {
		return nil, err
	}
	log.Info("Match created", "match", m.ID)
	return m, nil
}

// GetMatch retrieves a match with its clock derived to now, without
// persisting any transitions.
func (e *Engine) GetMatch(id string) (*match.Match, match.Reading, error) {
	m, err := e.matches.Get(id)
	if err != nil {
		return nil, match.Reading{}, err
	}
	r := match.Derive(*m, e.now(), e.clockOptions())
	return m, r, nil
}

// ListMatches returns every match ordered by kickoff.
func (e *Engine) ListMatches() ([]*match.Match, error) {
	return e.matches.List()
}

// ScheduleMatch attaches teams, kickoff and venue to a pending fixture.
// When the requested instant is occupied the engine probes forward in
// two-hour steps a handful of times before giving up.
func (e *Engine) ScheduleMatch(id string, params ScheduleParams) (*match.Match, error) {
	if params.HomeClubID == params.AwayClubID && params.HomeClubID != "" {
		return nil, ErrSameClubs
	}
	for _, clubID := range []string{params.HomeClubID, params.AwayClubID} {
		if clubID != "" && !e.clubs.IsKnownClub(clubID) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClub, clubID)
		}
	}

	return e.withMatch(id, func(m *match.Match) error {
		if m.Status != match.StatusScheduled {
			return ErrAlreadyLive
		}
		if params.HomeClubID != "" {
			m.HomeClubID = params.HomeClubID
		}
		if params.AwayClubID != "" {
			m.AwayClubID = params.AwayClubID
		}
		if m.HomeClubID != "" && m.HomeClubID == m.AwayClubID {
			return ErrSameClubs
		}
		if params.Venue != "" {
			m.Venue = params.Venue
		}
		if params.AutoSimulate != nil {
			m.AutoSimulate = *params.AutoSimulate
		}
		if params.KickoffAt != nil {
			kickoff, err := e.probeKickoff(*params.KickoffAt, m)
			if err != nil {
				return err
			}
			m.KickoffAt = &kickoff
		}
		return nil
	})
}

// probeKickoff walks forward from the requested instant in two-hour
// steps until both hard constraints clear: a free instant and no
// same-day fixture for either club.
func (e *Engine) probeKickoff(requested time.Time, m *match.Match) (time.Time, error) {
	for i := 0; i < 6; i++ {
		candidate := requested.Add(time.Duration(i) * 2 * time.Hour)
		taken, err := e.matches.KickoffTaken(candidate, m.ID)
		if err != nil {
			return time.Time{}, err
		}
		if taken {
			continue
		}
		busy := false
		for _, clubID := range []string{m.HomeClubID, m.AwayClubID} {
			if clubID == "" {
				continue
			}
			b, err := e.matches.ClubBusyOn(clubID, candidate, m.ID)
			if err != nil {
				return time.Time{}, err
			}
			if b {
				busy = true
				break
			}
		}
		if !busy {
			return candidate, nil
		}
	}
	return time.Time{}, ErrSlotUnavailable
}

// StartMatch kicks off a fully scheduled fixture.
func (e *Engine) StartMatch(id string, dryRun bool) (*match.Match, error) {
	m, err := e.withMatch(id, func(m *match.Match) error {
		return e.kickOff(m)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.IncMatchesStarted()
	e.publish(bus.Event{Type: bus.EventMatchStarted, MatchID: m.ID, Payload: m})
	home, away := e.lookupClubs(m)
	if err := e.notifier.SendKickoffNotification(m, home, away, dryRun); err != nil {
		log.Error("Failed to send kickoff notification", "match", m.ID, "error", err)
	}
	log.Info("Match started", "match", m.ID, "home", m.HomeClubID, "away", m.AwayClubID, "acceleration", m.TimeAcceleration)

	if m.AutoSimulate {
		return e.SimulateMatch(m.ID, dryRun)
	}
	return m, nil
}

// kickOff flips a scheduled match live, seeding the clock state.
func (e *Engine) kickOff(m *match.Match) error {
	switch m.Status {
	case match.StatusLive:
		return ErrAlreadyLive
	case match.StatusFinished:
		return ErrAlreadyFinished
	}
	if !m.IsScheduledComplete() {
		return ErrNotSchedulable
	}

	now := e.now()
	m.Status = match.StatusLive
	m.Phase = match.PhaseFirstHalf
	m.MatchStartedAt = &now
	m.CurrentMinute = 0
	m.StoppageTime = 0
	m.Score = match.Score{}
	if m.TimeAcceleration == 0 {
		m.TimeAcceleration = e.clock.DefaultAcceleration
	}
	m.HalfTimeBreak = e.clock.HalfTimeBreak
	m.ExtraTimeBreak = e.clock.ExtraTimeBreak
	return nil
}

// RecordEvent appends an event to the ledger, projecting the score and
// accruing stoppage credit. Recording against a fully scheduled match
// that has not kicked off starts it implicitly.
func (e *Engine) RecordEvent(id string, ev match.Event, dryRun bool) (*match.Match, error) {
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
		reading, _ := match.Advance(m, now, e.clockOptions())
		// A negative minute asks for a clock stamp; zero is a real
		// kickoff-minute event and stays as given.
		if ev.Minute < 0 {
			ev.Minute = reading.Minute
		}
		if err := ev.Validate(); err != nil {
			return err
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
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		e.metrics.IncMatchesStarted()
		e.publish(bus.Event{Type: bus.EventMatchStarted, MatchID: m.ID, Payload: m})
	}
	e.metrics.IncMatchEvents()
	e.publish(bus.Event{Type: bus.EventMatchEvent, MatchID: m.ID, Payload: map[string]any{
		"event": ev,
		"score": m.Score,
	}})
	log.Debug("Event recorded", "match", m.ID, "type", ev.Type, "minute", ev.Minute)
	return m, nil
}

// CurrentTime derives the live clock, persisting any phase transitions
// the elapsed time implies. Reads of scheduled or finished matches cost
// no write.
func (e *Engine) CurrentTime(id string) (match.Reading, *match.Match, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		m, err := e.matches.Get(id)
		if err != nil {
			return match.Reading{}, nil, err
		}
		reading, changed := match.Advance(m, e.now(), e.clockOptions())
		if !changed {
			return reading, m, nil
		}
		err = e.matches.Update(m)
		if errors.Is(err, match.ErrRevisionConflict) {
			continue
		}
		if err != nil {
			return match.Reading{}, nil, err
		}
		return reading, m, nil
	}
	return match.Reading{}, nil, match.ErrRevisionConflict
}

// SetTimeAcceleration changes the clock speed of a live match without
// disturbing the elapsed game time.
func (e *Engine) SetTimeAcceleration(id string, accel int) (*match.Match, error) {
	if accel < 1 || accel > 300 {
		return nil, ErrInvalidAcceleration
	}
	return e.withMatch(id, func(m *match.Match) error {
		if m.Status != match.StatusLive {
			return ErrNotLive
		}
		m.SetAcceleration(accel, e.now())
		log.Info("Time acceleration changed", "match", m.ID, "acceleration", accel)
		return nil
	})
}

// SetManualTime forces the clock of a live match to a given minute and
// phase, for demos and recovery.
func (e *Engine) SetManualTime(id string, minute int, phase match.Phase) (*match.Match, error) {
	if minute < 0 || minute > 120 {
		return nil, ErrInvalidMinute
	}
	if !match.ValidPhase(phase) {
		return nil, ErrInvalidPhase
	}
	return e.withMatch(id, func(m *match.Match) error {
		if m.Status != match.StatusLive {
			return ErrNotLive
		}
		m.SetManualClock(minute, phase, e.now())
		log.Info("Clock set manually", "match", m.ID, "minute", minute, "phase", phase)
		return nil
	})
}

// FinishMatch brings a match to full time: the report is built, the
// result folds into the table and the knockout bracket advances when
// it is due. A fully scheduled fixture that never kicked off is
// started implicitly, so it ends in the books as a goalless draw.
// Announcement failures are logged, never fatal.
func (e *Engine) FinishMatch(id string, dryRun bool) (*match.Match, error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveProcessingDuration(time.Since(start).Seconds())
	}()

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
		m.Status = match.StatusFinished
		m.SetManualClock(maxInt(m.CurrentMinute, 90), match.PhaseFullTime, now)
		m.FinishedAt = &now
		m.Report = match.BuildReport(m, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		e.metrics.IncMatchesStarted()
		e.publish(bus.Event{Type: bus.EventMatchStarted, MatchID: m.ID, Payload: m})
	}
	e.metrics.IncMatchesFinished()
	e.publish(bus.Event{Type: bus.EventMatchFinished, MatchID: m.ID, Payload: m})
	log.Info("Match finished", "match", m.ID, "score", fmt.Sprintf("%d-%d", m.Score.Home, m.Score.Away))

	home, away := e.lookupClubs(m)
	if err := e.notifier.SendResultNotification(m, home, away, dryRun); err != nil {
		log.Error("Failed to send result notification", "match", m.ID, "error", err)
	}

	if m.Stage == match.StageLeague {
		if _, err := e.table.ApplyResult(m); err != nil {
			return m, fmt.Errorf("match finished but the table update failed: %w", err)
		}
	}

	if m.IsFinal {
		e.publish(bus.Event{Type: bus.EventFinalFinished, MatchID: m.ID, Payload: m})
		champion, err := e.table.DeclareChampion(m)
		if err != nil {
			log.Error("Failed to declare champion", "match", m.ID, "error", err)
		} else if champion != nil {
			if err := e.notifier.SendChampionNotification(champion, m, dryRun); err != nil {
				log.Error("Failed to send champion notification", "match", m.ID, "error", err)
			}
		}
		return m, nil
	}

	created, err := e.table.EnsureKnockoutProgression(e.now())
	if err != nil {
		log.Error("Failed to progress knockout bracket", "match", m.ID, "error", err)
		return m, nil
	}
	for _, k := range created {
		if !k.IsFinal {
			continue
		}
		h, a := e.lookupClubs(k)
		if err := e.notifier.SendFinalNotification(k, h, a, dryRun); err != nil {
			log.Error("Failed to send final notification", "match", k.ID, "error", err)
		}
	}
	return m, nil
}

// ResetLeague wipes every match and standings row.
func (e *Engine) ResetLeague() error {
	if err := e.matches.DeleteAll(); err != nil {
		return err
	}
	if err := e.table.Reset(); err != nil {
		return err
	}
	log.Info("League reset")
	return nil
}

func (e *Engine) publish(ev bus.Event) {
	if err := e.bus.Publish(ev); err != nil {
		log.Warn("Failed to publish event", "type", ev.Type, "match", ev.MatchID, "error", err)
	}
}

func (e *Engine) lookupClubs(m *match.Match) (*club.Club, *club.Club) {
	var home, away *club.Club
	if m.HomeClubID != "" {
		home, _ = e.clubs.GetClub(m.HomeClubID)
	}
	if m.AwayClubID != "" {
		away, _ = e.clubs.GetClub(m.AwayClubID)
	}
	return home, away
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
