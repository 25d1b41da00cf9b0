package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/match"
)

// ErrInsufficientClubs is returned when fewer than two clubs exist.
var ErrInsufficientClubs = errors.New("at least two clubs are required to generate fixtures")

// lastKickoffHour bounds the daily slot walk. Slots step two hours from
// the configured kickoff hour up to and including this one.
const lastKickoffHour = 22

// CapacityError reports that the season window cannot hold the full
// fixture list. Assigned carries the fixtures placed before the walk ran
// out of slots, so callers can show how far the solver got. Nothing is
// persisted when this error is returned.
type CapacityError struct {
	Assigned  []*match.Match
	Unplaced  Pairing
	WindowEnd time.Time
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("season window ends %s before %s vs %s can be scheduled (%d fixtures placed)",
		e.WindowEnd.Format("2006-01-02"), e.Unplaced.Home, e.Unplaced.Away, len(e.Assigned))
}

// Scheduler assigns round-robin fixtures to kickoff slots inside the
// season window. Two hard constraints hold across the whole calendar:
// no two matches share a kickoff instant, and no club plays twice on
// one day.
type Scheduler struct {
	matches match.MatchStore
	clubs   club.ClubStore
	seasons SeasonStore
	league  config.LeagueConfig
}

func NewScheduler(matches match.MatchStore, clubs club.ClubStore, seasons SeasonStore, league config.LeagueConfig) *Scheduler {
	return &Scheduler{matches: matches, clubs: clubs, seasons: seasons, league: league}
}

// window resolves the scheduling window for the configured season. A
// previously recorded window wins over the environment configuration,
// so regenerating fixtures stays inside the season's original bounds.
func (s *Scheduler) window() (SeasonWindow, error) {
	recorded, err := s.seasons.GetWindow(s.league.Season)
	if err != nil {
		return SeasonWindow{}, fmt.Errorf("failed to load season window: %w", err)
	}
	if recorded != nil {
		return *recorded, nil
	}
	return SeasonWindow{
		Season:    s.league.Season,
		StartDate: s.league.SeasonStart,
		EndDate:   s.league.SeasonEnd,
	}, nil
}

// GenerateFixtures builds a full single round robin over every known
// club and assigns each fixture its earliest feasible slot, walking
// days from the season start and hours in two-hour steps from the
// configured kickoff hour. The whole schedule is solved in memory
// first, then persisted, so a capacity failure leaves the store
// untouched.
func (s *Scheduler) GenerateFixtures() ([]*match.Match, error) {
	clubs, err := s.clubs.GetAllClubs()
	if err != nil {
		return nil, fmt.Errorf("failed to load clubs: %w", err)
	}
	if len(clubs) < 2 {
		return nil, ErrInsufficientClubs
	}

	venues := make(map[string]string, len(clubs))
	ids := make([]string, 0, len(clubs))
	for _, c := range clubs {
		ids = append(ids, c.ID)
		venues[c.ID] = c.Venue
	}

	window, err := s.window()
	if err != nil {
		return nil, err
	}

	cursor := &slotCursor{
		scheduler:    s,
		window:       window,
		usedInstants: make(map[int64]bool),
		clubDays:     make(map[string]bool),
	}

	var fixtures []*match.Match
	for _, round := range RoundRobin(ids) {
		for _, p := range round {
			kickoff, ok, err := cursor.place(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &CapacityError{
					Assigned:  fixtures,
					Unplaced:  p,
					WindowEnd: window.EndDate,
				}
			}

			venue := venues[p.Home]
			if venue == "" {
				venue = "National Stadium"
			}
			fixtures = append(fixtures, &match.Match{
				ID:          uuid.NewString(),
				Season:      s.league.Season,
				Competition: s.league.Competition,
				Stage:       match.StageLeague,
				HomeClubID:  p.Home,
				AwayClubID:  p.Away,
				KickoffAt:   &kickoff,
				Venue:       venue,
				Status:      match.StatusScheduled,
			})
		}
	}

	for _, m := range fixtures {
		if err := s.matches.Create(m); err != nil {
			return nil, fmt.Errorf("failed to persist fixture %s: %w", m.ID, err)
		}
	}
	if err := s.seasons.SaveWindow(window); err != nil {
		return nil, fmt.Errorf("failed to record season window: %w", err)
	}
	log.Info("Fixtures generated", "count", len(fixtures), "clubs", len(clubs),
		"window_start", window.StartDate.Format("2006-01-02"),
		"window_end", window.EndDate.Format("2006-01-02"))
	return fixtures, nil
}

// slotCursor tracks the instants and club-days claimed while solving,
// layered over whatever the store already holds.
type slotCursor struct {
	scheduler    *Scheduler
	window       SeasonWindow
	usedInstants map[int64]bool
	clubDays     map[string]bool
}

// place finds the earliest slot inside the season window where neither
// club is booked that day and the instant is free. ok is false when the
// window is exhausted.
func (c *slotCursor) place(p Pairing) (time.Time, bool, error) {
	start, end := c.window.StartDate, c.window.EndDate
	hour := c.scheduler.league.KickoffHour

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if c.clubDays[dayKey(p.Home, day)] || c.clubDays[dayKey(p.Away, day)] {
			continue
		}
		busy, err := c.clubBusy(p, day)
		if err != nil {
			return time.Time{}, false, err
		}
		if busy {
			continue
		}

		for h := hour; h <= lastKickoffHour; h += 2 {
			candidate := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.UTC)
			if c.usedInstants[candidate.Unix()] {
				continue
			}
			taken, err := c.scheduler.matches.KickoffTaken(candidate, "")
			if err != nil {
				return time.Time{}, false, err
			}
			if taken {
				continue
			}

			c.usedInstants[candidate.Unix()] = true
			c.clubDays[dayKey(p.Home, day)] = true
			c.clubDays[dayKey(p.Away, day)] = true
			return candidate, true, nil
		}
	}
	return time.Time{}, false, nil
}

func (c *slotCursor) clubBusy(p Pairing, day time.Time) (bool, error) {
	for _, id := range []string{p.Home, p.Away} {
		busy, err := c.scheduler.matches.ClubBusyOn(id, day, "")
		if err != nil {
			return false, err
		}
		if busy {
			return true, nil
		}
	}
	return false, nil
}

func dayKey(clubID string, day time.Time) string {
	return clubID + "|" + day.Format("2006-01-02")
}
