package table

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
)

// Engine folds finished matches into the league table and drives
// knockout progression once the league stage completes.
type Engine struct {
	standings   TableStore
	matches     match.MatchStore
	clubs       club.ClubStore
	bus         bus.Bus
	kickoffHour int
}

func NewEngine(standings TableStore, matches match.MatchStore, clubs club.ClubStore, b bus.Bus, kickoffHour int) *Engine {
	return &Engine{
		standings:   standings,
		matches:     matches,
		clubs:       clubs,
		bus:         b,
		kickoffHour: kickoffHour,
	}
}

// ApplyResult folds one finished league match into both clubs' standings
// rows and returns the refreshed classification. Knockout matches do not
// touch the table.
func (e *Engine) ApplyResult(m *match.Match) ([]Standing, error) {
	if m.Status != match.StatusFinished {
		return nil, fmt.Errorf("cannot apply result of match %s with status %q", m.ID, m.Status)
	}
	if m.Stage != match.StageLeague {
		return e.standings.GetStandings(m.Season, m.Competition)
	}

	now := time.Now().UTC()
	home := e.rowFor(m.Season, m.Competition, m.HomeClubID)
	away := e.rowFor(m.Season, m.Competition, m.AwayClubID)

	fold(home, m.Score.Home, m.Score.Away, now)
	fold(away, m.Score.Away, m.Score.Home, now)

	if err := e.standings.Upsert(*home); err != nil {
		return nil, err
	}
	if err := e.standings.Upsert(*away); err != nil {
		return nil, err
	}

	standings, err := e.standings.GetStandings(m.Season, m.Competition)
	if err != nil {
		return nil, err
	}

	if err := e.bus.Publish(bus.Event{
		Type:    bus.EventTableUpdated,
		MatchID: m.ID,
		Payload: standings,
	}); err != nil {
		log.Warn("Failed to publish table update", "match", m.ID, "error", err)
	}
	return standings, nil
}

// rowFor fetches a club's existing standing or seeds a zero row.
func (e *Engine) rowFor(season, competition, clubID string) *Standing {
	existing, err := e.standings.GetStandings(season, competition)
	if err == nil {
		for i := range existing {
			if existing[i].ClubID == clubID {
				return &existing[i]
			}
		}
	}
	return &Standing{Season: season, Competition: competition, ClubID: clubID}
}

func fold(st *Standing, scored, conceded int, now time.Time) {
	st.Played++
	st.GoalsFor += scored
	st.GoalsAgainst += conceded
	st.GoalDifference = st.GoalsFor - st.GoalsAgainst
	switch {
	case scored > conceded:
		st.Won++
		st.Points += 3
	case scored == conceded:
		st.Drawn++
		st.Points++
	default:
		st.Lost++
	}
	st.UpdatedAt = now
}

// Reset clears every standings row for a league restart.
func (e *Engine) Reset() error {
	return e.standings.DeleteAll()
}

// DetermineWinner resolves the club advancing from a finished knockout
// match. The home side advances on a draw, no replays or shootouts.
func DetermineWinner(m *match.Match) string {
	if m.Score.Away > m.Score.Home {
		return m.AwayClubID
	}
	return m.HomeClubID
}

// EnsureKnockoutProgression inspects the bracket and creates whatever
// the next round needs: two semi-finals once every league match is
// finished, then the final once both semis are. It returns the matches
// it created, if any. Calling it when nothing is due is a no-op.
func (e *Engine) EnsureKnockoutProgression(now time.Time) ([]*match.Match, error) {
	league, err := e.matches.ListByStage(match.StageLeague)
	if err != nil {
		return nil, err
	}
	if len(league) == 0 {
		return nil, nil
	}
	for _, m := range league {
		if m.Status != match.StatusFinished {
			return nil, nil
		}
	}
	season, competition := league[0].Season, league[0].Competition

	semis, err := e.matches.ListByStage(match.StageSemi)
	if err != nil {
		return nil, err
	}
	if len(semis) == 0 {
		return e.createSemis(season, competition, now)
	}
	if len(semis) < 2 {
		log.Warn("Bracket holds a single semi-final, cannot pair a final",
			"season", season, "semis", len(semis))
		return nil, nil
	}

	for _, s := range semis {
		if s.Status != match.StatusFinished {
			return nil, nil
		}
	}
	finals, err := e.matches.ListByStage(match.StageFinal)
	if err != nil {
		return nil, err
	}
	if len(finals) > 0 {
		return nil, nil
	}
	return e.createFinal(season, competition, semis, now)
}

// createSemis seeds first versus fourth and second versus third from the
// final classification, both on the next day two hours apart.
func (e *Engine) createSemis(season, competition string, now time.Time) ([]*match.Match, error) {
	standings, err := e.standings.GetStandings(season, competition)
	if err != nil {
		return nil, err
	}
	if len(standings) < 4 {
		log.Warn("League complete but fewer than four clubs in table, skipping semi-finals",
			"season", season, "clubs", len(standings))
		return nil, nil
	}

	day := nextMatchDay(now, e.kickoffHour)
	semi1, err := e.createKnockout(season, competition, match.StageSemi, false,
		standings[0].ClubID, standings[3].ClubID, day)
	if err != nil {
		return nil, err
	}
	semi2, err := e.createKnockout(season, competition, match.StageSemi, false,
		standings[1].ClubID, standings[2].ClubID, day.Add(2*time.Hour))
	if err != nil {
		return nil, err
	}

	for _, s := range []*match.Match{semi1, semi2} {
		if err := e.bus.Publish(bus.Event{Type: bus.EventSemiCreated, MatchID: s.ID, Payload: s}); err != nil {
			log.Warn("Failed to publish semi-final creation", "match", s.ID, "error", err)
		}
	}
	log.Info("Semi-finals created", "first", semi1.ID, "second", semi2.ID)
	return []*match.Match{semi1, semi2}, nil
}

// createFinal pairs the semi-final winners, the earlier semi's winner at
// home, the day after both semis conclude.
func (e *Engine) createFinal(season, competition string, semis []*match.Match, now time.Time) ([]*match.Match, error) {
	first, second := semis[0], semis[1]
	if second.KickoffAt != nil && first.KickoffAt != nil && second.KickoffAt.Before(*first.KickoffAt) {
		first, second = second, first
	}

	day := nextMatchDay(now, e.kickoffHour)
	final, err := e.createKnockout(season, competition, match.StageFinal, true,
		DetermineWinner(first), DetermineWinner(second), day)
	if err != nil {
		return nil, err
	}

	if err := e.bus.Publish(bus.Event{Type: bus.EventFinalCreated, MatchID: final.ID, Payload: final}); err != nil {
		log.Warn("Failed to publish final creation", "match", final.ID, "error", err)
	}
	log.Info("Final created", "match", final.ID, "home", final.HomeClubID, "away", final.AwayClubID)
	return []*match.Match{final}, nil
}

func (e *Engine) createKnockout(season, competition string, stage match.Stage, isFinal bool, homeID, awayID string, at time.Time) (*match.Match, error) {
	kickoff, err := e.freeKickoff(at)
	if err != nil {
		return nil, err
	}

	venue := "National Stadium"
	if home, err := e.clubs.GetClub(homeID); err == nil && home.Venue != "" {
		venue = home.Venue
	}

	m := &match.Match{
		ID:          uuid.NewString(),
		Season:      season,
		Competition: competition,
		Stage:       stage,
		IsFinal:     isFinal,
		HomeClubID:  homeID,
		AwayClubID:  awayID,
		KickoffAt:   &kickoff,
		Venue:       venue,
		Status:      match.StatusScheduled,
	}
	if err := e.matches.Create(m); err != nil {
		return nil, fmt.Errorf("failed to create %s match: %w", stage, err)
	}
	return m, nil
}

// freeKickoff probes forward in two-hour steps until an unoccupied
// instant is found. The bracket only ever adds a handful of matches so
// a short bound suffices.
func (e *Engine) freeKickoff(at time.Time) (time.Time, error) {
	for i := 0; i < 24; i++ {
		candidate := at.Add(time.Duration(i) * 2 * time.Hour)
		taken, err := e.matches.KickoffTaken(candidate, "")
		if err != nil {
			return time.Time{}, err
		}
		if !taken {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no free kickoff slot near %s", at.Format(time.RFC3339))
}

// DeclareChampion resolves a finished final. A drawn final crowns no
// champion.
func (e *Engine) DeclareChampion(m *match.Match) (*club.Club, error) {
	if !m.IsFinal || m.Status != match.StatusFinished {
		return nil, fmt.Errorf("match %s is not a finished final", m.ID)
	}
	if m.Score.Home == m.Score.Away {
		log.Info("Final drawn, no champion declared", "match", m.ID)
		return nil, nil
	}

	winnerID := DetermineWinner(m)
	champion, err := e.clubs.GetClub(winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve champion club %s: %w", winnerID, err)
	}

	if err := e.bus.Publish(bus.Event{Type: bus.EventLeagueChampion, MatchID: m.ID, Payload: champion}); err != nil {
		log.Warn("Failed to publish champion announcement", "match", m.ID, "error", err)
	}
	log.Info("League champion declared", "club", champion.Name)
	return champion, nil
}

func nextMatchDay(now time.Time, hour int) time.Time {
	d := now.UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}
