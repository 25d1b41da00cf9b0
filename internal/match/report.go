package match

import (
	"math"
	"time"
)

// TeamStats aggregates one side of the event ledger.
type TeamStats struct {
	Goals         int `json:"goals"`
	Shots         int `json:"shots"`
	ShotsOnTarget int `json:"shots_on_target"`
	Corners       int `json:"corners"`
	Fouls         int `json:"fouls"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
	Substitutions int `json:"substitutions"`
}

// Report is the derived post-match summary folded from the event ledger.
type Report struct {
	Home           TeamStats `json:"home"`
	Away           TeamStats `json:"away"`
	PossessionHome int       `json:"possession_home"`
	PossessionAway int       `json:"possession_away"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// BuildReport folds the event ledger into team statistics and estimates
// possession. It never mutates the match.
func BuildReport(m *Match, now time.Time) *Report {
	var home, away TeamStats
	for _, e := range m.Events {
		stats := &home
		if e.Team == SideAway {
			stats = &away
		}
		switch e.Type {
		case EventGoal:
			stats.Goals++
			stats.Shots++
			stats.ShotsOnTarget++
		case EventShot:
			stats.Shots++
			if e.OnTarget {
				stats.ShotsOnTarget++
			}
		case EventCorner:
			stats.Corners++
		case EventFoul:
			stats.Fouls++
		case EventYellowCard:
			stats.YellowCards++
		case EventRedCard:
			stats.RedCards++
		case EventSubstitution:
			stats.Substitutions++
		}
	}

	possHome := estimatePossession(home, away)
	return &Report{
		Home:           home,
		Away:           away,
		PossessionHome: possHome,
		PossessionAway: 100 - possHome,
		GeneratedAt:    now,
	}
}

// estimatePossession is a heuristic: start from 50% and adjust by up to
// +-15 for the goal differential, +-10 for the shots-on-target ratio, +-8
// for the total-shots ratio, +-6 for the corners ratio and -4 for the fouls
// ratio (committing more fouls costs possession). Clamped to [20,80].
func estimatePossession(home, away TeamStats) int {
	adj := clampF(float64(home.Goals-away.Goals)*5, -15, 15)
	adj += ratioAdjustment(home.ShotsOnTarget, away.ShotsOnTarget, 10)
	adj += ratioAdjustment(home.Shots, away.Shots, 8)
	adj += ratioAdjustment(home.Corners, away.Corners, 6)
	adj -= ratioAdjustment(home.Fouls, away.Fouls, 4)

	p := int(math.Round(clampF(50+adj, 20, 80)))
	return p
}

// ratioAdjustment maps the home share of a stat onto [-weight, +weight];
// zero totals contribute nothing.
func ratioAdjustment(home, away int, weight float64) float64 {
	total := home + away
	if total == 0 {
		return 0
	}
	share := float64(home) / float64(total)
	return (share - 0.5) * 2 * weight
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
