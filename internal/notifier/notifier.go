package notifier

import (
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
)

// Notifier defines a high-level interface for announcing league events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For a match kicking off.
	SendKickoffNotification(m *match.Match, home, away *club.Club, dryRun bool) error
	// For a finished match.
	SendResultNotification(m *match.Match, home, away *club.Club, dryRun bool) error
	// For the final being scheduled.
	SendFinalNotification(m *match.Match, home, away *club.Club, dryRun bool) error
	// For the champion being crowned.
	SendChampionNotification(champion *club.Club, m *match.Match, dryRun bool) error
}
