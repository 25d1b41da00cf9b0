package notifier

import (
	"github.com/charmbracelet/log"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
)

// NoOp discards every notification. Used when no Slack credentials are
// configured.
type NoOp struct{}

var _ Notifier = NoOp{}

func NewNoOp() NoOp { return NoOp{} }

func (NoOp) SendKickoffNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	log.Debug("Notifications disabled, skipping kickoff announcement", "match", m.ID)
	return nil
}

func (NoOp) SendResultNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	log.Debug("Notifications disabled, skipping result announcement", "match", m.ID)
	return nil
}

func (NoOp) SendFinalNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	log.Debug("Notifications disabled, skipping final announcement", "match", m.ID)
	return nil
}

func (NoOp) SendChampionNotification(champion *club.Club, m *match.Match, dryRun bool) error {
	log.Debug("Notifications disabled, skipping champion announcement", "match", m.ID)
	return nil
}
