package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/metrics"
	"github.com/rylis/touchline/internal/notifier"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending league announcements to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendKickoffNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	msg := s.formatKickoff(m, home, away)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendResultNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	msg := s.formatResult(m, home, away)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendFinalNotification(m *match.Match, home, away *club.Club, dryRun bool) error {
	msg := s.formatFinal(m, home, away)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendChampionNotification(champion *club.Club, m *match.Match, dryRun bool) error {
	msg := s.formatChampion(champion, m)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func clubName(c *club.Club, fallbackID string) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	return fallbackID
}

// formatKickoff creates the Slack message for a match kicking off using Block Kit.
func (s *Notifier) formatKickoff(m *match.Match, home, away *club.Club) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Kick-off! ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	fixture := fmt.Sprintf("%s vs %s", clubName(home, m.HomeClubID), clubName(away, m.AwayClubID))
	details := fixture
	if m.Venue != "" {
		details += "\nVenue: " + m.Venue
	}
	if m.KickoffAt != nil {
		details += "\nKick-off: " + m.KickoffAt.UTC().Format("Monday 02 Jan, 15:04")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, false, false), nil, nil))

	if m.Stage != match.StageLeague {
		stageText := "Semi-final"
		if m.IsFinal {
			stageText = "The Final"
		}
		ctx := slack.NewTextBlockObject("plain_text", stageText, false, false)
		blocks = append(blocks, slack.NewContextBlock("", ctx))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatResult creates the Slack message for a finished match using Block Kit.
func (s *Notifier) formatResult(m *match.Match, home, away *club.Club) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏁 Full time! 🏁", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	score := fmt.Sprintf("%s %d - %d %s",
		clubName(home, m.HomeClubID), m.Score.Home,
		m.Score.Away, clubName(away, m.AwayClubID))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", score, false, false), nil, nil))

	if len(m.Events) > 0 {
		var contextElements []slack.MixedElement
		goals := 0
		for _, e := range m.Events {
			if e.Type != match.EventGoal {
				continue
			}
			goals++
			scorer := e.Player
			if scorer == "" {
				scorer = string(e.Team)
			}
			// Context blocks cap at ten elements.
			if goals <= 10 {
				contextElements = append(contextElements,
					slack.NewTextBlockObject("plain_text", fmt.Sprintf("⚽ %d' %s", e.Minute, scorer), true, false))
			}
		}
		if len(contextElements) > 0 {
			blocks = append(blocks, slack.NewContextBlock("", contextElements...))
		}
	}

	return slack.NewBlockMessage(blocks...)
}

// formatFinal creates the Slack message announcing the final pairing.
func (s *Notifier) formatFinal(m *match.Match, home, away *club.Club) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 The final is set! 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	details := fmt.Sprintf("%s vs %s", clubName(home, m.HomeClubID), clubName(away, m.AwayClubID))
	if m.KickoffAt != nil {
		details += "\nKick-off: " + m.KickoffAt.UTC().Format("Monday 02 Jan, 15:04")
	}
	if m.Venue != "" {
		details += "\nVenue: " + m.Venue
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// formatChampion creates the Slack message crowning the champion.
func (s *Notifier) formatChampion(champion *club.Club, m *match.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "👑 Champions! 👑", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	text := fmt.Sprintf("%s win the %s after a %d - %d final.",
		champion.Name, m.Competition, m.Score.Home, m.Score.Away)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
