package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName string
	Port   string
	Dev    bool

	League LeagueConfig
	Clock  ClockConfig
	Slack  SlackConfig
	Turso  TursoConfig

	// ProjectID enables the Cloud Pub/Sub fan-out of bus events when set.
	ProjectID string
}

// LeagueConfig bounds the fixture scheduling solver and names the competition.
type LeagueConfig struct {
	Season      string
	Competition string
	SeasonStart time.Time
	SeasonEnd   time.Time
	KickoffHour int
}

// ClockConfig carries the live-clock defaults.
type ClockConfig struct {
	// DefaultAcceleration is real seconds per simulated game-minute (1-300).
	// 60 gives a realistic pace; 1 gives the fast demo pace.
	DefaultAcceleration int
	HalfTimeBreak       time.Duration
	ExtraTimeBreak      time.Duration
	// StoppageInDisplay folds accumulated stoppage credit into the
	// displayed minute. Off by default.
	StoppageInDisplay bool
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
