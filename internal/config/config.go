package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	getIntOr := func(key string, fallback int) int {
		raw, ok := os.LookupEnv(key)
		if !ok || raw == "" {
			return fallback
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Error: %s must be an integer, got %q", key, raw)
		}
		return v
	}

	getDate := func(key, fallback string) time.Time {
		raw := getEnvOr(key, fallback)
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			log.Fatalf("Error: %s must be YYYY-MM-DD, got %q", key, raw)
		}
		return t
	}

	season := getEnvOr("SEASON", strconv.Itoa(time.Now().Year()))
	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnvOr("PORT", "8080"),
		Dev:    getEnvOr("DEV_MODE", "false") == "true",
		League: LeagueConfig{
			Season:      season,
			Competition: getEnvOr("COMPETITION", "League Championship"),
			SeasonStart: getDate("SEASON_START", season+"-01-01"),
			SeasonEnd:   getDate("SEASON_END", season+"-12-31"),
			KickoffHour: getIntOr("KICKOFF_HOUR", 14),
		},
		Clock: ClockConfig{
			DefaultAcceleration: getIntOr("DEFAULT_TIME_ACCELERATION", 60),
			HalfTimeBreak:       time.Duration(getIntOr("HALF_TIME_BREAK_MINUTES", 1)) * time.Minute,
			ExtraTimeBreak:      time.Duration(getIntOr("EXTRA_TIME_BREAK_MINUTES", 1)) * time.Minute,
			StoppageInDisplay:   getEnvOr("STOPPAGE_IN_DISPLAY", "false") == "true",
		},
		Slack: SlackConfig{
			Token:     getEnvOr("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnvOr("SLACK_CHANNEL_ID", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnvOr("GCP_PROJECT", ""),
	}

	if cfg.Clock.DefaultAcceleration < 1 || cfg.Clock.DefaultAcceleration > 300 {
		log.Fatalf("Error: DEFAULT_TIME_ACCELERATION must be between 1 and 300, got %d", cfg.Clock.DefaultAcceleration)
	}
	if !cfg.League.SeasonEnd.After(cfg.League.SeasonStart) {
		log.Fatalf("Error: SEASON_END must be after SEASON_START")
	}

	return cfg
}
