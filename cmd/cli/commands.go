package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	homeClub     string
	awayClub     string
	kickoffAt    string
	venue        string
	eventType    string
	eventTeam    string
	eventPlayer  string
	acceleration int
)

func init() {
	scheduleCmd.Flags().StringVar(&homeClub, "home", "", "Home club id")
	scheduleCmd.Flags().StringVar(&awayClub, "away", "", "Away club id")
	scheduleCmd.Flags().StringVar(&kickoffAt, "kickoff", "", "Kickoff time (RFC3339)")
	scheduleCmd.Flags().StringVar(&venue, "venue", "", "Venue name")

	eventCmd.Flags().StringVar(&eventType, "type", "goal", "Event type")
	eventCmd.Flags().StringVar(&eventTeam, "team", "home", "Team side (home or away)")
	eventCmd.Flags().StringVar(&eventPlayer, "player", "", "Player name")

	accelerateCmd.Flags().IntVar(&acceleration, "seconds", 60, "Real seconds per game-minute (1-300)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(accelerateCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the league table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/table")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List all matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches", nil)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [match-id]",
	Short: "Attach teams, kickoff and venue to a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"home_club_id": homeClub,
			"away_club_id": awayClub,
			"venue":        venue,
		}
		if kickoffAt != "" {
			body["kickoff_at"] = kickoffAt
		}
		return performPostRequest("/matches/"+args[0]+"/schedule", body)
	},
}

var startCmd = &cobra.Command{
	Use:   "start [match-id]",
	Short: "Kick off a scheduled match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/"+args[0]+"/start", nil)
	},
}

var eventCmd = &cobra.Command{
	Use:   "event [match-id]",
	Short: "Record a match event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"type":   eventType,
			"team":   eventTeam,
			"player": eventPlayer,
		}
		return performPostRequest("/matches/"+args[0]+"/events", body)
	},
}

var timeCmd = &cobra.Command{
	Use:   "time [match-id]",
	Short: "Show the live clock of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches/" + args[0] + "/time")
	},
}

var accelerateCmd = &cobra.Command{
	Use:   "accelerate [match-id]",
	Short: "Change the clock speed of a live match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPut, "/matches/"+args[0]+"/acceleration",
			map[string]any{"acceleration": acceleration})
	},
}

var finishCmd = &cobra.Command{
	Use:   "finish [match-id]",
	Short: "Bring a live match to full time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/"+args[0]+"/finish", nil)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [match-id]",
	Short: "Play a whole match instantly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/matches/"+args[0]+"/simulate", nil)
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Generate the full round-robin fixture list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/fixtures/generate", nil)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe every match and standings row",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/reset", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body map[string]any) error {
	return performRequest(http.MethodPost, endpoint, body)
}

func performRequest(method, endpoint string, body map[string]any) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
