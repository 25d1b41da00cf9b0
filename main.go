package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/database"
	"github.com/rylis/touchline/internal/engine"
	server "github.com/rylis/touchline/internal/http"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/metrics"
	"github.com/rylis/touchline/internal/notifier"
	"github.com/rylis/touchline/internal/notifier/slack"
	"github.com/rylis/touchline/internal/schedule"
	"github.com/rylis/touchline/internal/table"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		db.Close()
	}()

	clubStore := club.New(db)
	matchStore := match.New(db)
	tableStore := table.NewStore(db)

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	hub := bus.NewHub()
	go hub.Run()
	var eventBus bus.Bus = hub
	if cfg.ProjectID != "" {
		eventBus = bus.NewFanout(hub, bus.NewPubSub(cfg.ProjectID))
	}

	var notif notifier.Notifier = notifier.NewNoOp()
	if cfg.Slack.Token != "" && cfg.Slack.ChannelID != "" {
		notif = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	}

	tableEngine := table.NewEngine(tableStore, matchStore, clubStore, eventBus, cfg.League.KickoffHour)
	matchEngine := engine.New(matchStore, clubStore, tableEngine, eventBus, notif, metricsSvc, cfg.League, cfg.Clock)
	scheduler := schedule.NewScheduler(matchStore, clubStore, schedule.NewSeasonStore(db), cfg.League)

	s := server.NewServer(
		matchEngine,
		scheduler,
		tableStore,
		clubStore,
		hub,
		metricsSvc,
		metricsHandler,
		cfg,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
