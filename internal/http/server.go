package http

import (
	"net/http"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/engine"
	"github.com/rylis/touchline/internal/metrics"
	"github.com/rylis/touchline/internal/schedule"
	"github.com/rylis/touchline/internal/table"
)

func NewServer(eng *engine.Engine, scheduler *schedule.Scheduler, tbl table.TableStore, clubs club.ClubStore, hub *bus.Hub, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Engine:         eng,
		Scheduler:      scheduler,
		Table:          tbl,
		Clubs:          clubs,
		Hub:            hub,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /ws", s.WebsocketHandler())

	s.Router.Handle("GET /clubs", Chain(s.ListClubsHandler(), paramsMiddleware))
	s.Router.Handle("POST /clubs", Chain(s.UpsertClubHandler(), paramsMiddleware))

	s.Router.Handle("POST /matches", Chain(s.CreateMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/schedule", Chain(s.ScheduleMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/start", Chain(s.StartMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/events", Chain(s.RecordEventHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/time", Chain(s.CurrentTimeHandler(), paramsMiddleware))
	s.Router.Handle("PUT /matches/{id}/acceleration", Chain(s.SetAccelerationHandler(), paramsMiddleware))
	s.Router.Handle("PUT /matches/{id}/time", Chain(s.SetManualTimeHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/finish", Chain(s.FinishMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/simulate", Chain(s.SimulateMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}/report", Chain(s.MatchReportHandler(), paramsMiddleware))

	s.Router.Handle("GET /table", Chain(s.LeagueTableHandler(), paramsMiddleware))
	s.Router.Handle("POST /fixtures/generate", Chain(s.GenerateFixturesHandler(), paramsMiddleware))
	s.Router.Handle("POST /reset", Chain(s.ResetLeagueHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
