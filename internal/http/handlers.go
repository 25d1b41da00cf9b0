package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/engine"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/schedule"
)

func (s *Server) respond(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func (s *Server) respondData(w http.ResponseWriter, status int, data any) {
	s.respond(w, status, response{Success: true, Data: data})
}

// respondError maps domain errors onto HTTP statuses: missing entities
// are 404, state machine violations and slot races are 409, bad input
// is 400 and an overfull season window is 422.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var capErr *schedule.CapacityError
	if errors.As(err, &capErr) {
		s.respond(w, http.StatusUnprocessableEntity, response{
			Success: false,
			Message: capErr.Error(),
			Data:    map[string]any{"assigned": capErr.Assigned, "unplaced": capErr.Unplaced},
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, match.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNotSchedulable),
		errors.Is(err, engine.ErrAlreadyLive),
		errors.Is(err, engine.ErrAlreadyFinished),
		errors.Is(err, engine.ErrNotLive),
		errors.Is(err, engine.ErrSlotUnavailable),
		errors.Is(err, match.ErrKickoffTaken),
		errors.Is(err, match.ErrRevisionConflict):
		status = http.StatusConflict
	case errors.Is(err, match.ErrInvalidEvent),
		errors.Is(err, engine.ErrInvalidAcceleration),
		errors.Is(err, engine.ErrInvalidMinute),
		errors.Is(err, engine.ErrInvalidPhase),
		errors.Is(err, engine.ErrUnknownClub),
		errors.Is(err, engine.ErrSameClubs),
		errors.Is(err, schedule.ErrInsufficientClubs):
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status == http.StatusInternalServerError && !s.Cfg.Dev {
		// Internal details stay in the logs outside dev mode.
		log.Error("Request failed", "error", err)
		message = "internal error"
	}
	s.respond(w, status, response{Success: false, Message: message})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListClubsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubs, err := s.Clubs.GetAllClubs()
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, clubs)
	}
}

func (s *Server) UpsertClubHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c club.Club
		if err := decodeBody(r, &c); err != nil {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
			return
		}
		if c.Name == "" {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: "club name is required"})
			return
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := s.Clubs.UpsertClub(c); err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, c)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Engine.CreateMatch()
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusCreated, m)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Engine.ListMatches()
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	type matchView struct {
		*match.Match
		Clock match.Reading `json:"clock"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		m, reading, err := s.Engine.GetMatch(r.PathValue("id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, matchView{Match: m, Clock: reading})
	}
}

func (s *Server) ScheduleMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params engine.ScheduleParams
		if err := decodeBody(r, &params); err != nil {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
			return
		}
		m, err := s.Engine.ScheduleMatch(r.PathValue("id"), params)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) StartMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Engine.StartMatch(r.PathValue("id"), isDryRunFromContext(r))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) RecordEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Pre-seeding the minute lets an omitted field fall through to
		// a clock stamp while an explicit zero survives decoding.
		ev := match.Event{Minute: -1}
		if err := decodeBody(r, &ev); err != nil {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
			return
		}
		m, err := s.Engine.RecordEvent(r.PathValue("id"), ev, isDryRunFromContext(r))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) CurrentTimeHandler() http.HandlerFunc {
	type timeView struct {
		Minute  int         `json:"minute"`
		Phase   match.Phase `json:"phase"`
		Display string      `json:"display"`
		Score   match.Score `json:"score"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reading, m, err := s.Engine.CurrentTime(r.PathValue("id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, timeView{
			Minute:  reading.Minute,
			Phase:   reading.Phase,
			Display: reading.Display,
			Score:   m.Score,
		})
	}
}

func (s *Server) SetAccelerationHandler() http.HandlerFunc {
	type body struct {
		Acceleration int `json:"acceleration"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var b body
		if err := decodeBody(r, &b); err != nil {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
			return
		}
		m, err := s.Engine.SetTimeAcceleration(r.PathValue("id"), b.Acceleration)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) SetManualTimeHandler() http.HandlerFunc {
	type body struct {
		Minute int         `json:"minute"`
		Phase  match.Phase `json:"phase"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var b body
		if err := decodeBody(r, &b); err != nil {
			s.respond(w, http.StatusBadRequest, response{Success: false, Message: err.Error()})
			return
		}
		m, err := s.Engine.SetManualTime(r.PathValue("id"), b.Minute, b.Phase)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) FinishMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Engine.FinishMatch(r.PathValue("id"), isDryRunFromContext(r))
		if err != nil && m == nil {
			s.respondError(w, err)
			return
		}
		if err != nil {
			// The match finished but a downstream step failed.
			s.respond(w, http.StatusOK, response{Success: true, Message: err.Error(), Data: m})
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) SimulateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.Engine.SimulateMatch(r.PathValue("id"), isDryRunFromContext(r))
		if err != nil && m == nil {
			s.respondError(w, err)
			return
		}
		if err != nil {
			s.respond(w, http.StatusOK, response{Success: true, Message: err.Error(), Data: m})
			return
		}
		s.respondData(w, http.StatusOK, m)
	}
}

func (s *Server) MatchReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, _, err := s.Engine.GetMatch(r.PathValue("id"))
		if err != nil {
			s.respondError(w, err)
			return
		}
		if m.Report == nil {
			// Live reads get the report derived on the fly.
			s.respondData(w, http.StatusOK, match.BuildReport(m, time.Now().UTC()))
			return
		}
		s.respondData(w, http.StatusOK, m.Report)
	}
}

func (s *Server) LeagueTableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			season = s.Cfg.League.Season
		}
		competition := r.URL.Query().Get("competition")
		if competition == "" {
			competition = s.Cfg.League.Competition
		}
		standings, err := s.Table.GetStandings(season, competition)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusOK, standings)
	}
}

func (s *Server) GenerateFixturesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fixtures, err := s.Scheduler.GenerateFixtures()
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondData(w, http.StatusCreated, fixtures)
	}
}

func (s *Server) ResetLeagueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would reset the league")
			s.respond(w, http.StatusOK, response{Success: true, Message: "dry run, nothing reset"})
			return
		}
		if err := s.Engine.ResetLeague(); err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, http.StatusOK, response{Success: true, Message: "league reset"})
	}
}
