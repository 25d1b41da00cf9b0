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

type Server struct {
	Engine         *engine.Engine
	Scheduler      *schedule.Scheduler
	Table          table.TableStore
	Clubs          club.ClubStore
	Hub            *bus.Hub
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
}

// response is the uniform envelope every JSON endpoint returns.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
