package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/rylis/touchline/internal/bus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// All consumers are first-party dashboards.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketHandler subscribes the connection to one match's room, or to
// the shared league room when no match id is given.
func (s *Server) WebsocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := r.URL.Query().Get("match")
		if room == "" {
			room = bus.LeagueRoom
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade websocket connection", "error", err)
			return
		}

		client := bus.NewClient(s.Hub, conn, room)
		s.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
