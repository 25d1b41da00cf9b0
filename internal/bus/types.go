package bus

// EventType names a bus topic.
type EventType string

const (
	EventMatchStarted   EventType = "match-started"
	EventMatchEvent     EventType = "match-event"
	EventMatchFinished  EventType = "match-finished"
	EventTableUpdated   EventType = "table-updated"
	EventSemiCreated    EventType = "semi-created"
	EventFinalCreated   EventType = "final-created"
	EventFinalFinished  EventType = "final-finished"
	EventLeagueChampion EventType = "league-champion"
)

// LeagueRoom receives every event in addition to the per-match room.
const LeagueRoom = "league"

// Event is one fire-and-forget broadcast. Delivery and cross-match ordering
// are not guaranteed.
type Event struct {
	Type    EventType `json:"type"`
	MatchID string    `json:"match_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
}
