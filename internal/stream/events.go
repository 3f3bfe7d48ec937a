package stream

import (
	"time"

	"tlb/internal/model"
)

type EventType string

const (
	EventConnected    EventType = "connected"
	EventLeaderboard  EventType = "leaderboard_update"
	EventStats        EventType = "tournament_stats_update"
	EventHeartbeat    EventType = "heartbeat"
	EventDisconnected EventType = "disconnected"
)

// Event is one named message on a client's push channel.
type Event struct {
	Type EventType   `json:"eventType"`
	Data interface{} `json:"message"`
}

// SessionPayload accompanies the connected and disconnected session events.
type SessionPayload struct {
	TournamentDay string    `json:"tournament_day"`
	ServerTime    time.Time `json:"server_time"`
}

type HeartbeatPayload struct {
	ServerTime time.Time `json:"server_time"`
}

// LeaderboardUpdate carries a full current page plus a per-day monotonic
// update id so clients can discard reordered deliveries.
type LeaderboardUpdate struct {
	TournamentDay string                 `json:"tournament_day"`
	UpdateID      int64                  `json:"update_id"`
	Page          *model.LeaderboardPage `json:"page"`
}

type StatsUpdate struct {
	TournamentDay string                 `json:"tournament_day"`
	UpdateID      int64                  `json:"update_id"`
	Stats         *model.TournamentStats `json:"stats"`
}
