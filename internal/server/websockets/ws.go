package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tlb/config"
	"tlb/internal/stream"
	"tlb/wires"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type UserMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type RefreshRequest struct {
	IncludeStats bool `json:"includeStats"`
}

// StartWebSocket is the websocket rendition of the push channel. All writes
// funnel through the writer goroutine; the read loop only turns client
// commands into hub snapshot requests.
func StartWebSocket(day string, playerID string, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := wires.Instance.Hub.Subscribe(day, playerID)
	defer sub.Close()

	if err := conn.WriteJSON(stream.Event{
		Type: stream.EventConnected,
		Data: stream.SessionPayload{TournamentDay: day, ServerTime: time.Now().UTC()},
	}); err != nil {
		return
	}

	notifierCfg := config.GlobalConfig.Notifier
	go writePump(conn, sub, notifierCfg)

	for {
		_, mess, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var userMessage UserMessage
		if err = json.Unmarshal(mess, &userMessage); err != nil {
			log.Println("Error parsing message from", playerID, ":", err)
			continue
		}

		switch userMessage.Type {
		case "refresh":
			var payload RefreshRequest
			if err := mapstructure.Decode(userMessage.Payload, &payload); err != nil {
				log.Println("Error parsing payload from", playerID, ":", err)
				continue
			}
			wires.Instance.Hub.Snapshot(sub)
			if payload.IncludeStats {
				wires.Instance.Hub.StatsSnapshot(sub)
			}
		case "leave":
			return
		default:
			log.Println("Invalid message type from", playerID, ":", userMessage.Type)
		}
	}
}

// writePump owns the connection for writing: hub events, pings and the hard
// age ceiling. Any write failure tears the subscription down; cleanup is
// idempotent so the deferred Close in the reader is safe too.
func writePump(conn *websocket.Conn, sub *stream.Conn, cfg config.NotifierConfig) {
	ticker := time.NewTicker(time.Duration(cfg.HeartbeatSeconds) * time.Second)
	defer ticker.Stop()
	deadline := time.NewTimer(time.Duration(cfg.MaxConnAgeMin) * time.Minute)
	defer deadline.Stop()

	for {
		select {
		case <-sub.Done():
			conn.Close()
			return
		case <-deadline.C:
			conn.WriteJSON(stream.Event{
				Type: stream.EventDisconnected,
				Data: stream.SessionPayload{TournamentDay: sub.Day, ServerTime: time.Now().UTC()},
			})
			sub.Close()
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Println("Error sending ping:", err)
				sub.Close()
				conn.Close()
				return
			}
		case event := <-sub.Events():
			if err := conn.WriteJSON(event); err != nil {
				log.Println(err)
				sub.Close()
				conn.Close()
				return
			}
		}
	}
}
