package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tlb/config"
	"tlb/internal/constants"
	ws "tlb/internal/server/websockets"
	"tlb/internal/stream"
	"tlb/wires"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterStream(router *gin.Engine, ctx context.Context) {
	router.GET("/stream/:day", streamGet)
	router.GET("/ws/:day/:playerId", wsGet)
}

// streamGet serves the line-delimited push channel: named events over a
// long-lived text stream. Clients treat it as a hint to re-fetch; the read
// API stays the source of truth.
func streamGet(c *gin.Context) {
	day := c.Param("day")
	if !constants.ValidDay(day) {
		c.JSON(400, gin.H{"error": "invalid tournament day"})
		return
	}

	clientID := c.Query("player_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	notifierCfg := config.GlobalConfig.Notifier
	conn := wires.Instance.Hub.Subscribe(day, clientID)
	defer conn.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	if err := writeEvent(c, stream.Event{
		Type: stream.EventConnected,
		Data: stream.SessionPayload{TournamentDay: day, ServerTime: time.Now().UTC()},
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(time.Duration(notifierCfg.HeartbeatSeconds) * time.Second)
	defer heartbeat.Stop()
	deadline := time.NewTimer(time.Duration(notifierCfg.MaxConnAgeMin) * time.Minute)
	defer deadline.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-conn.Done():
			return
		case <-deadline.C:
			writeEvent(c, stream.Event{
				Type: stream.EventDisconnected,
				Data: stream.SessionPayload{TournamentDay: day, ServerTime: time.Now().UTC()},
			})
			return
		case <-heartbeat.C:
			// A failed keepalive write means the peer is gone.
			if err := writeEvent(c, stream.Event{
				Type: stream.EventHeartbeat,
				Data: stream.HeartbeatPayload{ServerTime: time.Now().UTC()},
			}); err != nil {
				return
			}
		case event := <-conn.Events():
			if err := writeEvent(c, event); err != nil {
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, event stream.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

func wsGet(c *gin.Context) {
	day := c.Param("day")
	playerID := c.Param("playerId")

	if !constants.ValidDay(day) || playerID == "" {
		c.JSON(400, gin.H{"error": "missing required parameters"})
		return
	}

	ws.StartWebSocket(day, playerID, c)
}
