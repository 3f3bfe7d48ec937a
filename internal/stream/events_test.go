package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionEventsShareWireShape(t *testing.T) {
	payload := SessionPayload{
		TournamentDay: "2026-08-30",
		ServerTime:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	for _, typ := range []EventType{EventConnected, EventDisconnected} {
		data, err := json.Marshal(Event{Type: typ, Data: payload})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"eventType":"`+string(typ)+`"`)
		assert.Contains(t, string(data), `"tournament_day":"2026-08-30"`)
	}
}
