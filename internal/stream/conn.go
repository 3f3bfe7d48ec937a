package stream

import "sync"

// connBuffer absorbs bursts before a subscriber counts as slow.
const connBuffer = 16

// Conn is one client's handle on the push channel. Transports (SSE, websocket)
// drain Events and stop on Done.
type Conn struct {
	ID  string
	Day string

	hub       *Hub
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func (c *Conn) Events() <-chan Event {
	return c.events
}

func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close unregisters the connection. Safe to call more than once; cleanup runs
// exactly once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.hub.remove(c)
		close(c.done)
	})
}

// send never blocks: false means the subscriber is too slow and should be
// closed by the caller.
func (c *Conn) send(event Event) bool {
	select {
	case <-c.done:
		return true
	case c.events <- event:
		return true
	default:
		return false
	}
}
