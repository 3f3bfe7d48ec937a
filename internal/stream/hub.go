package stream

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"tlb/config"
	"tlb/internal/model"
)

var errFetchTimeout = errors.New("snapshot fetch timed out")

// PageFetcher and StatsFetcher are satisfied by the leaderboard service and
// the aggregator.
type PageFetcher interface {
	GetPage(day string, offset, limit int) (*model.LeaderboardPage, error)
}

type StatsFetcher interface {
	Stats(day string) (*model.TournamentStats, error)
}

// Markers reads the per-day change markers, satisfied by the rank cache.
type Markers interface {
	Marker(day string) (int64, error)
	StatsMarker(day string) (int64, error)
}

// Hub simulates server push over a pull transport. One poller goroutine runs
// per watched tournament day, not per connection, so store pressure stays
// O(days) no matter how many clients subscribe.
type Hub struct {
	pages   PageFetcher
	stats   StatsFetcher
	markers Markers

	pollInterval time.Duration
	fetchTimeout time.Duration
	pageSize     int

	mu     sync.Mutex
	days   map[string]*dayWatcher
	ctx    context.Context
	cancel context.CancelFunc
}

// dayWatcher state other than conns is touched only by its poller goroutine.
type dayWatcher struct {
	day        string
	conns      map[*Conn]struct{}
	cancel     context.CancelFunc
	lastMarker int64
	lastStats  int64
	updateID   int64
}

func NewHub(pages PageFetcher, stats StatsFetcher, markers Markers, cfg config.NotifierConfig) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		pages:        pages,
		stats:        stats,
		markers:      markers,
		pollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		fetchTimeout: time.Duration(cfg.FetchTimeoutSec) * time.Second,
		pageSize:     10,
		days:         make(map[string]*dayWatcher),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Subscribe registers a connection for a day, starting the day's poller if it
// is the first one.
func (h *Hub) Subscribe(day, id string) *Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	watcher, ok := h.days[day]
	if !ok {
		ctx, cancel := context.WithCancel(h.ctx)
		watcher = &dayWatcher{day: day, conns: make(map[*Conn]struct{}), cancel: cancel}
		h.days[day] = watcher
		go h.poll(ctx, watcher)
	}

	conn := &Conn{
		ID:     id,
		Day:    day,
		hub:    h,
		events: make(chan Event, connBuffer),
		done:   make(chan struct{}),
	}
	watcher.conns[conn] = struct{}{}
	return conn
}

// Stop tears down every poller and closes every connection.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	var conns []*Conn
	for _, watcher := range h.days {
		for conn := range watcher.conns {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

func (h *Hub) remove(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watcher, ok := h.days[conn.Day]
	if !ok {
		return
	}
	delete(watcher.conns, conn)
	if len(watcher.conns) == 0 {
		watcher.cancel()
		delete(h.days, conn.Day)
	}
}

func (h *Hub) poll(ctx context.Context, watcher *dayWatcher) {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.checkOnce(watcher)
		}
	}
}

// checkOnce compares both markers against last seen and fans out fresh
// snapshots on advance. Marker reads and snapshot fetches that fail are
// logged and retried on the next tick; they never kill the loop.
func (h *Hub) checkOnce(watcher *dayWatcher) {
	marker, err := h.markers.Marker(watcher.day)
	if err != nil {
		log.Println("marker poll failed for", watcher.day, ":", err)
	} else if marker > watcher.lastMarker {
		page, err := h.fetchPage(watcher.day)
		if err != nil {
			log.Println("leaderboard snapshot failed for", watcher.day, ":", err)
		} else {
			watcher.lastMarker = marker
			watcher.updateID++
			h.broadcast(watcher.day, Event{Type: EventLeaderboard, Data: LeaderboardUpdate{
				TournamentDay: watcher.day,
				UpdateID:      watcher.updateID,
				Page:          page,
			}})
		}
	}

	statsMarker, err := h.markers.StatsMarker(watcher.day)
	if err != nil {
		log.Println("stats marker poll failed for", watcher.day, ":", err)
	} else if statsMarker > watcher.lastStats {
		stats, err := h.fetchStats(watcher.day)
		if err != nil {
			log.Println("stats snapshot failed for", watcher.day, ":", err)
		} else {
			watcher.lastStats = statsMarker
			watcher.updateID++
			h.broadcast(watcher.day, Event{Type: EventStats, Data: StatsUpdate{
				TournamentDay: watcher.day,
				UpdateID:      watcher.updateID,
				Stats:         stats,
			}})
		}
	}
}

// broadcast delivers to every subscriber without blocking the poller. A
// connection whose buffer is full is dropped, alone.
func (h *Hub) broadcast(day string, event Event) {
	h.mu.Lock()
	var stalled []*Conn
	if watcher, ok := h.days[day]; ok {
		for conn := range watcher.conns {
			if !conn.send(event) {
				stalled = append(stalled, conn)
			}
		}
	}
	h.mu.Unlock()

	for _, conn := range stalled {
		log.Println("dropping slow connection", conn.ID, "on", day)
		conn.Close()
	}
}

// Snapshot sends one fresh page to a single connection, used by the websocket
// refresh command.
func (h *Hub) Snapshot(conn *Conn) {
	page, err := h.fetchPage(conn.Day)
	if err != nil {
		log.Println("snapshot for", conn.ID, "failed:", err)
		return
	}
	conn.send(Event{Type: EventLeaderboard, Data: LeaderboardUpdate{
		TournamentDay: conn.Day,
		Page:          page,
	}})
}

// StatsSnapshot sends current aggregate stats to a single connection.
func (h *Hub) StatsSnapshot(conn *Conn) {
	stats, err := h.fetchStats(conn.Day)
	if err != nil {
		log.Println("stats snapshot for", conn.ID, "failed:", err)
		return
	}
	conn.send(Event{Type: EventStats, Data: StatsUpdate{
		TournamentDay: conn.Day,
		Stats:         stats,
	}})
}

// fetchPage bounds a downstream call so one slow fetch cannot stall fan-out
// for every subscriber of the day.
func (h *Hub) fetchPage(day string) (*model.LeaderboardPage, error) {
	type result struct {
		page *model.LeaderboardPage
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		page, err := h.pages.GetPage(day, 0, h.pageSize)
		ch <- result{page, err}
	}()

	select {
	case r := <-ch:
		return r.page, r.err
	case <-time.After(h.fetchTimeout):
		return nil, errFetchTimeout
	}
}

func (h *Hub) fetchStats(day string) (*model.TournamentStats, error) {
	type result struct {
		stats *model.TournamentStats
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		stats, err := h.stats.Stats(day)
		ch <- result{stats, err}
	}()

	select {
	case r := <-ch:
		return r.stats, r.err
	case <-time.After(h.fetchTimeout):
		return nil, errFetchTimeout
	}
}
