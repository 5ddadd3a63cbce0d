// Package sse streams vault change notifications to the desktop client as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Wire event names, as the desktop client subscribes to them. Document
// events carry the affected path; EventVaultChanged is a bare coalesced
// refresh signal emitted at most once per throttle window.
const (
	EventFileCreated  = "file.created"
	EventFileUpdated  = "file.updated"
	EventFileDeleted  = "file.deleted"
	EventVaultChanged = "vault.changed"
)

// wireEvent maps a watcher change kind to its wire event name.
func wireEvent(kind string) (string, bool) {
	switch kind {
	case "created":
		return EventFileCreated, true
	case "updated":
		return EventFileUpdated, true
	case "deleted":
		return EventFileDeleted, true
	}
	return "", false
}

// change is one document change headed for the run loop, already carrying
// its wire event name.
type change struct {
	event string
	path  string
}

// Broker fans vault changes out to connected SSE clients.
//
// A single loop goroutine owns the client set and the refresh throttle;
// the public methods talk to it through channels, so no mutexes are
// required. Clients that stop draining are skipped, not awaited.
type Broker struct {
	refreshMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan change
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker and starts its loop. refreshThrottle bounds
// how often the coalescing vault.changed event is emitted.
func NewBroker(refreshThrottle time.Duration) *Broker {
	if refreshThrottle <= 0 {
		refreshThrottle = 2 * time.Second
	}

	b := &Broker{
		refreshMin:    refreshThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan change, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastRefresh time.Time

	broadcast := func(frame []byte) {
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// Client buffer full; the next vault.changed lets it resync.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changeCh:
			broadcast(frame(c.event, map[string]string{"path": c.path}))
			if now := time.Now(); now.Sub(lastRefresh) >= b.refreshMin {
				lastRefresh = now
				broadcast(frame(EventVaultChanged, map[string]string{}))
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// frame renders one SSE frame: the event name line, the JSON data line,
// and the blank terminator.
func frame(event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))
}

// PublishFileEvent broadcasts a document change to every connected client,
// plus a throttled vault.changed signal the client uses to refresh its
// file list. kind is one of created, updated, deleted as reported by the
// vault watcher; anything else is dropped.
func (b *Broker) PublishFileEvent(kind, path string) {
	event, ok := wireEvent(kind)
	if !ok {
		slog.Debug("sse: dropping unknown change kind", slog.String("kind", kind))
		return
	}
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- change{event: event, path: path}:
	case <-b.stopped:
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// subscribe registers a client channel with the loop. On a closed broker
// the returned channel is already closed.
func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). It holds the
// connection open and relays frames until the client disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.subscribe()
	defer b.unsubscribe(ch)
	slog.Debug("sse: client connected", slog.Int("clients", b.ClientCount()))

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("sse: client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
