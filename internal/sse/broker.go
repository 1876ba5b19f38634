// Package sse implements a Server-Sent Events broker that tells media
// pickers when the media folder has changed.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/starford/mediastore/internal/metrics"
)

// Media event kinds. "modified" comes from API mutations, the rest from the
// filesystem watcher.
const (
	KindModified = "modified"
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindRemoved  = "removed"
)

const (
	mediaEventPrefix = "media."
	treeUpdated      = "tree.updated"
	clientBuffer     = 64
	keepAlive        = 30 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broker fans events out to connected SSE clients.
//
// A single loop goroutine owns the client set, the event sequence and the
// tree throttle; every public method talks to it over channels.
type Broker struct {
	treeMin time.Duration

	join  chan chan []byte
	leave chan chan []byte
	in    chan Event
	count chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. tree.updated is sent at most once per
// treeThrottle, following a media event.
func NewBroker(treeThrottle time.Duration) *Broker {
	if treeThrottle <= 0 {
		treeThrottle = 2 * time.Second
	}

	b := &Broker{
		treeMin: treeThrottle,
		join:    make(chan chan []byte),
		leave:   make(chan chan []byte),
		in:      make(chan Event, 256),
		count:   make(chan chan int),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go b.loop()
	return b
}

// frame renders one event in wire format.
func frame(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload), nil
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	var lastTree time.Time

	send := func(event Event) {
		seq++
		msg, err := frame(seq, event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client; drop rather than stall everyone else.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			metrics.SetSSEClients(0)
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			metrics.SetSSEClients(len(clients))

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}
			metrics.SetSSEClients(len(clients))

		case event := <-b.in:
			send(event)
			if strings.HasPrefix(event.Type, mediaEventPrefix) {
				if now := time.Now(); now.Sub(lastTree) >= b.treeMin {
					lastTree = now
					send(Event{Type: treeUpdated, Data: map[string]string{}})
				}
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The channel is
// already closed if the broker is.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
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

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.in <- event:
	case <-b.stopped:
	}
}

// PublishMediaEvent publishes media.<kind> for a repo-relative path.
// Unknown kinds are dropped.
func (b *Broker) PublishMediaEvent(kind, repoPath string) {
	switch kind {
	case KindModified, KindCreated, KindUpdated, KindRemoved:
	default:
		return
	}
	b.Publish(Event{Type: mediaEventPrefix + kind, Data: map[string]string{"path": repoPath}})
}

// Notify publishes media.modified. It has the shape of a media notifier.
func (b *Broker) Notify(_ context.Context, repoPath string) error {
	b.PublishMediaEvent(KindModified, repoPath)
	return nil
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A comment line is
// written every 30 seconds so idle proxies keep the stream open.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: 3000\n\n"))
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
