// Package stream broadcasts route snapshots to subscribed websocket clients,
// keyed by run ID; the solve handler publishes one Event per run once the
// run is solved.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gpsnav/internal/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// Event is one update pushed to subscribers of a run.
type Event struct {
	RunID     string               `json:"runId"`
	Snapshots []store.RouteSnapshot `json:"snapshots,omitempty"`
	Summary   *store.RunSummary     `json:"summary,omitempty"`
}

// Broker fans Events out to per-run subscriber channels.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a new channel for runID and returns it. The channel
// is buffered so a slow reader cannot stall Publish.
func (b *Broker) Subscribe(runID string) chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[runID] == nil {
		b.subs[runID] = make(map[chan Event]struct{})
	}
	b.subs[runID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes ch from runID's subscriber set and closes it.
func (b *Broker) Unsubscribe(runID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[runID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(b.subs, runID)
		}
	}
}

// Publish fans evt out to every subscriber of evt.RunID, dropping it for
// any subscriber whose buffer is full rather than blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[evt.RunID] {
		select {
		case ch <- evt:
		default:
			log.Printf("stream: dropping event for run %s, subscriber buffer full", evt.RunID)
		}
	}
}

// wsMessage mirrors the graphql-transport-ws envelope: a type tag, an
// opaque client-assigned ID and a raw payload.
type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	RunID string `json:"runId"`
}

// Handler serves websocket connections that subscribe to one or more run
// IDs and receive Events as they're published.
type Handler struct {
	Broker *Broker
}

// NewHandler returns a Handler backed by broker.
func NewHandler(broker *Broker) *Handler {
	return &Handler{Broker: broker}
}

// ServeHTTP upgrades the connection and services connection_init/subscribe/
// complete messages until the client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	connID := uuid.NewString()
	type sub struct {
		runID string
		ch    chan Event
	}
	subs := map[string]sub{}

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	write := func(v any) error { return conn.WriteJSON(v) }

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "connection_init":
			_ = write(wsMessage{Type: "connection_ack"})
			go func() {
				ticker := time.NewTicker(20 * time.Second)
				defer ticker.Stop()
				for range ticker.C {
					if err := write(wsMessage{Type: "ping"}); err != nil {
						return
					}
				}
			}()
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			var pl subscribePayload
			_ = json.Unmarshal(msg.Payload, &pl)
			if pl.RunID == "" {
				_ = write(wsMessage{Type: "error", ID: msg.ID, Payload: []byte(`{"message":"runId required"}`)})
				_ = write(wsMessage{Type: "complete", ID: msg.ID})
				continue
			}
			ch := h.Broker.Subscribe(pl.RunID)
			subs[msg.ID] = sub{runID: pl.RunID, ch: ch}
			go func(id string, c chan Event) {
				for evt := range c {
					payload, _ := json.Marshal(evt)
					_ = write(wsMessage{Type: "next", ID: id, Payload: payload})
				}
				_ = write(wsMessage{Type: "complete", ID: id})
			}(msg.ID, ch)
		case "complete":
			if s0, ok := subs[msg.ID]; ok {
				h.Broker.Unsubscribe(s0.runID, s0.ch)
				delete(subs, msg.ID)
			}
		default:
			log.Printf("stream: connection %s sent unknown message type %q", connID, msg.Type)
		}
	}

	for id, s0 := range subs {
		h.Broker.Unsubscribe(s0.runID, s0.ch)
		delete(subs, id)
	}
}
