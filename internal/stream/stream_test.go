package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gpsnav/internal/store"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return conn
}

func TestSubscribeReceivesPublishedEvent(t *testing.T) {
	broker := NewBroker()
	srv := httptest.NewServer(NewHandler(broker))
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatalf("write connection_init: %v", err)
	}
	var ack wsMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != "connection_ack" {
		t.Fatalf("ack.Type = %q, want connection_ack", ack.Type)
	}

	payload, _ := json.Marshal(subscribePayload{RunID: "run-1"})
	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "sub-1", Payload: payload}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	// Give the server a moment to register the subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		broker.mu.Lock()
		_, ok := broker.subs["run-1"]
		broker.mu.Unlock()
		if ok || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	broker.Publish(Event{RunID: "run-1", Summary: &store.RunSummary{RunID: "run-1", Densified: 2}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var next wsMessage
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read next: %v", err)
	}
	if next.Type != "next" || next.ID != "sub-1" {
		t.Fatalf("next = %+v, want type=next id=sub-1", next)
	}
	var evt Event
	if err := json.Unmarshal(next.Payload, &evt); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if evt.RunID != "run-1" || evt.Summary == nil || evt.Summary.Densified != 2 {
		t.Fatalf("evt = %+v, want RunID=run-1 Summary.Densified=2", evt)
	}
}

func TestSubscribeMissingRunIDReturnsError(t *testing.T) {
	broker := NewBroker()
	srv := httptest.NewServer(NewHandler(broker))
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "sub-2"}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var errMsg wsMessage
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if errMsg.Type != "error" || errMsg.ID != "sub-2" {
		t.Fatalf("errMsg = %+v, want type=error id=sub-2", errMsg)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe("run-x")
	broker.Unsubscribe("run-x", ch)
	if _, open := <-ch; open {
		t.Fatalf("expected channel to be closed after Unsubscribe")
	}
	broker.mu.Lock()
	_, exists := broker.subs["run-x"]
	broker.mu.Unlock()
	if exists {
		t.Fatalf("expected run-x subscriber set to be removed once empty")
	}
}
