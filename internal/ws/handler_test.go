package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func startHub(t *testing.T, current func() (*session.Session, error)) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { hub.Serve(c, current) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func noMatch() (*session.Session, error) { return nil, session.ErrNoMatch }

func TestClientGetsCurrentSnapshotOnConnect(t *testing.T) {
	s, err := session.New(session.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, conn := startHub(t, func() (*session.Session, error) { return s, nil })

	msg := readMessage(t, conn)
	if msg["type"] != "snapshot" || msg["match_id"] != s.Info().ID {
		t.Errorf("first message = %v", msg)
	}
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub, conn := startHub(t, noMatch)

	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.Events(context.Background(), session.Info{ID: "m1"}, []match.Event{{Kind: match.EventGoal, Team: match.Away}})

	msg := readMessage(t, conn)
	if msg["type"] != "events" || msg["match_id"] != "m1" {
		t.Fatalf("message = %v", msg)
	}
	events := msg["events"].([]interface{})
	if len(events) != 1 || events[0].(map[string]interface{})["kind"] != "goal" {
		t.Errorf("events = %v", events)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		current func() (*session.Session, error)
		send    string
		want    string
	}{
		{"not json", noMatch, "{", "invalid message"},
		{"no match", noMatch, `{"type":"input","data":{"kind":"select"}}`, "no match running"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, conn := startHub(t, tt.current)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.send)); err != nil {
				t.Fatal(err)
			}
			msg := readMessage(t, conn)
			if msg["type"] != "error" || msg["message"] != tt.want {
				t.Errorf("reply = %v, want error %q", msg, tt.want)
			}
		})
	}
}

func TestClientInputRejected(t *testing.T) {
	s, err := session.New(session.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, conn := startHub(t, func() (*session.Session, error) { return s, nil })
	readMessage(t, conn) // snapshot

	data, _ := json.Marshal(WSMessage{Type: "input", Data: json.RawMessage(`{"kind":"wave","x":1,"y":2}`)})
	conn.WriteMessage(websocket.TextMessage, data)

	msg := readMessage(t, conn)
	if msg["type"] != "error" || !strings.Contains(msg["message"].(string), "invalid input") {
		t.Errorf("reply = %v", msg)
	}
}
