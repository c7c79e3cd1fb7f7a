package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishReachesClient(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := mux.NewRouter()
	RegisterRoutes(r, hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 })

	hub.Publish("leaderboard_updated", map[string]int{"score": 250})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var event struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatal(err)
	}
	if event.Type != "leaderboard_updated" || event.Payload["score"] != 250 {
		t.Errorf("event = %+v", event)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}

func TestPublishWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish("achievement_unlocked", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no running hub")
	}
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"})

	allowed := httptest.NewRequest(http.MethodGet, "/ws", nil)
	allowed.Header.Set("Origin", "http://localhost:3000")
	if !hub.upgrader.CheckOrigin(allowed) {
		t.Error("configured origin rejected")
	}

	denied := httptest.NewRequest(http.MethodGet, "/ws", nil)
	denied.Header.Set("Origin", "http://evil.example.com")
	if hub.upgrader.CheckOrigin(denied) {
		t.Error("unknown origin accepted")
	}
}

func TestShutdownReleasesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := mux.NewRouter()
	RegisterRoutes(r, hub)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.Clients() == 1 && hub.pumps.Load() == 1 })

	cancel()

	// the read pump must not hang on unregister once Run has returned
	waitFor(t, func() bool { return hub.pumps.Load() == 0 })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("connection still open after shutdown")
	}

	// late connections are refused instead of blocking on register
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial after shutdown: %v", err)
	}
	defer late.Close()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("late connection was served after shutdown")
	}
	if n := hub.pumps.Load(); n != 0 {
		t.Errorf("pumps after late connection = %d, want 0", n)
	}
}
