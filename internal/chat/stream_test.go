package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/learnage/portal/internal/model"
	ws "github.com/learnage/portal/internal/websocket"
	"github.com/rs/zerolog"
)

func newStreamServer(t *testing.T, snapshots [][]model.ChatMessage) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != StreamPath("10A") || r.URL.Query().Get("token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		next := 0
		send := func() {
			if next < len(snapshots) {
				ws.WriteTyped(conn, ws.NewSnapshot("10A", snapshots[next]))
				next++
			}
		}
		send()

		for {
			var req ws.RequestEnvelope
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Action == ws.ActionRefresh {
				send()
			}
		}
	}))
}

func TestStreamDeliversSnapshots(t *testing.T) {
	srv := newStreamServer(t, [][]model.ChatMessage{{}, sample("m1")})
	defer srv.Close()

	delivered := make(chan []model.ChatMessage, 4)
	s, err := DialStream(context.Background(), nil, srv.URL, "10A", "tok",
		func(m []model.ChatMessage) { delivered <- m }, zerolog.Nop())
	if err != nil {
		t.Fatalf("DialStream() error = %v", err)
	}
	defer s.Close()

	if got := waitDelivery(t, delivered); len(got) != 0 {
		t.Fatalf("initial snapshot = %+v, want empty", got)
	}

	s.Refresh()
	if got := waitDelivery(t, delivered); len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("refreshed snapshot = %+v", got)
	}
}

func TestStreamCloseStopsDelivery(t *testing.T) {
	srv := newStreamServer(t, [][]model.ChatMessage{sample("m1")})
	defer srv.Close()

	delivered := make(chan []model.ChatMessage, 4)
	s, err := DialStream(context.Background(), nil, srv.URL, "10A", "tok",
		func(m []model.ChatMessage) { delivered <- m }, zerolog.Nop())
	if err != nil {
		t.Fatalf("DialStream() error = %v", err)
	}
	waitDelivery(t, delivered)

	s.Close()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader still running after Close")
	}
	s.Refresh()
}

func TestDialStreamRejected(t *testing.T) {
	srv := newStreamServer(t, nil)
	defer srv.Close()

	_, err := DialStream(context.Background(), nil, srv.URL, "10A", "wrong", func([]model.ChatMessage) {}, zerolog.Nop())
	if err == nil {
		t.Fatal("DialStream() error = nil, want rejection")
	}
}

func TestDialStreamNoClass(t *testing.T) {
	_, err := DialStream(context.Background(), nil, "http://localhost", "", "tok", func([]model.ChatMessage) {}, zerolog.Nop())
	if err != ErrNoClass {
		t.Fatalf("DialStream() error = %v, want ErrNoClass", err)
	}
}
