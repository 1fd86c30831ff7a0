package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func readFrame(t *testing.T, ctx context.Context, conn *ws.Conn) Frame {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func TestServe_SyncThenChangesUntilHubCloses(t *testing.T) {
	hub := NewHub(4, nil)
	subscribed := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := hub.Subscribe("g1")
		defer sub.Close()
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		close(subscribed)
		_ = Serve(r.Context(), conn, sub, time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	if f := readFrame(t, ctx, conn); f.Type != FrameSync {
		t.Fatalf("expected sync frame first, got %q", f.Type)
	}

	<-subscribed
	hub.Publish(ctx, change("g1", "e1"))
	hub.Publish(ctx, change("g2", "other"))
	f := readFrame(t, ctx, conn)
	if f.Type != FrameChange || f.Change == nil || f.Change.EventID != "e1" {
		t.Fatalf("unexpected change frame: %+v", f)
	}

	hub.Close()
	_, _, err = conn.Read(ctx)
	if status := ws.CloseStatus(err); status != ws.StatusGoingAway {
		t.Fatalf("expected going away close, got %v (%v)", status, err)
	}
}
