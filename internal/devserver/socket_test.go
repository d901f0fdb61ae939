package devserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maquette-dev/maquette/pkg/render"
)

func dialSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.socket.HandleWebSocket))
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for srv.socket.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestBroadcastDropsStaleGenerations(t *testing.T) {
	srv := newTestServer(t)
	conn := dialSocket(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	pass := func(gen uint64, id string) *render.Output {
		return &render.Output{Generation: gen, ManifestID: id}
	}

	srv.socket.Broadcast(pass(2, "newer"))
	var msg SocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading first pass: %v", err)
	}
	if msg.Output.Generation != 2 {
		t.Fatalf("got generation %d, want 2", msg.Output.Generation)
	}

	// A pass that settled late must never reach the wire after a newer
	// one has been delivered.
	srv.socket.Broadcast(pass(1, "stale"))
	srv.socket.Broadcast(pass(3, "next"))

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading next pass: %v", err)
	}
	if msg.Output.Generation != 3 {
		t.Errorf("got generation %d, want 3 (stale pass must be dropped)", msg.Output.Generation)
	}
	if msg.Output.ManifestID != "next" {
		t.Errorf("got manifest %q, want next", msg.Output.ManifestID)
	}
}

func TestAttachCatchUpRespectsNewerBroadcast(t *testing.T) {
	srv := newTestServer(t)
	conn := dialSocket(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// Simulate a broadcast landing before the attach catch-up write.
	srv.socket.Broadcast(&render.Output{Generation: 5, ManifestID: "applied"})

	var msg SocketMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	// A catch-up for an older generation on the same connection is a
	// no-op rather than a second, out-of-order delivery.
	client := func() *socketClient {
		srv.socket.mu.RLock()
		defer srv.socket.mu.RUnlock()
		for _, c := range srv.socket.clients {
			return c
		}
		return nil
	}()
	if client == nil {
		t.Fatal("no registered client")
	}
	if err := client.writeRender(4, []byte(`{"type":"render"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv.socket.Broadcast(&render.Output{Generation: 6, ManifestID: "final"})
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading final broadcast: %v", err)
	}
	if msg.Output.Generation != 6 {
		t.Errorf("got generation %d, want 6 (older catch-up must not be written)", msg.Output.Generation)
	}
}
