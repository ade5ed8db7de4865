// SPDX-License-Identifier: MIT
package transport

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voicebird/internal/pitch"

	"github.com/gorilla/websocket"
)

// startTestFeed serves the feed handler over an httptest server so no
// fixed port is needed.
func startTestFeed(t *testing.T) (*WebSocketTransport, string) {
	t.Helper()
	wst := newWebSocketTransport("test")
	go wst.handleBroadcasts()

	srv := httptest.NewServer(wst.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { wst.Close() })

	return wst, "ws" + strings.TrimPrefix(srv.URL, "http") + "/pitch"
}

func TestWebSocketTransportBroadcastsSamples(t *testing.T) {
	wst, url := startTestFeed(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sent := pitch.Sample{Frequency: 220.5, RMS: 0.3, WindowID: 7, SampleRate: 44100, Timestamp: time.Now()}

	// The read loop registers asynchronously; retry until the client
	// is seen.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := wst.Send(sent); err != nil {
			t.Fatalf("Send: %v", err)
		}
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		var got pitch.Sample
		if err := conn.ReadJSON(&got); err == nil {
			if got.WindowID != sent.WindowID || got.Frequency != sent.Frequency {
				t.Fatalf("received %+v, want %+v", got, sent)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no sample received within deadline")
		}
	}
}

func TestWebSocketTransportSendNeverBlocks(t *testing.T) {
	wst := newWebSocketTransport("test")
	// No broadcast goroutine: the queue fills and Send must keep
	// returning immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			wst.Send(pitch.Sample{WindowID: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full broadcast queue")
	}
}

func TestWebSocketTransportCloseIsIdempotent(t *testing.T) {
	wst, _ := startTestFeed(t)
	if err := wst.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
