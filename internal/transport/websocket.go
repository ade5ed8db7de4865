// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	applog "voicebird/internal/log"

	"github.com/gorilla/websocket"
)

// WebSocketTransport fans published pitch samples out to every
// connected client as JSON. Slow consumers never stall the pipeline:
// Send drops when the broadcast queue is full, and a client that fails
// a write is evicted.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	done      chan struct{}
	server    *http.Server
	closeOnce sync.Once
}

// NewWebSocketTransport creates the transport and starts serving on
// addr. The feed is exposed at /pitch.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := newWebSocketTransport(addr)

	wst.server = &http.Server{
		Addr:    addr,
		Handler: wst.Handler(),
	}

	go func() {
		applog.Infof("transport: serving pitch feed on ws://%s/pitch", addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: server error: %v", err)
		}
	}()
	go wst.handleBroadcasts()

	return wst
}

func newWebSocketTransport(addr string) *WebSocketTransport {
	return &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tool; any origin may read the feed.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}
}

// Handler returns the HTTP handler serving the feed endpoint.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/pitch", wst.handleClient)
	return mux
}

func (wst *WebSocketTransport) handleClient(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("transport: client connected, total: %d", total)

	// The feed is one-way; the read loop only notices disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.drop(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) drop(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	if _, ok := wst.clients[conn]; ok {
		delete(wst.clients, conn)
		applog.Infof("transport: client disconnected, total: %d", len(wst.clients))
	}
	wst.clientsMu.Unlock()
	conn.Close()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Warnf("transport: evicting client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// Send queues data for broadcast. When the queue is full the sample is
// dropped; the next one supersedes it anyway.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case wst.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
