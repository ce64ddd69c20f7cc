package rpc

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openexch/marketd/internal/events"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsMaxMessage   = 64 * 1024
)

// WebSocketServer streams exchange events to connected clients. Every
// connection receives all Listed/Sold/Canceled events from the moment it
// connects; there is no backfill.
type WebSocketServer struct {
	upgrader  websocket.Upgrader
	publisher *events.Publisher

	mu     sync.Mutex
	nextID int
	conns  map[int]*websocket.Conn
}

// NewWebSocketServer creates a WebSocket server over the publisher.
func NewWebSocketServer(publisher *events.Publisher) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		publisher: publisher,
		conns:     make(map[int]*websocket.Conn),
	}
}

// ServeHTTP upgrades the connection and starts streaming.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("rpc: websocket upgrade failed: %v", err)
		return
	}

	ws.mu.Lock()
	id := ws.nextID
	ws.nextID++
	ws.conns[id] = conn
	ws.mu.Unlock()

	ch, cancel := ws.publisher.Subscribe()

	go ws.readLoop(id, conn, cancel)
	go ws.writeLoop(id, conn, ch, cancel)
}

// readLoop discards inbound frames and detects the close handshake. The
// stream is one-way; clients only listen.
func (ws *WebSocketServer) readLoop(id int, conn *websocket.Conn, cancel func()) {
	defer ws.drop(id, conn, cancel)

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop forwards events and keeps the connection alive with pings.
func (ws *WebSocketServer) writeLoop(id int, conn *websocket.Conn, ch <-chan events.Event, cancel func()) {
	defer ws.drop(id, conn, cancel)

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop tears the connection down once, whichever loop exits first.
func (ws *WebSocketServer) drop(id int, conn *websocket.Conn, cancel func()) {
	cancel()

	ws.mu.Lock()
	_, open := ws.conns[id]
	delete(ws.conns, id)
	ws.mu.Unlock()

	if open {
		conn.Close()
	}
}

// ConnectionCount returns the number of live connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.conns)
}
