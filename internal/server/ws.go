package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/pipeline"
)

// writeWait is the per-message write deadline for result pushes.
const writeWait = 5 * time.Second

// sendBuffer is the per-client queue depth; results beyond it are dropped.
const sendBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ResultsHandler pushes every published detection result to connected
// WebSocket clients. It registers itself as a pipeline result sink.
// Each client has its own buffered queue drained by a writer goroutine,
// so push never blocks the detection goroutine on a slow client; results
// a client cannot keep up with are dropped, not queued unbounded.
type ResultsHandler struct {
	pipe    *pipeline.Pipeline
	clients map[*websocket.Conn]chan []byte
	mu      sync.RWMutex
}

// NewResultsHandler creates a ResultsHandler wired to the given pipeline.
func NewResultsHandler(p *pipeline.Pipeline) *ResultsHandler {
	h := &ResultsHandler{
		pipe:    p,
		clients: make(map[*websocket.Conn]chan []byte),
	}
	p.OnResult(h.push)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	send := make(chan []byte, sendBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		// No push can reach this client anymore; safe to close its queue.
		close(send)
	}()

	go writeLoop(conn, send)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop drains one client's queue. A write error or an expired write
// deadline drops the client.
func writeLoop(conn *websocket.Conn, send <-chan []byte) {
	defer conn.Close()

	for msg := range send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// push queues one published result for every connected client. Runs on the
// detection goroutine; it must not block, so full queues drop the result.
func (h *ResultsHandler) push(faces []detector.FaceRegion) {
	msg, err := json.Marshal(map[string]any{
		"status":    h.pipe.State().Status(),
		"faces":     faces,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, send := range h.clients {
		select {
		case send <- msg:
		default:
		}
	}
}
