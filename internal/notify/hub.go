package notify

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub keeps the open agenda streams of each user and fans events out to them.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]*sync.Mutex // userID -> conn -> write lock
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]*sync.Mutex)}
}

// Register attaches conn to userID. A user may have several devices connected.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]*sync.Mutex)
	}
	h.conns[userID][conn] = &sync.Mutex{}
}

// Unregister closes conn and forgets it.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		if _, ok := set[conn]; ok {
			_ = conn.Close()
			delete(set, conn)
		}
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Publish sends v as JSON to every stream of userID. Connections that fail
// the write are dropped.
func (h *Hub) Publish(userID string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("notify: marshal event: %v", err)
		return
	}

	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns[userID]))
	for c, lock := range h.conns[userID] {
		targets[c] = lock
	}
	h.mu.RUnlock()

	for conn, lock := range targets {
		lock.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		lock.Unlock()
		if err != nil {
			log.Printf("notify: write to %s: %v", userID, err)
			h.Unregister(userID, conn)
		}
	}
}

// Connected returns how many streams userID has open.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
