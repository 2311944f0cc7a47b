package service

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bizpilot/bizpilot-be/types"
	"github.com/gorilla/websocket"
)

// StatusHub fans lead-processing status updates out to websocket
// subscribers. Publish never blocks the pipeline: slow subscribers drop
// updates.
type StatusHub struct {
	mu          sync.Mutex
	subscribers map[chan types.ProcessingStatus]struct{}
}

func NewStatusHub() *StatusHub {
	return &StatusHub{
		subscribers: make(map[chan types.ProcessingStatus]struct{}),
	}
}

func (h *StatusHub) Subscribe() chan types.ProcessingStatus {
	ch := make(chan types.ProcessingStatus, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *StatusHub) Unsubscribe(ch chan types.ProcessingStatus) {
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *StatusHub) Publish(status types.ProcessingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

// WebSocketService streams processing status updates to clients watching
// the lead pipeline.
type WebSocketService struct {
	hub      *StatusHub
	upgrader websocket.Upgrader
}

func NewWebSocketService(hub *StatusHub) *WebSocketService {
	return &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	updates := s.hub.Subscribe()
	defer s.hub.Unsubscribe(updates)

	// Reader goroutine notices the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket read error: %v", err)
				}
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case status, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(status); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
