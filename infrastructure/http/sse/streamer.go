package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/agrisync/agrisync/domain/entity"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

// Event is one server-sent event on the local API stream. Types in use:
// sync_status, table_changed, connected.
type Event struct {
	Type  string      `json:"type"`
	Table string      `json:"table,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Time  int64       `json:"time"`
}

// Streamer fans sync and store events out to connected UI clients. It is
// how the app's screens observe the pending queue shrinking without
// polling.
type Streamer struct {
	mu      sync.RWMutex
	clients map[string]chan []byte
	nextID  int
	logger  logger.Logger
}

func NewStreamer(log logger.Logger) *Streamer {
	return &Streamer{
		clients: make(map[string]chan []byte),
		logger:  log,
	}
}

type statusSource interface {
	SubscribeStatus() <-chan entity.SyncStatus
}

type changeSource interface {
	Watch(table string) (<-chan struct{}, func())
}

// Start pumps sync status snapshots and table change notifications into
// the broadcast until the context ends.
func (s *Streamer) Start(ctx context.Context, status statusSource, changes changeSource, tables []string) {
	go func() {
		statusCh := status.SubscribeStatus()
		for {
			select {
			case <-ctx.Done():
				return
			case snapshot := <-statusCh:
				s.Broadcast("sync_status", "", snapshot)
			}
		}
	}()

	for _, table := range tables {
		go func(table string) {
			ch, cancel := changes.Watch(table)
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					s.Broadcast("table_changed", table, nil)
				}
			}
		}(table)
	}
}

func (s *Streamer) Broadcast(eventType, table string, data interface{}) {
	event := Event{
		Type:  eventType,
		Table: table,
		Data:  data,
		Time:  time.Now().Unix(),
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.clients {
		select {
		case ch <- message:
		default:
			// Slow client; it misses this event but stays connected.
		}
	}
}

func (s *Streamer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// HandleSSE serves one client connection until it disconnects.
func (s *Streamer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 64)
	s.mu.Lock()
	s.nextID++
	clientID := fmt.Sprintf("client_%d", s.nextID)
	s.clients[clientID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, clientID)
		s.mu.Unlock()
	}()

	s.writeEvent(w, "connected", map[string]interface{}{"client_id": clientID})
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case message := <-ch:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", message); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ":heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Streamer) writeEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Time: time.Now().Unix()})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
