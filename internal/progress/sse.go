package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Event is one message on a progress stream.
type Event struct {
	Type    string `json:"type"`
	Done    int    `json:"done,omitempty"`
	Total   int    `json:"total,omitempty"`
	UnitID  string `json:"unit_id,omitempty"`
	Message string `json:"message,omitempty"`
	Time    string `json:"time"`
}

type sseClient struct {
	events chan Event
	done   chan struct{}
}

// SSEServer fans reconciliation progress out to server-sent-event streams,
// one subscriber per stream id. Only the handler goroutine writes to its
// connection.
type SSEServer struct {
	mu        sync.RWMutex
	clients   map[string]*sseClient
	stopCh    chan struct{}
	stopOnce  sync.Once
	pingEvery time.Duration
}

func NewSSEServer(pingEvery time.Duration) *SSEServer {
	if pingEvery <= 0 {
		pingEvery = 30 * time.Second
	}
	return &SSEServer{
		clients:   make(map[string]*sseClient),
		stopCh:    make(chan struct{}),
		pingEvery: pingEvery,
	}
}

// HandleSSE streams events for ?stream_id= until the client goes away.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	streamID := r.URL.Query().Get("stream_id")
	if streamID == "" {
		http.Error(w, "stream_id parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sseClient{events: make(chan Event, 64), done: make(chan struct{})}
	s.mu.Lock()
	if existing, exists := s.clients[streamID]; exists {
		close(existing.done)
	}
	s.clients[streamID] = client
	s.mu.Unlock()
	log.Printf("[SSE] Subscribed stream %s from %s", streamID, r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		if s.clients[streamID] == client {
			delete(s.clients, streamID)
		}
		s.mu.Unlock()
		log.Printf("[SSE] Closed stream %s", streamID)
	}()

	if err := writeEvent(w, flusher, newEvent("connected")); err != nil {
		return
	}

	ping := time.NewTicker(s.pingEvery)
	defer ping.Stop()
	for {
		select {
		case ev := <-client.events:
			if err := writeEvent(w, flusher, ev); err != nil {
				return
			}
		case <-ping.C:
			if err := writeEvent(w, flusher, newEvent("ping")); err != nil {
				return
			}
		case <-client.done:
			return
		case <-r.Context().Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

// Send queues an event for a stream. Events for absent streams, or beyond a
// slow subscriber's buffer, are dropped.
func (s *SSEServer) Send(streamID string, ev Event) bool {
	if ev.Time == "" {
		ev.Time = time.Now().Format(time.RFC3339)
	}
	s.mu.RLock()
	client, ok := s.clients[streamID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.events <- ev:
		return true
	default:
		return false
	}
}

// Reporter adapts a stream into a per-unit progress callback.
func (s *SSEServer) Reporter(streamID string) func(done, total int, unitID string) {
	return func(done, total int, unitID string) {
		ev := newEvent("progress")
		ev.Done, ev.Total, ev.UnitID = done, total, unitID
		s.Send(streamID, ev)
	}
}

func (s *SSEServer) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SSEServer) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Finished builds the closing event of a run.
func Finished(message string) Event {
	ev := newEvent("done")
	ev.Message = message
	return ev
}

// Failed builds the closing event of a run that did not complete.
func Failed(message string) Event {
	ev := newEvent("error")
	ev.Message = message
	return ev
}

func newEvent(kind string) Event {
	return Event{Type: kind, Time: time.Now().Format(time.RFC3339)}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
