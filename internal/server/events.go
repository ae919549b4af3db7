package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handsoff/internal/classifier"
	"github.com/ayusman/handsoff/internal/logger"
	"github.com/ayusman/handsoff/internal/session"
)

const (
	clientBuffer = 32
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Event is one message on the /api/events feed.
type Event struct {
	Type      string             `json:"type"`
	Phase     *session.Phase     `json:"phase,omitempty"`
	Actions   *session.Actions   `json:"actions,omitempty"`
	Label     *classifier.Label  `json:"label,omitempty"`
	Progress  float64            `json:"progress,omitempty"`
	Touched   *bool              `json:"touched,omitempty"`
	Result    *classifier.Result `json:"result,omitempty"`
	Collected int                `json:"collected,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// EventsHandler broadcasts session events to websocket clients. It is a
// session.Observer.
type EventsHandler struct {
	clients map[*websocket.Conn]chan []byte
	mu      sync.RWMutex
	log     *logger.Logger
}

// NewEventsHandler creates an EventsHandler with no clients.
func NewEventsHandler() *EventsHandler {
	return &EventsHandler{
		clients: make(map[*websocket.Conn]chan []byte),
		log:     logger.Named("events"),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Keep connection alive by reading messages
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues ev for every client. Slow clients miss events rather
// than stall the session.
func (h *EventsHandler) broadcast(ev Event) {
	ev.Timestamp = time.Now().UnixMilli()
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", ev.Type).Msg("failed to encode event")
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

func (h *EventsHandler) OnPhase(p session.Phase, a session.Actions) {
	h.broadcast(Event{Type: "phase", Phase: &p, Actions: &a})
}

func (h *EventsHandler) OnProgress(l classifier.Label, fraction float64) {
	h.broadcast(Event{Type: "progress", Label: &l, Progress: fraction})
}

func (h *EventsHandler) OnTouched(touched bool, r classifier.Result) {
	h.broadcast(Event{Type: "touched", Touched: &touched, Result: &r})
}

func (h *EventsHandler) OnTraining(rep session.TrainingReport) {
	ev := Event{Type: "training", Label: &rep.Label, Collected: rep.Collected}
	if rep.Err != nil {
		ev.Error = rep.Err.Error()
	}
	h.broadcast(ev)
}

func (h *EventsHandler) OnError(err error) {
	h.broadcast(Event{Type: "error", Error: err.Error()})
}
