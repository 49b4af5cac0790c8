package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cidfeed/pkg/model"
)

const writeWait = 5 * time.Second

// subscriber serializes writes; gorilla conns allow one concurrent writer.
type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) send(evt model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(evt)
}

// EventHub fans state-change events out to UI websocket subscribers.
type EventHub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
	logger   *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs:   map[*subscriber]struct{}{},
		logger: logger,
	}
}

// HandleSubscribe upgrades the request and keeps the connection until the
// peer goes away.
func (h *EventHub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	sub := &subscriber{conn: c}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("ui subscriber connected", zap.String("remote", r.RemoteAddr))
	go h.readLoop(sub)
}

// Publish implements command.Publisher.
func (h *EventHub) Publish(evt model.Event) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()
	for _, s := range subs {
		if err := s.send(evt); err != nil {
			h.logger.Debug("ws send failed", zap.String("type", evt.Type), zap.Error(err))
			h.drop(s)
		}
	}
}

// Subscribers reports the number of live connections.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = map[*subscriber]struct{}{}
	h.mu.Unlock()
	for s := range subs {
		_ = s.conn.Close()
	}
}

func (h *EventHub) readLoop(s *subscriber) {
	defer h.drop(s)
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *EventHub) drop(s *subscriber) {
	_ = s.conn.Close()
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("ui subscriber disconnected")
	}
}
