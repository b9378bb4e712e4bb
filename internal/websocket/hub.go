package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrSessionClosed is returned when delivering to a session that has shut down
	ErrSessionClosed = errors.New("websocket session closed")
	// ErrSlowConsumer is returned when a session's outbound buffer is full
	ErrSlowConsumer = errors.New("websocket session outbound buffer full")
)

// Subscriber is one live connection that receives a workspace's events
type Subscriber interface {
	ID() string
	WorkspaceID() int32
	Deliver(frame []byte) error
	Close() error
}

// room holds the subscribers of one workspace, keyed by subscriber ID
type room map[string]Subscriber

// Hub fans events out to every subscriber of a workspace.
// Subscribers that fail a delivery are evicted and closed.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int32]room
	closed bool
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[int32]room)}
}

// Register adds a subscriber to its workspace room. Registering after
// Shutdown closes the subscriber immediately.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = s.Close()
		return
	}
	r, ok := h.rooms[s.WorkspaceID()]
	if !ok {
		r = make(room)
		h.rooms[s.WorkspaceID()] = r
	}
	r[s.ID()] = s
	size := len(r)
	h.mu.Unlock()

	log.Debug().
		Int32("workspace_id", s.WorkspaceID()).
		Str("session_id", s.ID()).
		Int("room_size", size).
		Msg("WebSocket subscriber joined")
}

// Unregister removes a subscriber; it reports whether the subscriber was present
func (h *Hub) Unregister(s Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(s)
}

func (h *Hub) removeLocked(s Subscriber) bool {
	r, ok := h.rooms[s.WorkspaceID()]
	if !ok {
		return false
	}
	current, ok := r[s.ID()]
	if !ok || current != s {
		return false
	}
	delete(r, s.ID())
	if len(r) == 0 {
		delete(h.rooms, s.WorkspaceID())
	}
	return true
}

// Publish delivers an event to every subscriber of one workspace
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.PublishMany([]int32{workspaceID}, event)
}

// PublishMany delivers one event to several workspaces, encoding it once
func (h *Hub) PublishMany(workspaceIDs []int32, event Event) {
	frame, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to encode WebSocket event")
		return
	}

	targets := h.snapshot(workspaceIDs)
	if len(targets) == 0 {
		return
	}

	var failed []Subscriber
	for _, s := range targets {
		if err := s.Deliver(frame); err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", s.WorkspaceID()).
				Str("session_id", s.ID()).
				Msg("Evicting WebSocket subscriber")
			failed = append(failed, s)
		}
	}
	h.evict(failed)

	log.Debug().
		Str("event_type", event.Type).
		Int("workspaces", len(workspaceIDs)).
		Int("delivered", len(targets)-len(failed)).
		Msg("WebSocket event published")
}

// snapshot copies the targeted subscribers so delivery runs without the lock
func (h *Hub) snapshot(workspaceIDs []int32) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var targets []Subscriber
	for _, id := range workspaceIDs {
		for _, s := range h.rooms[id] {
			targets = append(targets, s)
		}
	}
	return targets
}

func (h *Hub) evict(subs []Subscriber) {
	if len(subs) == 0 {
		return
	}
	h.mu.Lock()
	for _, s := range subs {
		h.removeLocked(s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
}

// ClientCount returns the number of subscribers connected to a workspace
func (h *Hub) ClientCount(workspaceID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[workspaceID])
}

// Stats reports the number of rooms and subscribers
func (h *Hub) Stats() (workspaces, subscribers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rooms {
		subscribers += len(r)
	}
	return len(h.rooms), subscribers
}

// Shutdown closes every subscriber and rejects later registrations
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	rooms := h.rooms
	h.rooms = make(map[int32]room)
	h.mu.Unlock()

	closed := 0
	for _, r := range rooms {
		for _, s := range r {
			_ = s.Close()
			closed++
		}
	}
	log.Info().Int("sessions", closed).Msg("WebSocket hub shut down")
}
