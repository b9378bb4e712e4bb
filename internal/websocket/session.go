package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeTimeout   = 10 * time.Second
	idleTimeout    = 60 * time.Second
	pingInterval   = idleTimeout * 9 / 10
	maxInboundSize = 512
	outboundBuffer = 64
)

// Session is one upgraded connection subscribed to a workspace's events.
// The stream is server to client only; inbound frames just keep it alive.
type Session struct {
	id          string
	workspaceID int32
	conn        *websocket.Conn
	hub         *Hub

	outbound chan []byte
	done     chan struct{}
	once     sync.Once
}

// NewSession wraps an upgraded connection for workspaceID
func NewSession(conn *websocket.Conn, workspaceID int32, hub *Hub) *Session {
	return &Session{
		id:          uuid.NewString(),
		workspaceID: workspaceID,
		conn:        conn,
		hub:         hub,
		outbound:    make(chan []byte, outboundBuffer),
		done:        make(chan struct{}),
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) WorkspaceID() int32 { return s.workspaceID }

// Done is closed once the session has shut down
func (s *Session) Done() <-chan struct{} { return s.done }

// Deliver queues a frame without blocking the publisher
func (s *Session) Deliver(frame []byte) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.outbound <- frame:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSlowConsumer
	}
}

// Close stops both pumps and closes the connection. It is idempotent.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.conn.Close()
	})
	return err
}

// Run registers the session and serves it until the peer goes away or the
// hub evicts it. It blocks; callers normally start it in a goroutine.
func (s *Session) Run() {
	s.hub.Register(s)
	go s.writeLoop()
	s.readLoop()
}

func (s *Session) readLoop() {
	defer func() {
		s.hub.Unregister(s)
		_ = s.Close()
	}()

	s.conn.SetReadLimit(maxInboundSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().
					Err(err).
					Str("session_id", s.id).
					Int32("workspace_id", s.workspaceID).
					Msg("WebSocket closed unexpectedly")
			}
			return
		}
	}
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			deadline := time.Now().Add(writeTimeout)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), deadline)
			return

		case frame := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("session_id", s.id).Msg("WebSocket write failed")
				_ = s.Close()
				return
			}

		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				_ = s.Close()
				return
			}
		}
	}
}
