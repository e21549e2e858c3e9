package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/czx402/cz-live/backend/internal/hub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 32
)

// session adapts one websocket connection to the hub.Session contract.
type session struct {
	id        string
	conn      *websocket.Conn
	send      chan hub.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan hub.Event, sendBuffer),
		done: make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

// Send queues an event without blocking. A closed or backlogged session is
// reported as unwritable; its own read loop tears it down.
func (s *session) Send(e hub.Event) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- e:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// writePump owns all writes on the connection, serializing events and pings.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case e := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type inboundMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Username string `json:"username"`
}

// readPump consumes inbound frames until the connection dies. Malformed
// payloads are dropped with a log, never acknowledged.
func (s *session) readPump(coord *hub.Coordinator) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error session=%s: %v", s.id, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[ws] dropping malformed payload session=%s: %v", s.id, err)
			continue
		}

		switch msg.Type {
		case hub.EventUserMessage:
			// Detached from the request context so a viewer dropping
			// mid-cycle does not cancel the broadcast for the room.
			coord.HandleUserMessage(context.Background(), s, msg.Username, msg.Content)
		default:
			log.Printf("[ws] ignoring message type %q session=%s", msg.Type, s.id)
		}
	}
}
