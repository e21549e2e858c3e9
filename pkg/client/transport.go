package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/czx402/cz-live/backend/internal/hub"
)

// Event mirrors the server's tagged envelope. Consumers must ignore unknown
// types.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ChatTransport abstracts how a client reaches the chat service: a live
// websocket when available, HTTP request/response otherwise. Selected once at
// session start, not per call.
type ChatTransport interface {
	Send(ctx context.Context, content, username string) error
	Events() <-chan Event
	IsLive() bool
	Close() error
}

// DefaultDialTimeout bounds the websocket attempt before downgrading.
const DefaultDialTimeout = 3 * time.Second

// Dial establishes the best available transport: the live channel first, the
// HTTP fallback when the websocket cannot be established within timeout.
func Dial(ctx context.Context, wsURL, httpBaseURL string, timeout time.Duration) ChatTransport {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	transport, err := DialWS(dialCtx, wsURL)
	if err == nil {
		return transport
	}

	log.Printf("[transport] live channel unavailable (%v), using HTTP fallback", err)
	return NewHTTPTransport(httpBaseURL)
}

// WSTransport is the live channel implementation.
type WSTransport struct {
	conn      *websocket.Conn
	events    chan Event
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// DialWS connects to the live channel endpoint, e.g. ws://host/ws.
func DialWS(ctx context.Context, url string) (*WSTransport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial live channel: %w", err)
	}

	t := &WSTransport{
		conn:   conn,
		events: make(chan Event, 32),
	}
	go t.readLoop()
	return t, nil
}

func (t *WSTransport) readLoop() {
	defer close(t.events)
	for {
		var e Event
		if err := t.conn.ReadJSON(&e); err != nil {
			return
		}
		t.events <- e
	}
}

// Send pushes a user message over the live channel.
func (t *WSTransport) Send(_ context.Context, content, username string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(map[string]string{
		"type":     hub.EventUserMessage,
		"content":  content,
		"username": username,
	})
}

// Events returns the inbound event stream. The channel closes when the
// connection dies.
func (t *WSTransport) Events() <-chan Event { return t.events }

// IsLive reports that server push is available.
func (t *WSTransport) IsLive() bool { return true }

// Close tears down the connection; the read loop closes Events.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}

// HTTPTransport is the stateless request/response fallback. Server push is
// unavailable, so each accepted send synthesizes the live channel's event
// sequence locally from the response body.
type HTTPTransport struct {
	baseURL    string
	client     *http.Client
	events     chan Event
	replyDelay time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHTTPTransport creates the fallback transport against an API base URL,
// e.g. http://host:8080.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: 30 * time.Second},
		events:     make(chan Event, 32),
		replyDelay: 500 * time.Millisecond,
		done:       make(chan struct{}),
	}
}

// Send posts the message to the fallback endpoint and replays the result as
// events. A rate-limit rejection surfaces as an error event, matching the
// live channel contract, not as a Go error.
func (t *HTTPTransport) Send(ctx context.Context, content, username string) error {
	payload, err := json.Marshal(map[string]string{
		"content":  content,
		"username": username,
	})
	if err != nil {
		return fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		data, _ := json.Marshal(map[string]string{"message": body.Error})
		t.emit(Event{Type: hub.EventError, Data: data})
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chat endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		UserMessage json.RawMessage `json:"userMessage"`
		CZMessage   json.RawMessage `json:"czMessage"`
		Emotion     string          `json:"emotion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode chat response: %w", err)
	}

	if len(result.UserMessage) > 0 {
		t.emit(Event{Type: hub.EventUserMessage, Data: result.UserMessage})
	}
	if len(result.CZMessage) > 0 {
		emotionData, _ := json.Marshal(map[string]string{"emotion": result.Emotion})
		t.emit(Event{Type: hub.EventCZEmotion, Data: emotionData})

		// Recreate the live channel's pacing between emotion and message.
		czMessage := result.CZMessage
		go func() {
			select {
			case <-t.done:
			case <-time.After(t.replyDelay):
				t.emit(Event{Type: hub.EventCZMessage, Data: czMessage})
			}
		}()
	}

	return nil
}

func (t *HTTPTransport) emit(e Event) {
	select {
	case <-t.done:
	case t.events <- e:
	}
}

// Events returns the locally synthesized event stream.
func (t *HTTPTransport) Events() <-chan Event { return t.events }

// IsLive reports that server push is unavailable.
func (t *HTTPTransport) IsLive() bool { return false }

// Close stops event emission.
func (t *HTTPTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
	})
	return nil
}
