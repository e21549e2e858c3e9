package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
)

func setupRouter() (*chi.Mux, *Handler) {
	handler := New(
		ratelimit.New(5*time.Second),
		reply.NewService(nil, nil, nil),
		chatservice.NewBuffer(100),
		50,
	)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, handler
}

func postChat(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReturnsUserAndCZMessage(t *testing.T) {
	r, _ := setupRouter()

	resp := postChat(t, r, map[string]string{"content": "hello", "username": "alice"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Success     bool `json:"success"`
		UserMessage struct {
			Message  string `json:"message"`
			Sender   string `json:"sender"`
			Username string `json:"username"`
		} `json:"userMessage"`
		CZMessage struct {
			Message string `json:"message"`
			Sender  string `json:"sender"`
			Emotion string `json:"emotion"`
		} `json:"czMessage"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !result.Success {
		t.Fatal("expected success=true")
	}
	if result.UserMessage.Message != "hello" || result.UserMessage.Sender != "user" {
		t.Fatalf("unexpected user message %+v", result.UserMessage)
	}
	if result.CZMessage.Message != reply.FallbackMessage {
		t.Fatalf("expected fallback reply, got %q", result.CZMessage.Message)
	}
	if result.CZMessage.Emotion != "talking" {
		t.Fatalf("expected talking emotion, got %s", result.CZMessage.Emotion)
	}
}

func TestChatRateLimitsSecondSend(t *testing.T) {
	r, _ := setupRouter()

	if resp := postChat(t, r, map[string]string{"content": "first", "username": "bob"}); resp.Code != http.StatusOK {
		t.Fatalf("first send: expected 200, got %d", resp.Code)
	}

	resp := postChat(t, r, map[string]string{"content": "second", "username": "bob"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result["error"] == "" {
		t.Fatal("expected a wait-time error message")
	}
}

func TestChatSharesCooldownAcrossAnonymousSenders(t *testing.T) {
	r, _ := setupRouter()

	postChat(t, r, map[string]string{"content": "first"})
	resp := postChat(t, r, map[string]string{"content": "second"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous senders share one clock, expected 429, got %d", resp.Code)
	}
}

func TestChatRejectsMissingContent(t *testing.T) {
	r, _ := setupRouter()

	resp := postChat(t, r, map[string]string{"username": "carol"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRecentMessagesHonorsLimit(t *testing.T) {
	r, _ := setupRouter()

	postChat(t, r, map[string]string{"content": "hi", "username": "dave"})

	req := httptest.NewRequest(http.MethodGet, "/messages?limit=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Messages []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	if result.Messages[0].Sender != "cz" {
		t.Fatalf("expected the newest (cz) message, got %s", result.Messages[0].Sender)
	}
}
