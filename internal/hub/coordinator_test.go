package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	chatmodel "github.com/czx402/cz-live/backend/internal/model/chat"
	chatservice "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) GenerateText(context.Context, string) (string, error) {
	return s.text, s.err
}

func newTestCoordinator(gen reply.TextGenerator) (*Coordinator, *Hub) {
	h := New()
	coord := NewCoordinator(
		h,
		ratelimit.New(5*time.Second),
		reply.NewService(gen, nil, nil),
		chatservice.NewBuffer(100),
		0,
	)
	return coord, h
}

func eventTypes(events []Event) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestConnectSendsGreetingToNewSessionOnly(t *testing.T) {
	coord, _ := newTestCoordinator(nil)

	first := newFakeSession("a")
	second := newFakeSession("b")
	coord.Connect(first)
	coord.Connect(second)

	countAcks := func(events []Event) int {
		acks := 0
		for _, e := range events {
			if e.Type == EventConnection {
				acks++
			}
		}
		return acks
	}

	if got := countAcks(first.recorded()); got != 1 {
		t.Fatalf("existing session saw %d acks, want 1", got)
	}
	if got := countAcks(second.recorded()); got != 1 {
		t.Fatalf("new session saw %d acks, want 1", got)
	}
}

func TestHandleUserMessageOrderedBroadcast(t *testing.T) {
	coord, _ := newTestCoordinator(stubGenerator{text: "Congrats, great progress out there"})

	viewer := newFakeSession("viewer")
	sender := newFakeSession("sender")
	coord.Connect(viewer)
	coord.Connect(sender)
	viewer.mu.Lock()
	viewer.events = nil
	viewer.mu.Unlock()

	coord.HandleUserMessage(context.Background(), sender, "alice", "how is the launch going?")

	events := viewer.recorded()
	want := []string{EventUserMessage, EventCZEmotion, EventCZEmotion, EventCZMessage}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d (%v)", len(want), len(events), eventTypes(events))
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, events[i].Type)
		}
	}

	thinking := events[1].Data.(map[string]string)["emotion"]
	if thinking != "thinking" {
		t.Fatalf("expected thinking emotion first, got %s", thinking)
	}
	resolved := events[2].Data.(map[string]string)["emotion"]
	if resolved != "celebrating" {
		t.Fatalf("expected resolved emotion celebrating, got %s", resolved)
	}

	czMsg := events[3].Data.(chatmodel.Message)
	if czMsg.Sender != chatmodel.SenderCZ {
		t.Fatalf("expected cz sender, got %s", czMsg.Sender)
	}
	if czMsg.Emotion != resolved {
		t.Fatalf("message emotion %s differs from resolved emotion %s", czMsg.Emotion, resolved)
	}
}

func TestHandleUserMessageProducesExactlyOneReplyOnFailure(t *testing.T) {
	coord, _ := newTestCoordinator(stubGenerator{err: errors.New("model down")})

	viewer := newFakeSession("viewer")
	coord.Connect(viewer)
	viewer.mu.Lock()
	viewer.events = nil
	viewer.mu.Unlock()

	coord.HandleUserMessage(context.Background(), viewer, "bob", "hello")

	replies := 0
	for _, e := range viewer.recorded() {
		if e.Type == EventCZMessage {
			replies++
			msg := e.Data.(chatmodel.Message)
			if msg.Message != reply.FallbackMessage {
				t.Fatalf("expected fallback text, got %q", msg.Message)
			}
		}
	}
	if replies != 1 {
		t.Fatalf("expected exactly one agent message, got %d", replies)
	}
}

func TestRateLimitedSendErrorsOriginOnly(t *testing.T) {
	coord, _ := newTestCoordinator(stubGenerator{text: "ok"})

	sender := newFakeSession("sender")
	viewer := newFakeSession("viewer")
	coord.Connect(sender)
	coord.Connect(viewer)

	coord.HandleUserMessage(context.Background(), sender, "carol", "first")
	sender.mu.Lock()
	sender.events = nil
	sender.mu.Unlock()
	viewer.mu.Lock()
	viewer.events = nil
	viewer.mu.Unlock()

	coord.HandleUserMessage(context.Background(), sender, "carol", "second too fast")

	senderEvents := sender.recorded()
	if len(senderEvents) != 1 || senderEvents[0].Type != EventError {
		t.Fatalf("expected a single error event for the origin, got %v", eventTypes(senderEvents))
	}
	if len(viewer.recorded()) != 0 {
		t.Fatalf("rejection must not broadcast, viewer saw %v", eventTypes(viewer.recorded()))
	}
}

func TestBlankContentIsIgnored(t *testing.T) {
	coord, _ := newTestCoordinator(stubGenerator{text: "ok"})
	sender := newFakeSession("sender")
	coord.Connect(sender)
	before := len(sender.recorded())

	coord.HandleUserMessage(context.Background(), sender, "dave", "   ")
	if len(sender.recorded()) != before {
		t.Fatal("blank content must not produce events")
	}
}
