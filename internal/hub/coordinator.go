package hub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/czx402/cz-live/backend/internal/analysis/emotion"
	chatmodel "github.com/czx402/cz-live/backend/internal/model/chat"
	chatservice "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
)

// Greeting is the one-time acknowledgement sent to a freshly connected viewer.
const Greeting = "Connected to CZ x402 AI Stream"

// Coordinator drives the ordered reply protocol for inbound chat events:
// user echo, thinking emotion, resolved emotion, then the reply message after
// a fixed pacing delay.
type Coordinator struct {
	hub     *Hub
	limiter *ratelimit.Limiter
	replies *reply.Service
	buffer  *chatservice.Buffer
	delay   time.Duration
	now     func() time.Time
}

// NewCoordinator wires the coordinator to its collaborators. delay paces the
// gap between the resolved emotion event and the reply message.
func NewCoordinator(h *Hub, limiter *ratelimit.Limiter, replies *reply.Service, buffer *chatservice.Buffer, delay time.Duration) *Coordinator {
	return &Coordinator{
		hub:     h,
		limiter: limiter,
		replies: replies,
		buffer:  buffer,
		delay:   delay,
		now:     time.Now,
	}
}

// Connect registers a viewer, broadcasts the updated count, and sends the
// greeting to the new session only.
func (c *Coordinator) Connect(s Session) {
	c.hub.Register(s)
	s.Send(Event{Type: EventConnection, Data: map[string]string{"message": Greeting}})
}

// Disconnect removes a viewer and broadcasts the updated count. No per-session
// reply state survives, so nothing else needs cleanup.
func (c *Coordinator) Disconnect(id string) {
	c.hub.Unregister(id)
}

// HandleUserMessage processes one inbound chat event from origin. The caller's
// goroutine runs the whole cycle, so events from a single connection stay
// serialized while other connections proceed independently. ctx must outlive
// the origin connection; a viewer dropping mid-cycle must not cancel the
// broadcast for everyone else.
func (c *Coordinator) HandleUserMessage(ctx context.Context, origin Session, identity, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	if identity == "" {
		identity = chatmodel.AnonymousIdentity
	}

	now := c.now()
	allowed, retryAfter := c.limiter.CheckAndRecord(identity, now)
	if !allowed {
		origin.Send(errorEvent(fmt.Sprintf("请等待 %d 秒再发送下一条消息。", retryAfter)))
		return
	}

	// Echo the user message to the whole room before computing the reply so
	// the room sees messages in submission order.
	userMsg := chatmodel.NewUserMessage(content, identity, now)
	c.buffer.Append(userMsg)
	c.hub.Broadcast(Event{Type: EventUserMessage, Data: userMsg})
	c.hub.Broadcast(emotionEvent(emotion.Thinking))

	rep := c.replies.GenerateReply(ctx, content)

	czMsg := chatmodel.NewCZMessage(rep.Message, string(rep.Emotion), rep.AudioBase64, c.now())
	c.buffer.Append(czMsg)
	c.hub.Broadcast(emotionEvent(rep.Emotion))

	// Pacing contract: the emotion transition must be visible before the
	// message lands.
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.hub.Broadcast(Event{Type: EventCZMessage, Data: czMsg})
}
