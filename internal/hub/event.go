package hub

import "github.com/czx402/cz-live/backend/internal/analysis/emotion"

// Event types pushed to live viewers. Consumers must treat unknown types as
// no-ops so new events can ship without breaking older frontends.
const (
	EventConnection  = "connection"
	EventUserMessage = "user_message"
	EventCZMessage   = "cz_message"
	EventCZEmotion   = "cz_emotion"
	EventViewerCount = "viewer_count"
	EventError       = "error"
)

// Event is the tagged envelope delivered over the live channel.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func emotionEvent(tag emotion.Tag) Event {
	return Event{Type: EventCZEmotion, Data: map[string]string{"emotion": string(tag)}}
}

func viewerCountEvent(count int) Event {
	return Event{Type: EventViewerCount, Data: map[string]int{"count": count}}
}

func errorEvent(message string) Event {
	return Event{Type: EventError, Data: map[string]string{"message": message}}
}
