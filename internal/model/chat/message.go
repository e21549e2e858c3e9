package chat

import (
	"strconv"
	"time"
)

// Sender values carried on the wire.
const (
	SenderUser = "user"
	SenderCZ   = "cz"
)

// AnonymousIdentity is the sentinel used when a client supplies no username.
// Distinct anonymous users share one rate-limit clock; that is accepted
// behavior for a single-room design.
const AnonymousIdentity = "Anonymous"

// Message is one chat line as delivered to viewers. Immutable once built;
// ordering is insertion order, not a causal order across concurrent senders.
type Message struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Sender      string `json:"sender"`
	Username    string `json:"username,omitempty"`
	Timestamp   string `json:"timestamp"`
	Emotion     string `json:"emotion,omitempty"`
	AudioBase64 string `json:"audioBase64,omitempty"`
}

// NewUserMessage builds the echo record for an accepted viewer message.
func NewUserMessage(content, username string, at time.Time) Message {
	if username == "" {
		username = AnonymousIdentity
	}
	return Message{
		ID:        FormatID(at),
		Message:   content,
		Sender:    SenderUser,
		Username:  username,
		Timestamp: FormatTimestamp(at),
	}
}

// NewCZMessage builds the persona's reply record.
func NewCZMessage(content, emotion, audioBase64 string, at time.Time) Message {
	return Message{
		ID:          FormatID(at),
		Message:     content,
		Sender:      SenderCZ,
		Timestamp:   FormatTimestamp(at),
		Emotion:     emotion,
		AudioBase64: audioBase64,
	}
}

// FormatID derives a monotonic-ish message ID from the send time.
func FormatID(at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 10)
}

// FormatTimestamp renders the display time shown next to a message.
func FormatTimestamp(at time.Time) string {
	return at.Format("15:04")
}
