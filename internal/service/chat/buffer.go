package chat

import (
	"sync"

	chatmodel "github.com/czx402/cz-live/backend/internal/model/chat"
)

// DefaultCapacity bounds the in-memory message history.
const DefaultCapacity = 1000

// Buffer keeps the most recent chat messages for polling clients. History is
// volatile by contract; nothing survives a restart.
type Buffer struct {
	mu   sync.RWMutex
	max  int
	msgs []chatmodel.Message
}

// NewBuffer creates a buffer bounded to max messages, falling back to
// DefaultCapacity for non-positive values.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultCapacity
	}
	return &Buffer{
		max:  max,
		msgs: make([]chatmodel.Message, 0, 64),
	}
}

// Append adds messages in order, dropping the oldest once the cap is reached.
func (b *Buffer) Append(msgs ...chatmodel.Message) {
	if len(msgs) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.msgs = append(b.msgs, msgs...)
	if overflow := len(b.msgs) - b.max; overflow > 0 {
		b.msgs = append(b.msgs[:0], b.msgs[overflow:]...)
	}
}

// Recent returns a copy of the last limit messages in insertion order.
func (b *Buffer) Recent(limit int) []chatmodel.Message {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 || limit > len(b.msgs) {
		limit = len(b.msgs)
	}

	recent := make([]chatmodel.Message, limit)
	copy(recent, b.msgs[len(b.msgs)-limit:])
	return recent
}

// Len reports how many messages are currently buffered.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.msgs)
}
