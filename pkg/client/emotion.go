package client

import (
	"sync"
	"time"

	"github.com/czx402/cz-live/backend/internal/analysis/emotion"
)

// DefaultIdleFallback is how long the avatar stays animated after a reply
// without audio before returning to idle.
const DefaultIdleFallback = 2 * time.Second

// EmotionState tracks the avatar's animation state on the consumer side. It
// is driven only by cz_emotion events and by the playback-ended signal (real
// or fallback-timer); nothing else touches it.
type EmotionState struct {
	mu            sync.Mutex
	current       emotion.Tag
	fallback      *time.Timer
	fallbackDelay time.Duration
	onChange      func(emotion.Tag)
}

// NewEmotionState creates the machine in the idle state. onChange is invoked
// on every transition and may be nil.
func NewEmotionState(onChange func(emotion.Tag)) *EmotionState {
	return &EmotionState{
		current:       emotion.Idle,
		fallbackDelay: DefaultIdleFallback,
		onChange:      onChange,
	}
}

// Apply consumes a cz_emotion signal. Unrecognized tags degrade to talking.
func (s *EmotionState) Apply(raw string) {
	s.set(emotion.Parse(raw))
}

// MessageArrived notes a cz message for the current reply cycle. Without
// audio, a fallback timer forces idle; with audio, any pending timer is
// canceled because playback completion will signal idle instead. This keeps
// the two idle triggers from racing.
func (s *EmotionState) MessageArrived(hasAudio bool) {
	s.mu.Lock()
	s.stopFallbackLocked()
	if !hasAudio {
		s.fallback = time.AfterFunc(s.fallbackDelay, s.PlaybackEnded)
	}
	s.mu.Unlock()
}

// PlaybackEnded forces the avatar back to idle.
func (s *EmotionState) PlaybackEnded() {
	s.mu.Lock()
	s.stopFallbackLocked()
	s.mu.Unlock()

	s.set(emotion.Idle)
}

// Current returns the present animation state.
func (s *EmotionState) Current() emotion.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *EmotionState) set(tag emotion.Tag) {
	s.mu.Lock()
	changed := s.current != tag
	s.current = tag
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.onChange(tag)
	}
}

func (s *EmotionState) stopFallbackLocked() {
	if s.fallback != nil {
		s.fallback.Stop()
		s.fallback = nil
	}
}
