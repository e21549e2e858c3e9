package client

import (
	"log"
	"sync"
)

// Player starts playback of one audio payload and reports completion through
// the done callback. Implementations must invoke done exactly once, on
// success and failure alike.
type Player interface {
	Play(audioBase64 string, done func(err error))
}

// PlaybackQueue serializes audio payloads so overlapping replies play one at
// a time. At most one payload is in flight; completion or failure both
// advance to the next payload and fire onEnded.
type PlaybackQueue struct {
	mu      sync.Mutex
	player  Player
	pending []string
	playing bool
	onEnded func()
}

// NewPlaybackQueue creates a queue. onEnded is invoked after every playback
// attempt finishes and may be nil.
func NewPlaybackQueue(player Player, onEnded func()) *PlaybackQueue {
	return &PlaybackQueue{
		player:  player,
		onEnded: onEnded,
	}
}

// Enqueue appends a payload and starts playback if the queue is idle.
func (q *PlaybackQueue) Enqueue(audioBase64 string) {
	q.mu.Lock()
	q.pending = append(q.pending, audioBase64)
	q.mu.Unlock()

	q.playNext()
}

// Pending reports how many payloads are waiting behind the current one.
func (q *PlaybackQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *PlaybackQueue) playNext() {
	q.mu.Lock()
	if q.playing || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.playing = true
	q.mu.Unlock()

	q.player.Play(next, func(err error) {
		if err != nil {
			// Failure is non-fatal; the queue keeps draining.
			log.Printf("[audio] playback failed, continuing: %v", err)
		}

		q.mu.Lock()
		q.playing = false
		q.mu.Unlock()

		if q.onEnded != nil {
			q.onEnded()
		}
		q.playNext()
	})
}
