package client

import (
	"errors"
	"testing"
	"time"

	"github.com/czx402/cz-live/backend/internal/analysis/emotion"
)

// fakePlayer records playback order and lets the test drive completion.
type fakePlayer struct {
	played []string
	dones  []func(err error)
}

func (p *fakePlayer) Play(audioBase64 string, done func(err error)) {
	p.played = append(p.played, audioBase64)
	p.dones = append(p.dones, done)
}

func (p *fakePlayer) finish(i int, err error) {
	p.dones[i](err)
}

func TestPlaybackQueueSerializesPayloads(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, nil)

	q.Enqueue("p1")
	q.Enqueue("p2")
	q.Enqueue("p3")

	if len(player.played) != 1 {
		t.Fatalf("expected only p1 in flight, got %d plays", len(player.played))
	}
	if q.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", q.Pending())
	}

	player.finish(0, nil)
	if len(player.played) != 2 || player.played[1] != "p2" {
		t.Fatalf("expected p2 to start after p1, got %v", player.played)
	}

	player.finish(1, nil)
	if len(player.played) != 3 || player.played[2] != "p3" {
		t.Fatalf("expected p3 to start after p2, got %v", player.played)
	}
}

func TestPlaybackQueueSurvivesFailure(t *testing.T) {
	player := &fakePlayer{}
	ended := 0
	q := NewPlaybackQueue(player, func() { ended++ })

	q.Enqueue("p1")
	q.Enqueue("p2")

	player.finish(0, errors.New("decode failed"))

	if len(player.played) != 2 || player.played[1] != "p2" {
		t.Fatalf("expected p2 to play after p1 failed, got %v", player.played)
	}
	if ended != 1 {
		t.Fatalf("expected onEnded once after failed playback, got %d", ended)
	}
}

func TestPlaybackQueueIdleStartsImmediately(t *testing.T) {
	player := &fakePlayer{}
	q := NewPlaybackQueue(player, nil)

	q.Enqueue("p1")
	if len(player.played) != 1 {
		t.Fatalf("expected immediate start on idle queue")
	}
	player.finish(0, nil)

	q.Enqueue("p2")
	if len(player.played) != 2 {
		t.Fatalf("expected immediate start after drain")
	}
}

func TestEmotionStateApplyAndReset(t *testing.T) {
	var transitions []emotion.Tag
	s := NewEmotionState(func(tag emotion.Tag) {
		transitions = append(transitions, tag)
	})

	if s.Current() != emotion.Idle {
		t.Fatalf("expected initial idle, got %s", s.Current())
	}

	s.Apply("thinking")
	s.Apply("celebrating")
	s.PlaybackEnded()

	want := []emotion.Tag{emotion.Thinking, emotion.Celebrating, emotion.Idle}
	if len(transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), transitions)
	}
	for i, tag := range want {
		if transitions[i] != tag {
			t.Fatalf("transition %d: expected %s, got %s", i, tag, transitions[i])
		}
	}
}

func TestEmotionStateUnknownTagDegradesToTalking(t *testing.T) {
	s := NewEmotionState(nil)
	s.Apply("euphoric")
	if s.Current() != emotion.Talking {
		t.Fatalf("expected talking for unknown tag, got %s", s.Current())
	}
}

func TestEmotionStateFallbackTimerForcesIdle(t *testing.T) {
	s := NewEmotionState(nil)
	s.fallbackDelay = 10 * time.Millisecond

	s.Apply("talking")
	s.MessageArrived(false)

	deadline := time.After(time.Second)
	for s.Current() != emotion.Idle {
		select {
		case <-deadline:
			t.Fatalf("fallback timer never fired, state %s", s.Current())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEmotionStateAudioCancelsFallbackTimer(t *testing.T) {
	s := NewEmotionState(nil)
	s.fallbackDelay = 10 * time.Millisecond

	s.Apply("talking")
	s.MessageArrived(true)

	time.Sleep(50 * time.Millisecond)
	if s.Current() != emotion.Talking {
		t.Fatalf("expected talking to persist while audio plays, got %s", s.Current())
	}

	s.PlaybackEnded()
	if s.Current() != emotion.Idle {
		t.Fatalf("expected idle after playback, got %s", s.Current())
	}
}
