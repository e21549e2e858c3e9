package reply

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"github.com/czx402/cz-live/backend/internal/analysis/emotion"
)

// FallbackMessage is served whenever the language model is unavailable or
// errors out. Viewers see conversational continuity, never a technical error.
const FallbackMessage = "Hello! x402 is moving fast on BNB Chain. Follow @CZx402_ for the latest, or head to four.meme to learn more!"

// TextGenerator is the language-model collaborator.
type TextGenerator interface {
	GenerateText(ctx context.Context, userText string) (string, error)
}

// Synthesizer is the optional text-to-speech collaborator.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Reply is the normalized pipeline output.
type Reply struct {
	Message     string
	Emotion     emotion.Tag
	AudioBase64 string
}

// Service wraps the generation collaborators and absorbs their failures: from
// the coordinator's point of view GenerateReply always succeeds.
type Service struct {
	generator  TextGenerator
	synth      Synthesizer
	classifier emotion.Classifier
}

// NewService builds the pipeline. Both collaborators are optional; a nil
// generator means every reply is the fixed fallback. A nil classifier selects
// the keyword heuristic.
func NewService(generator TextGenerator, synth Synthesizer, classifier emotion.Classifier) *Service {
	if classifier == nil {
		classifier = emotion.ClassifierFunc(emotion.Classify)
	}
	return &Service{
		generator:  generator,
		synth:      synth,
		classifier: classifier,
	}
}

// GenerateReply produces exactly one reply for the given viewer text. Failures
// of the model degrade to the fallback message; failures of audio synthesis
// degrade to a text-only reply.
func (s *Service) GenerateReply(ctx context.Context, userText string) Reply {
	if s.generator == nil {
		return Reply{Message: FallbackMessage, Emotion: emotion.Talking}
	}

	text, err := s.generator.GenerateText(ctx, userText)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			log.Printf("[ai] generation failed, serving fallback: %v", err)
		}
		return Reply{Message: FallbackMessage, Emotion: emotion.Talking}
	}

	out := Reply{
		Message: text,
		Emotion: s.classifier.Classify(text),
	}

	if s.synth != nil {
		audio, err := s.synth.Synthesize(ctx, text)
		switch {
		case err != nil:
			log.Printf("[tts] synthesis failed, sending text only: %v", err)
		case len(audio) > 0:
			out.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
		}
	}

	return out
}
