package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/czx402/cz-live/backend/internal/config"
	"github.com/czx402/cz-live/backend/internal/model/persona"
)

// Service encapsulates the language-model collaborator behind the reply
// pipeline. It can fail; absorbing failures is the pipeline's job.
type Service struct {
	persona persona.Persona
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the persona chat chain against the configured model.
func NewService(ctx context.Context, p persona.Persona, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		persona: p,
		chain:   runnable,
		timeout: cfg.Timeout,
	}, nil
}

// GenerateText produces the persona's reply to a single viewer message. The
// call is bounded by the configured timeout so a hung backend stalls only the
// reply for this one event.
func (s *Service) GenerateText(ctx context.Context, userText string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.persona.SystemPrompt(),
		"query":  userText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated reply persona=%s length=%d", s.persona.ID, len(response.Content))
	return response.Content, nil
}
