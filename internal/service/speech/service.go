package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/czx402/cz-live/backend/internal/config"
)

// Service 封装HTTP文本转语音后端
type Service struct {
	cfg    config.SpeechConfig
	client *http.Client
}

// NewService 创建语音服务实例
func NewService(cfg config.SpeechConfig) *Service {
	return &Service{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

type synthesisRequest struct {
	Model string  `json:"model"`
	Voice string  `json:"voice"`
	Input string  `json:"input"`
	Speed float32 `json:"speed,omitempty"`
}

// Synthesize renders text to audio bytes (mp3). Best effort: callers treat any
// error as "no audio" and still deliver the text reply.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesisRequest{
		Model: s.cfg.Model,
		Voice: s.cfg.Voice,
		Input: text,
		Speed: s.cfg.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode TTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build TTS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("TTS backend returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS audio: %w", err)
	}

	return audio, nil
}
