package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Chat   ChatConfig
	Speech SpeechConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Chat: chat, Speech: speech}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout, err := parseOptionalIntEnv("AI_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig 描述实时聊天协调器的配置。
type ChatConfig struct {
	// Cooldown is the minimum interval between accepted sends per identity.
	Cooldown time.Duration
	// ReplyDelay paces the gap between the resolved emotion event and the
	// reply message so the avatar transition stays visible.
	ReplyDelay time.Duration
	// RecentLimit is the default message count served to polling clients.
	RecentLimit int
	// BufferCap bounds the in-memory recent message buffer.
	BufferCap int
}

func loadChatConfig() (ChatConfig, error) {
	cooldownMS, err := parseOptionalIntEnv("CHAT_COOLDOWN_MS")
	if err != nil {
		return ChatConfig{}, err
	}
	cooldown := 5000
	if cooldownMS != nil && *cooldownMS > 0 {
		cooldown = *cooldownMS
	}

	delayMS, err := parseOptionalIntEnv("CHAT_REPLY_DELAY_MS")
	if err != nil {
		return ChatConfig{}, err
	}
	delay := 500
	if delayMS != nil && *delayMS >= 0 {
		delay = *delayMS
	}

	recentLimit := 50
	if limitOverride, err := parseOptionalIntEnv("CHAT_RECENT_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if limitOverride != nil && *limitOverride > 0 {
		recentLimit = *limitOverride
	}

	bufferCap := 1000
	if capOverride, err := parseOptionalIntEnv("CHAT_BUFFER_CAP"); err != nil {
		return ChatConfig{}, err
	} else if capOverride != nil && *capOverride > 0 {
		bufferCap = *capOverride
	}

	return ChatConfig{
		Cooldown:    time.Duration(cooldown) * time.Millisecond,
		ReplyDelay:  time.Duration(delay) * time.Millisecond,
		RecentLimit: recentLimit,
		BufferCap:   bufferCap,
	}, nil
}

// SpeechConfig 描述文本转语音服务相关配置。
type SpeechConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Voice   string
	Speed   float32
	Timeout int
	Enabled bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsSpeed := float32(1.0)
	if speed != nil {
		ttsSpeed = *speed
	}

	apiKey := strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	return SpeechConfig{
		BaseURL: getEnvOrDefault("SPEECH_BASE_URL", "https://api.openai.com/v1"),
		APIKey:  apiKey,
		Model:   getEnvOrDefault("SPEECH_TTS_MODEL", "tts-1"),
		Voice:   getEnvOrDefault("SPEECH_TTS_VOICE", "echo"),
		Speed:   ttsSpeed,
		Timeout: timeoutSeconds,
		Enabled: apiKey != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
