package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/czx402/cz-live/backend/internal/config"
	"github.com/czx402/cz-live/backend/internal/handler"
	"github.com/czx402/cz-live/backend/internal/hub"
	"github.com/czx402/cz-live/backend/internal/model/persona"
	"github.com/czx402/cz-live/backend/internal/service/ai"
	chatservice "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
	"github.com/czx402/cz-live/backend/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	streamPersona, ok := personaStore.FindByID(persona.DefaultID)
	if !ok {
		log.Fatalf("stream persona %q missing from seed data", persona.DefaultID)
	}

	// The reply pipeline degrades gracefully: without a model every reply is
	// the canned fallback, without speech credentials replies are text-only.
	var generator reply.TextGenerator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, streamPersona, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with fallback replies - 请检查 Ark 模型相关环境变量")
		} else {
			generator = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	var synth reply.Synthesizer
	if cfg.Speech.Enabled {
		synth = speech.NewService(cfg.Speech)
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("语音服务凭证未配置，跳过语音功能初始化")
	}

	replies := reply.NewService(generator, synth, nil)
	limiter := ratelimit.New(cfg.Chat.Cooldown)
	buffer := chatservice.NewBuffer(cfg.Chat.BufferCap)
	coord := hub.NewCoordinator(hub.New(), limiter, replies, buffer, cfg.Chat.ReplyDelay)

	go sweepLimiter(ctx, limiter, cfg.Chat.Cooldown)

	router := handler.NewRouter(personaStore, coord, limiter, replies, buffer, cfg.Chat.RecentLimit)

	startServer(ctx, cfg.Server, router)
}

// sweepLimiter periodically evicts stale identities so the cooldown map does
// not grow with every viewer that ever sent a message.
func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter, cooldown time.Duration) {
	maxAge := 10 * cooldown
	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := limiter.Sweep(time.Now(), maxAge); evicted > 0 {
				log.Printf("[ratelimit] evicted %d stale identities", evicted)
			}
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("CZ Live backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
