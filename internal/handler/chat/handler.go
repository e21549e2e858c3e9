package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/czx402/cz-live/backend/internal/model/chat"
	chatservice "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
	"github.com/czx402/cz-live/backend/pkg/utils"
)

// Handler 提供无长连接时的请求/响应降级路径。
// The limiter is shared with the live channel so both paths advance the same
// cooldown clock per identity.
type Handler struct {
	limiter     *ratelimit.Limiter
	replies     *reply.Service
	buffer      *chatservice.Buffer
	recentLimit int
	now         func() time.Time
}

// New 创建降级聊天处理器
func New(limiter *ratelimit.Limiter, replies *reply.Service, buffer *chatservice.Buffer, recentLimit int) *Handler {
	if recentLimit <= 0 {
		recentLimit = 50
	}
	return &Handler{
		limiter:     limiter,
		replies:     replies,
		buffer:      buffer,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/messages", h.handleRecentMessages)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content  string `json:"content"`
		Username string `json:"username"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	identity := strings.TrimSpace(payload.Username)
	if identity == "" {
		identity = chatmodel.AnonymousIdentity
	}

	now := h.now()
	allowed, retryAfter := h.limiter.CheckAndRecord(identity, now)
	if !allowed {
		utils.RespondError(w, http.StatusTooManyRequests, fmt.Sprintf("请等待 %d 秒再发送下一条消息。", retryAfter))
		return
	}

	// GenerateReply absorbs every backend failure, so this path degrades to
	// fallback chat content instead of surfacing a 500.
	rep := h.replies.GenerateReply(r.Context(), content)

	userMsg := chatmodel.NewUserMessage(content, identity, now)
	czMsg := chatmodel.NewCZMessage(rep.Message, string(rep.Emotion), rep.AudioBase64, h.now().Add(time.Millisecond))
	h.buffer.Append(userMsg, czMsg)

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"userMessage": userMsg,
		"czMessage":   czMsg,
		"emotion":     rep.Emotion,
	})
}

func (h *Handler) handleRecentMessages(w http.ResponseWriter, r *http.Request) {
	limit := h.recentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": h.buffer.Recent(limit),
	})
}
