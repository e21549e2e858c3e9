package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/czx402/cz-live/backend/internal/handler/chat"
	"github.com/czx402/cz-live/backend/internal/handler/live"
	personaHandler "github.com/czx402/cz-live/backend/internal/handler/persona"
	"github.com/czx402/cz-live/backend/internal/hub"
	middlewarePkg "github.com/czx402/cz-live/backend/internal/middleware"
	personaModel "github.com/czx402/cz-live/backend/internal/model/persona"
	chatService "github.com/czx402/cz-live/backend/internal/service/chat"
	"github.com/czx402/cz-live/backend/internal/service/ratelimit"
	"github.com/czx402/cz-live/backend/internal/service/reply"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, coord *hub.Coordinator, limiter *ratelimit.Limiter, replies *reply.Service, buffer *chatService.Buffer, recentLimit int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Live channel at the root, matching the frontend's /ws endpoint.
	liveHandler := live.New(coord)
	liveHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)

		// Fallback request/response path for clients without a live channel.
		chatHandler.New(limiter, replies, buffer, recentLimit).RegisterRoutes(api)
	})

	return r
}
