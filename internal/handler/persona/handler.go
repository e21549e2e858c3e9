package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/czx402/cz-live/backend/internal/model/persona"
	"github.com/czx402/cz-live/backend/pkg/utils"
)

// Handler exposes the streamed persona to the frontend.
type Handler struct {
	store persona.Store
}

// New creates the persona handler.
func New(store persona.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册角色相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}
