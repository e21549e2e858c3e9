package live

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/czx402/cz-live/backend/internal/hub"
)

// Handler upgrades viewers onto the live channel.
type Handler struct {
	coord    *hub.Coordinator
	upgrader websocket.Upgrader
}

// New creates the live channel handler.
func New(coord *hub.Coordinator) *Handler {
	return &Handler{
		coord: coord,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	sess := newSession(conn)
	log.Printf("[ws] new connection session=%s", sess.ID())

	h.coord.Connect(sess)
	go sess.writePump()

	sess.readPump(h.coord)

	h.coord.Disconnect(sess.ID())
	log.Printf("[ws] connection closed session=%s", sess.ID())
}
