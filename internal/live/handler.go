package live

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering happens at the CORS layer in front of this.
		return true
	},
}

// ServeWs upgrades the connection and subscribes it to one tournament's
// event feed. Route: /ws/tournaments/{tournamentID}.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		http.Error(w, "Invalid tournament ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		slog.Warn("websocket upgrade failed", "tournament", tournamentID, "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		room: roomFor(tournamentID),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
