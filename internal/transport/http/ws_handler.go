package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/domain"
)

// WSHandler streams leaderboard snapshots to spectators over a websocket, so
// a results screen does not have to poll the REST endpoint.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type boardMessage struct {
	Type    string                    `json:"type"`
	Payload []domain.LeaderboardEntry `json:"payload"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServeWS upgrades the request, sends the current board, then forwards every
// published snapshot until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	board, err := h.service.Leaderboard(r.Context())
	if err != nil {
		_ = conn.WriteJSON(errorMessage{Type: "error", Message: "leaderboard unavailable"})
		return
	}

	updates, cancel := h.service.Subscribe()
	defer cancel()

	// Reader goroutine only detects the client going away; inbound content
	// is ignored. All writes stay on this goroutine.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(boardMessage{Type: "leaderboard", Payload: board}); err != nil {
		return
	}

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(boardMessage{Type: "leaderboard", Payload: update}); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
