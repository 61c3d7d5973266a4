package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// handleWebsocket streams the session state: once on connect, then after
// every mutation.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	id, msgs, cancel := s.hub.Subscribe()
	defer cancel()
	slog.Info("websocket subscriber connected", "subscriber", id)

	ctx := conn.CloseRead(r.Context())

	initial, err := json.Marshal(s.store.State())
	if err != nil {
		slog.Error("encoding state", "error", err)
		return
	}
	if err := write(ctx, conn, initial); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("websocket subscriber disconnected", "subscriber", id)
			return
		case msg, ok := <-msgs:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := write(ctx, conn, msg); err != nil {
				slog.Warn("websocket write failed", "subscriber", id, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
