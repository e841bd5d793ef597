package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/notify"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Cookie auth already ran in the middleware chain
		return true
	},
}

// handleStream upgrades the connection and forwards hub events for one
// table as JSON text frames until either side closes
func handleStream(hub *notify.Hub, table string, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response
			return
		}
		defer conn.Close()

		events, cancel := hub.Subscribe(table)
		defer cancel()

		// Drain client frames so pings and close frames are processed.
		// A read error means the client is gone.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					l.Debug("Websocket write failed, dropping client", "table", table, "error", err)
					return
				}
			}
		}
	})
}
