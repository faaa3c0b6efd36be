package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades connections and runs them as hub clients. Each
// new client first receives the messages returned by snapshot, so a screen
// that connects late starts from the current views.
func HandleWebSocket(hub *Hub, snapshot func() []Message, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // household LAN screens connect from any origin
		})
		if err != nil {
			logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		var initial [][]byte
		if snapshot != nil {
			for _, msg := range snapshot() {
				data, err := json.Marshal(msg)
				if err != nil {
					logger.Error("marshal snapshot", "type", msg.Type, "error", err)
					continue
				}
				initial = append(initial, data)
			}
		}

		logger.Debug("websocket client connected", "remote", r.RemoteAddr)
		NewClient(hub, conn).Run(r.Context(), initial...)
		logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
	}
}
