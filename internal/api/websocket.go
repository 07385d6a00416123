package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wrenhall/homehub/internal/notify"
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// handleWebSocket upgrades the connection and streams live state events.
//
// Each connection gets its own subscriber handle on the notification hub.
// Events are forwarded in broadcast order as JSON text frames. If the
// hub drops the subscriber for falling behind, the event channel closes
// and the connection is shut down; the client is expected to reconnect
// and refresh via GET /api/v1/devices.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Subscribe before completing the upgrade so a broadcast racing the
	// handshake is already buffered for this client.
	sub := s.notify.Subscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.notify.Unsubscribe(sub)
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s.logger.Debug("websocket client connected", "remote", conn.RemoteAddr().String())

	go s.writePump(conn, sub)
	go s.readPump(conn, sub)
}

// writePump forwards hub events to the connection and sends periodic pings.
func (s *Server) writePump(conn *websocket.Conn, sub *notify.Subscriber) {
	pingInterval := time.Duration(s.wsCfg.PingInterval) * time.Second
	writeWait := time.Duration(s.wsCfg.PongTimeout) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				// Unsubscribed, or dropped by the hub for falling behind.
				//nolint:errcheck // Best-effort close message
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "event stream closed"))
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection and tears the subscription down when the
// client goes away. Inbound frames are not interpreted — the stream is
// one-way and clients act through the REST API.
func (s *Server) readPump(conn *websocket.Conn, sub *notify.Subscriber) {
	defer func() {
		s.notify.Unsubscribe(sub)
		conn.Close()
		s.logger.Debug("websocket client disconnected")
	}()

	conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))
	pingInterval := time.Duration(s.wsCfg.PingInterval) * time.Second
	pongWait := time.Duration(s.wsCfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Any client frame resets the read deadline.
		//nolint:errcheck // Best-effort deadline reset
		conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	}
}
