package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"satstream/config"
	"satstream/internal/auth"
	"satstream/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// inbound is what connected viewers may send: stream chat and join
// notices, relayed hub-wide. Tip events originate server-side from the
// ledger, never from client messages.
type inbound struct {
	Type     string          `json:"type"`
	StreamID uint            `json:"stream_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// StreamCounter tracks live viewer counts as relay connections join and
// leave streams.
type StreamCounter interface {
	IncrementViewers(id uint, delta int) error
}

// UpgradeRelay upgrades /ws connections for the realtime relay
// (live-stream chat and tip notifications). Auth token comes from the
// query string.
func UpgradeRelay(cfg *config.JWTConfig, hub *Hub, streams StreamCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &Client{
			UserID: claims.UserID,
			Send:   make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()

		go writePump(client, conn)
		readPump(conn, hub, streams, claims.UserID)
	}
}

func readPump(conn *websocket.Conn, hub *Hub, streams StreamCounter, userID uint) {
	var joined uint
	defer func() {
		if streams != nil && joined != 0 {
			streams.IncrementViewers(joined, -1)
		}
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "join-stream":
			if streams != nil && msg.StreamID != 0 && msg.StreamID != joined {
				if joined != 0 {
					streams.IncrementViewers(joined, -1)
				}
				if err := streams.IncrementViewers(msg.StreamID, 1); err == nil {
					joined = msg.StreamID
				}
			}
			hub.Publish(domain.EventUserJoined, gin.H{"stream_id": msg.StreamID, "user_id": userID})
		case "chat-message":
			hub.Publish(domain.EventChatMessage, gin.H{"stream_id": msg.StreamID, "user_id": userID, "data": msg.Data})
		}
	}
}

func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
