package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"billsplit/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // origin allow-list enforced at the proxy
}

// Gateway upgrades HTTP to WebSocket and drives the per-connection
// protocol: room join/leave, peer-device sync relays, keep-alive.
//
// Relays never mutate the store. A device that marked a notification read
// has already done so over REST; read-sync only informs its siblings.
type Gateway struct {
	hub        *Hub
	jwtService *jwt.Service
}

func NewGateway(hub *Hub, jwtService *jwt.Service) *Gateway {
	return &Gateway{
		hub:        hub,
		jwtService: jwtService,
	}
}

// HandleWebSocket serves GET /ws/notifications?token=JWT.
//
// Browsers cannot set headers on WebSocket requests, so the token rides in
// the query string.
func (g *Gateway) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Token is required. Use ?token=YOUR_JWT_TOKEN"},
		})
		return
	}

	claims, err := g.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   gin.H{"code": "UNAUTHORIZED", "message": "Invalid or expired token"},
		})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed user_id=%d err=%v", claims.UserID, err)
		return
	}

	conn := &connection{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
	}
	log.Printf("ws_connect user_id=%d", claims.UserID)

	go conn.writePump()
	g.readLoop(conn, claims.UserID) // blocks until disconnect
}

func (g *Gateway) readLoop(conn *connection, authUserID int64) {
	defer func() {
		// Transport-level disconnects arrive here without an explicit
		// leave-room; prune regardless so no dead target leaks.
		g.hub.drop(conn)
		conn.ws.Close()
		log.Printf("ws_disconnect user_id=%d", authUserID)
	}()

	conn.ws.SetReadLimit(maxMsgSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("ws_read_error user_id=%d err=%v", authUserID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			conn.sendEvent(ErrorEvent("INVALID_JSON", "Failed to parse message"))
			continue
		}

		switch msg.Type {
		case MsgJoinRoom:
			// The socket is already authenticated; a client may only join
			// its own room.
			if msg.UserID != authUserID {
				conn.sendEvent(ErrorEvent("FORBIDDEN_ROOM", "Cannot join another user's room"))
				continue
			}
			g.hub.join(msg.UserID, conn)
		case MsgLeaveRoom:
			if msg.UserID != authUserID {
				continue
			}
			g.hub.leave(msg.UserID, conn)
		case MsgReadSync:
			if msg.UserID != authUserID || msg.NotificationID <= 0 {
				continue
			}
			g.hub.pushToRoomExcept(msg.UserID, conn, NotificationReadEvent(msg.UserID, msg.NotificationID))
		case MsgMarkAllReadSync:
			if msg.UserID != authUserID {
				continue
			}
			g.hub.pushToRoomExcept(msg.UserID, conn, AllNotificationsReadEvent(msg.UserID))
		case MsgPing:
			conn.sendEvent(PongEvent())
		default:
			conn.sendEvent(ErrorEvent("UNKNOWN_TYPE", "Unknown message type: "+msg.Type))
		}
	}
}
