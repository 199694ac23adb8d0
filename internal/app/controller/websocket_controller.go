package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/shopfront/internal/middleware"
	ws "github.com/ikkim/shopfront/internal/websocket"
)

type WebSocketController struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
}

func NewWebSocketController(hub *ws.Hub, upgrader *websocket.Upgrader) *WebSocketController {
	return &WebSocketController{
		hub:      hub,
		upgrader: upgrader,
	}
}

// HandleCart upgrades the request and streams cart_updated events.
// GET /api/v1/ws/cart
func (ctrl *WebSocketController) HandleCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	ws.Serve(ctrl.hub, conn, userID)
	log.Info("WebSocket connected", map[string]interface{}{
		"user_id":  userID,
		"sessions": ctrl.hub.SessionCount(userID),
	})
}
