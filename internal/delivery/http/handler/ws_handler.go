package handler

import (
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/infrastructure/notify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *notify.Hub
	log zerolog.Logger
}

func NewWebSocketHandler(hub *notify.Hub, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		log: log,
	}
}

// Connect handles GET /ws
// @Summary Match notifications stream
// @Description Upgrades to a websocket that receives match notifications
// @Tags notifications
// @Security BearerAuth
// @Router /ws [get]
func (h *WebSocketHandler) Connect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	h.hub.Serve(userID, conn)
}
