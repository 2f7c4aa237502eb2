package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatterbox/backend/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production deployments.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and streams hub updates over it.
// WebSocket is the fallback transport for consumers without SSE support.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	topics := c.QueryArray("topic")
	if len(topics) == 0 {
		respondError(c, http.StatusBadRequest, "At least one topic is required")
		return
	}

	userID := c.GetString(ContextUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to upgrade connection")
		return
	}

	sub := realtime.NewSubscriber(userID, topics)
	client := &realtime.WSClient{
		Conn: conn,
		Sub:  sub,
		Hub:  h.Hub,
	}

	h.Hub.RegisterCh <- sub
	client.Run()
}
