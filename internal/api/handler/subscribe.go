package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatterbox/backend/internal/realtime"
)

const keepaliveInterval = 15 * time.Second

// ServeSSE streams hub updates for the requested topics as Server-Sent
// Events. One stream per topic set; a client switching conversations closes
// this stream and opens a new one.
func (h *Handler) ServeSSE(c *gin.Context) {
	topics := c.QueryArray("topic")
	if len(topics) == 0 {
		respondError(c, http.StatusBadRequest, "At least one topic is required")
		return
	}

	userID := c.GetString(ContextUserID)
	sub := realtime.NewSubscriber(userID, topics)
	h.Hub.RegisterCh <- sub
	defer func() { h.Hub.UnregisterCh <- sub }()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return

		case update, ok := <-sub.Send:
			if !ok {
				// Dropped by the hub as a slow consumer.
				return
			}
			fmt.Fprintf(c.Writer, "id: %s\n", update.ID)
			fmt.Fprintf(c.Writer, "data: %s\n\n", update.Data)
			c.Writer.Flush()

		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
