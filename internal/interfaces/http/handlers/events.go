// internal/interfaces/http/handlers/events.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/realtime"
)

// EventsHandler streams admin activity over Server-Sent Events. Events are
// fanned out through Redis pub/sub so every API instance sees them.
type EventsHandler struct {
	publisher *realtime.Publisher
	config    *config.Config
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(publisher *realtime.Publisher, cfg *config.Config) *EventsHandler {
	return &EventsHandler{
		publisher: publisher,
		config:    cfg,
	}
}

// Stream handles GET /admin/events. The connection stays open until the
// client disconnects or the subscription fails.
func (h *EventsHandler) Stream(c *gin.Context) {
	channels := []string{
		realtime.ChannelOrders,
		realtime.ChannelReturns,
		realtime.ChannelReviews,
	}
	if requested := c.QueryArray("channel"); len(requested) > 0 {
		channels = channels[:0]
		for _, name := range requested {
			switch name {
			case "orders":
				channels = append(channels, realtime.ChannelOrders)
			case "returns":
				channels = append(channels, realtime.ChannelReturns)
			case "reviews":
				channels = append(channels, realtime.ChannelReviews)
			}
		}
	}
	if len(channels) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No valid channels requested",
		})
		return
	}

	sub := h.publisher.Subscribe(c.Request.Context(), channels...)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	messages := sub.Channel()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent(eventName(msg.Channel), msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// eventName maps a Redis channel to the SSE event name sent to clients
func eventName(channel string) string {
	switch channel {
	case realtime.ChannelOrders:
		return "order"
	case realtime.ChannelReturns:
		return "return"
	case realtime.ChannelReviews:
		return "review"
	}
	return "message"
}
