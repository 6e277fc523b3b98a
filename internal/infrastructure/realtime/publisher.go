// internal/infrastructure/realtime/publisher.go
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Channels carrying change events for live admin dashboards
const (
	ChannelOrders  = "events:orders"
	ChannelReturns = "events:returns"
	ChannelReviews = "events:reviews"
)

// Event describes a state change on a tracked entity
type Event struct {
	Type       string    `json:"type"` // created, status_changed
	EntityID   uint      `json:"entity_id"`
	Reference  string    `json:"reference"` // order/return number
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher fans change events out over Redis pub/sub so SSE clients can
// follow order and return activity live.
type Publisher struct {
	redis  *redis.Client
	logger *logrus.Logger
}

// NewPublisher creates a new realtime publisher
func NewPublisher(redisClient *redis.Client, logger *logrus.Logger) *Publisher {
	return &Publisher{
		redis:  redisClient,
		logger: logger,
	}
}

// Publish sends an event to a channel. Delivery is best-effort; a failed
// publish is logged and never fails the business operation that raised it.
func (p *Publisher) Publish(ctx context.Context, channel string, event Event) {
	if p == nil || p.redis == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log().WithError(err).Warn("failed to encode realtime event")
		return
	}

	if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
		p.log().WithError(err).WithField("channel", channel).Warn("failed to publish realtime event")
	}
}

// Subscribe opens a pub/sub subscription on the given channels. The caller
// owns the returned subscription and must Close it.
func (p *Publisher) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return p.redis.Subscribe(ctx, channels...)
}

func (p *Publisher) log() *logrus.Logger {
	if p.logger != nil {
		return p.logger
	}
	return logrus.StandardLogger()
}
