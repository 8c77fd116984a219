// backend-go/internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
)

// Publisher fans domain events out to downstream consumers. Publishing is
// best-effort from the caller's point of view: business writes never roll
// back because a notification failed.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// envelope is the wire form pushed onto the channel.
type envelope struct {
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    domain.Event `json:"payload"`
}

type redisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher publishes events as JSON on a redis pub/sub channel.
func NewRedisPublisher(client *redis.Client, channel string) Publisher {
	return &redisPublisher{client: client, channel: channel}
}

func (p *redisPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Payload:    event,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.EventType(), err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventType(), err)
	}

	log.Debug().
		Str("event_type", event.EventType()).
		Str("channel", p.channel).
		Msg("event published")

	return nil
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when
// eventing is disabled and in tests.
func NewNoopPublisher() Publisher {
	return &noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event domain.Event) error {
	return nil
}
