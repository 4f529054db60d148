// Package events publishes domain notifications after successful writes.
// Delivery is best effort: a failed publish never undoes the write.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "fams.events"

type Type string

const (
	ContractorCreated    Type = "contractor.created"
	ContractorRegistered Type = "contractor.registered"
	AssignmentCreated    Type = "assignment.created"
	RatingSubmitted      Type = "rating.submitted"
)

type Event struct {
	Type         Type      `json:"type"`
	ID           int64     `json:"id"`
	ContractorID int64     `json:"contractor_id,omitempty"`
	ProjectID    int64     `json:"project_id,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	At           time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// RedisPublisher sends events as JSON on a redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to redis and verifies the connection with a ping.
func NewRedisPublisher(ctx context.Context, opts *redis.Options, channel string) (*RedisPublisher, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.client.Close() }

// Notify publishes e and logs a warning when delivery fails.
func Notify(ctx context.Context, p Publisher, logger *slog.Logger, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil && logger != nil {
		logger.Warn("event publish failed",
			slog.String("type", string(e.Type)),
			slog.Int64("id", e.ID),
			slog.Any("err", err),
		)
	}
}
