package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"trolley/internal/realtime"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Client is the Redis Pub/Sub implementation of realtime.Publisher and
// realtime.Subscriber.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Publish(ctx context.Context, topic string, event *realtime.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	return c.rdb.Publish(ctx, topic, payload).Err()
}

// Subscribe delivers events from the given topics until ctx is cancelled. The
// returned channel is closed when the subscription ends.
func (c *Client) Subscribe(ctx context.Context, topics ...string) (<-chan *realtime.OrderEvent, error) {
	sub := c.rdb.Subscribe(ctx, topics...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan *realtime.OrderEvent, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event realtime.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logrus.WithError(err).WithField("topic", msg.Channel).Warn("dropping malformed order event")
					continue
				}
				select {
				case out <- &event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
