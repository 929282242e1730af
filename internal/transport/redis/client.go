package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

type Client struct {
	client *redis.Client
}

// New connects to addr and checks the connection with PING.
func New(ctx context.Context, addr string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb}, nil
}

func NewFromConnection(rdb *redis.Client) *Client {
	return &Client{rdb}
}

// PublishEvent - sends a room event as JSON to channel.
func (that *Client) PublishEvent(ctx context.Context, channel string, event entity.RoomEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal room event: %w", err)
	}

	if err = that.client.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish room event in Redis: %w", err)
	}

	return nil
}

// Subscribe returns decoded room events published on channel until ctx is done.
func (that *Client) Subscribe(ctx context.Context, channel string) (<-chan entity.RoomEvent, error) {
	pubsub := that.client.Subscribe(ctx, channel)

	// wait for the subscription to be confirmed so no event is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	events := make(chan entity.RoomEvent)
	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event entity.RoomEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

func (that *Client) Close() error {
	return that.client.Close()
}
