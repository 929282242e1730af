package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	DefaultPublisherBuffer = 256
	publishTimeout         = 2 * time.Second
)

type eventSink interface {
	PublishEvent(ctx context.Context, channel string, event entity.RoomEvent) error
}

// Publisher forwards room events to a Redis channel in the background.
// Publish never blocks: events that do not fit in the buffer are dropped.
type Publisher struct {
	logger  *slog.Logger
	sink    eventSink
	channel string

	events chan entity.RoomEvent
}

func NewPublisher(logger *slog.Logger, sink eventSink, channel string, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = DefaultPublisherBuffer
	}

	return &Publisher{
		logger:  logger.With("component", "publisher", "channel", channel),
		sink:    sink,
		channel: channel,
		events:  make(chan entity.RoomEvent, buffer),
	}
}

func (that *Publisher) Publish(event entity.RoomEvent) {
	select {
	case that.events <- event:
	default:
		that.logger.Warn("event buffer is full, dropping event", "type", event.Type, "room", event.Room)
	}
}

// Run sends queued events until ctx is canceled.
func (that *Publisher) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-that.events:
			publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err := that.sink.PublishEvent(publishCtx, that.channel, event)
			cancel()

			if err != nil {
				log.Error("failed to publish event", "type", event.Type, "room", event.Room, "error", err)
				continue
			}

			log.Debug("event published", "type", event.Type, "room", event.Room)
		}
	}
}
