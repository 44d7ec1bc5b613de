package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// GoChannelEventPublisher publishes events over an in-process Watermill
// pub/sub. It backs the memory storage mode and tests, and feeds the
// in-process notification subscriber.
type GoChannelEventPublisher struct {
	pubsub *gochannel.GoChannel
}

var _ EventPublisher = (*GoChannelEventPublisher)(nil)

// NewGoChannelPubSub creates the shared in-process broker. The same instance
// is handed to the publisher and to any subscribers.
func NewGoChannelPubSub(logger *slog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
}

// NewGoChannelEventPublisher wraps a shared in-process broker.
func NewGoChannelEventPublisher(pubsub *gochannel.GoChannel) *GoChannelEventPublisher {
	return &GoChannelEventPublisher{pubsub: pubsub}
}

func (p *GoChannelEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.pubsub.Publish(TopicMembershipEvents, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}
	return nil
}

func (p *GoChannelEventPublisher) Close() error {
	return p.pubsub.Close()
}
