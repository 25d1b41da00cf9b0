package bus

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

type pubsubBus struct {
	client *pubsub.Client
}

var _ Bus = (*pubsubBus)(nil)

// NewPubSub creates a Bus that fans events out to Cloud Pub/Sub, one topic
// per event type, with msgpack payloads.
func NewPubSub(projectID string) Bus {
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create pubsub client: %v", err)
	}
	return &pubsubBus{client: client}
}

func (b *pubsubBus) Publish(event Event) error {
	ctx := context.Background()
	data, err := msgpack.Marshal(event)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	result := b.client.Topic(string(event.Type)).Publish(ctx, &pubsub.Message{Data: data})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", event.Type)
		return err
	}
	log.Debug("Published bus event", "topic", event.Type, "serverID", serverID)
	return nil
}

// Decode unmarshals a msgpack-encoded bus event payload received from a
// Pub/Sub push subscription.
func Decode(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}
