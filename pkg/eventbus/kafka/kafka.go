// Package kafka provides the Kafka channel of the event bus, built on
// watermill-kafka with sarama underneath.
package kafka

import (
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"

	"github.com/flowd-sh/flowd/pkg/eventbus"
)

// NewEventBus connects publisher and consumer-group subscriber to the given
// brokers.
func NewEventBus(logger *slog.Logger, brokers []string, groupID string) (eventbus.EventBus, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no Kafka brokers configured")
	}

	if groupID == "" {
		groupID = "cg-flowd-event-bus"
	}

	wmLogger := watermill.NewSlogLogger(logger)

	publisherConfig := kafka.DefaultSaramaSyncPublisherConfig()
	publisherConfig.Producer.Idempotent = true
	publisherConfig.Net.MaxOpenRequests = 1

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: publisherConfig,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	subscriberConfig := kafka.DefaultSaramaSubscriberConfig()
	subscriberConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: subscriberConfig,
		ConsumerGroup:         groupID,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}

	return eventbus.NewWatermillEventBus(publisher, subscriber), nil
}
