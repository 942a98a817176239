package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowd-sh/flowd/pkg/eventbus"
	"github.com/flowd-sh/flowd/pkg/eventbus/kafka"
)

// NewEventBus creates an event bus from the provider name. The gochannel
// provider is in-process only and pairs with the in-memory persistence for
// single-binary deployments.
func NewEventBus(logger *slog.Logger, provider, brokers, groupID string) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		return kafka.NewEventBus(logger, strings.Split(brokers, ","), groupID)
	case "gochannel":
		return eventbus.NewGoChannelEventBus(logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
