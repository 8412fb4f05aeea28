package consumer

import (
	"errors"
	"fmt"

	errspkg "github.com/drblury/ackflow/internal/consumer/errors"
	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

// subscriptionManager opens and cancels the broker-level consumption
// registration on a connection handle. The broker callback it installs only
// posts delivery events into the consumer's mailbox; deliveries are never
// processed inline on the broker's callback goroutine.
type subscriptionManager struct {
	queue string
	post  func(event)
	log   loggingpkg.ServiceLogger
}

func (m *subscriptionManager) register(handle ConnectionHandle) (string, error) {
	tag, err := handle.RegisterConsumer(m.queue, func(d Delivery) {
		m.post(deliveryEvent{delivery: d})
	})
	if err != nil {
		return "", fmt.Errorf("register consumer on queue %q: %w", m.queue, err)
	}

	m.log.Info("subscription registered", loggingpkg.LogFields{
		"queue":        m.queue,
		"consumer_tag": tag,
	})
	return tag, nil
}

// cancel stops the registration. Broker-level failures (closed channel or
// connection) are swallowed: the subscription is gone either way. Any other
// failure propagates so the caller fails loud instead of silently mis-tracking
// subscription state.
func (m *subscriptionManager) cancel(handle ConnectionHandle, consumerTag string) error {
	err := handle.CancelConsumer(consumerTag)
	if err == nil {
		m.log.Info("subscription cancelled", loggingpkg.LogFields{
			"queue":        m.queue,
			"consumer_tag": consumerTag,
		})
		return nil
	}

	if errors.Is(err, errspkg.ErrBrokerClosed) {
		m.log.Debug("subscription cancel skipped, broker side already closed", loggingpkg.LogFields{
			"queue":        m.queue,
			"consumer_tag": consumerTag,
			"cause":        err.Error(),
		})
		return nil
	}

	return fmt.Errorf("cancel consumer %q: %w", consumerTag, err)
}
