package consumer

// ConnectionHandle is the live broker session used to acknowledge deliveries
// and register or cancel consumption. It is shared with other consumers of
// the same connection; implementations must be safe for concurrent use. The
// production implementation lives in transport/amqp091.
//
// Cancellation errors caused by a closed channel or connection must wrap
// errors.ErrBrokerClosed so the consumer can treat unsubscribe as best-effort.
type ConnectionHandle interface {
	// Ack acknowledges a single delivery.
	Ack(deliveryTag uint64) error

	// Reject refuses a single delivery, optionally asking the broker to
	// requeue it.
	Reject(deliveryTag uint64, requeue bool) error

	// RegisterConsumer starts pushing deliveries from the queue to the
	// callback and returns the broker consumer tag. The callback must be
	// invoked from outside the consumer's own event loop.
	RegisterConsumer(queue string, onDelivery func(Delivery)) (consumerTag string, err error)

	// CancelConsumer stops the registration identified by the tag.
	CancelConsumer(consumerTag string) error
}
