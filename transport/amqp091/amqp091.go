// Package amqp091 adapts a RabbitMQ channel from rabbitmq/amqp091-go to the
// ackflow ConnectionHandle contract.
package amqp091

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	consumer "github.com/drblury/ackflow/internal/consumer"
	errspkg "github.com/drblury/ackflow/internal/consumer/errors"
	idspkg "github.com/drblury/ackflow/internal/consumer/ids"
)

// ConsumeOptions tune the broker-level registration. Zero values match plain
// basic.consume with manual acknowledgements.
type ConsumeOptions struct {
	// TagPrefix prefixes generated consumer tags. Defaults to "ackflow".
	TagPrefix string

	Exclusive bool
	NoLocal   bool
	NoWait    bool
	Args      amqp.Table
}

// ChannelHandle implements the ConnectionHandle contract on top of an AMQP
// channel. The channel's own thread-safety applies; ackflow only calls
// ack/reject/consume/cancel on it.
type ChannelHandle struct {
	ch   *amqp.Channel
	opts ConsumeOptions
}

// NewChannelHandle wraps an open AMQP channel. After a reconnect, wrap the
// replacement channel in a fresh handle and pass it to Consumer.Subscribe;
// delivery tags are scoped to a handle and must never cross channels.
func NewChannelHandle(ch *amqp.Channel, opts ConsumeOptions) *ChannelHandle {
	return &ChannelHandle{ch: ch, opts: opts}
}

func (h *ChannelHandle) Ack(deliveryTag uint64) error {
	return h.ch.Ack(deliveryTag, false)
}

func (h *ChannelHandle) Reject(deliveryTag uint64, requeue bool) error {
	return h.ch.Reject(deliveryTag, requeue)
}

// RegisterConsumer starts basic.consume with manual acks and pumps broker
// deliveries to the callback from a dedicated goroutine. The pump stops when
// the broker closes the delivery channel (cancel or connection loss).
func (h *ChannelHandle) RegisterConsumer(queue string, onDelivery func(consumer.Delivery)) (string, error) {
	tag := idspkg.ConsumerTag(h.opts.TagPrefix)

	deliveries, err := h.ch.Consume(
		queue,
		tag,
		false, // autoAck
		h.opts.Exclusive,
		h.opts.NoLocal,
		h.opts.NoWait,
		h.opts.Args,
	)
	if err != nil {
		return "", classifyBrokerErr(err)
	}

	go func() {
		for d := range deliveries {
			onDelivery(convertDelivery(d))
		}
	}()

	return tag, nil
}

func (h *ChannelHandle) CancelConsumer(consumerTag string) error {
	if err := h.ch.Cancel(consumerTag, false); err != nil {
		return classifyBrokerErr(err)
	}
	return nil
}

// classifyBrokerErr wraps closed-channel and broker-originated errors with
// ErrBrokerClosed so the consumer can treat them as best-effort failures.
func classifyBrokerErr(err error) error {
	if err == nil {
		return nil
	}
	if isBrokerClosed(err) {
		return fmt.Errorf("%w: %w", errspkg.ErrBrokerClosed, err)
	}
	return err
}

func isBrokerClosed(err error) bool {
	if errors.Is(err, amqp.ErrClosed) {
		return true
	}
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr)
}

func convertDelivery(d amqp.Delivery) consumer.Delivery {
	return consumer.Delivery{
		ConsumerTag: d.ConsumerTag,
		DeliveryTag: d.DeliveryTag,
		Routing: consumer.RoutingInfo{
			Exchange:    d.Exchange,
			RoutingKey:  d.RoutingKey,
			Redelivered: d.Redelivered,
		},
		Metadata: convertMetadata(d),
		Body:     d.Body,
	}
}

// convertMetadata flattens AMQP headers and the commonly used properties into
// string metadata. Header values are stringified; nested tables come out as
// their Go formatting, which is good enough for reporting and routing
// decisions.
func convertMetadata(d amqp.Delivery) map[string]string {
	meta := make(map[string]string, len(d.Headers)+4)
	for k, v := range d.Headers {
		meta[k] = fmt.Sprint(v)
	}
	if d.ContentType != "" {
		meta["content_type"] = d.ContentType
	}
	if d.CorrelationId != "" {
		meta["correlation_id"] = d.CorrelationId
	}
	if d.MessageId != "" {
		meta["message_id"] = d.MessageId
	}
	if d.Type != "" {
		meta["type"] = d.Type
	}
	if d.AppId != "" {
		meta["app_id"] = d.AppId
	}
	return meta
}
