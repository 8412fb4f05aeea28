package consumer

import (
	"time"

	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

// DeliveryContext provides information about a delivery execution to hooks.
type DeliveryContext struct {
	// ConsumerName is the name of the consumer processing the delivery.
	ConsumerName string
	// Queue is the queue the delivery was received from.
	Queue string
	// ConsumerTag is the broker registration that produced the delivery.
	ConsumerTag string
	// DeliveryTag identifies the delivery on its connection handle.
	DeliveryTag uint64
	// Redelivered is true when the broker flagged this as a redelivery.
	Redelivered bool
	// StartedAt is when handler execution began.
	StartedAt time.Time
	// Duration is how long the handler took (only set in OnDone and OnFailed).
	Duration time.Duration
}

// DeliveryHooks defines callbacks around handler execution. All hooks are
// optional; nil hooks are simply not called. Hooks run on the dispatcher
// goroutine, off the consumer's event loop.
type DeliveryHooks struct {
	// OnStart is called before the handler is invoked.
	OnStart func(ctx DeliveryContext)

	// OnDone is called when the handler resolves Accepted.
	OnDone func(ctx DeliveryContext)

	// OnFailed is called when the handler resolves any non-Accepted outcome.
	// For DeclinedNoRecovery the error is nil.
	OnFailed func(ctx DeliveryContext, err error)
}

// Merge combines two DeliveryHooks, creating a new DeliveryHooks that calls
// both. The hooks from other run after the hooks from h.
func (h DeliveryHooks) Merge(other DeliveryHooks) DeliveryHooks {
	return DeliveryHooks{
		OnStart:  chainHooks(h.OnStart, other.OnStart),
		OnDone:   chainHooks(h.OnDone, other.OnDone),
		OnFailed: chainFailedHooks(h.OnFailed, other.OnFailed),
	}
}

func chainHooks(a, b func(DeliveryContext)) func(DeliveryContext) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx DeliveryContext) {
		a(ctx)
		b(ctx)
	}
}

func chainFailedHooks(a, b func(DeliveryContext, error)) func(DeliveryContext, error) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx DeliveryContext, err error) {
		a(ctx, err)
		b(ctx, err)
	}
}

// LoggingHooks returns hooks that log delivery lifecycle events on the given
// logger.
func LoggingHooks(log loggingpkg.ServiceLogger) DeliveryHooks {
	return DeliveryHooks{
		OnStart: func(ctx DeliveryContext) {
			log.Debug("delivery started", deliveryLogFields(ctx))
		},
		OnDone: func(ctx DeliveryContext) {
			fields := deliveryLogFields(ctx)
			fields["duration"] = ctx.Duration.String()
			log.Debug("delivery done", fields)
		},
		OnFailed: func(ctx DeliveryContext, err error) {
			fields := deliveryLogFields(ctx)
			fields["duration"] = ctx.Duration.String()
			if err == nil {
				log.Debug("delivery declined", fields)
				return
			}
			log.Error("delivery failed", err, fields)
		},
	}
}

func deliveryLogFields(ctx DeliveryContext) loggingpkg.LogFields {
	return loggingpkg.LogFields{
		"consumer":     ctx.ConsumerName,
		"queue":        ctx.Queue,
		"consumer_tag": ctx.ConsumerTag,
		"delivery_tag": ctx.DeliveryTag,
		"redelivered":  ctx.Redelivered,
	}
}
