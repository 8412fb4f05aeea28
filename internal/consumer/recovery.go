package consumer

import (
	"context"
	"fmt"

	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

// RecoveryStrategy decides what happens to a delivery whose handler failed.
// Returning true acknowledges the delivery (give up on it), false rejects it
// back to the broker with requeue. A strategy error is fatal for the whole
// consumer: the delivery is requeued and the consumer shuts down rather than
// continuing in an unknown state.
type RecoveryStrategy func(ctx context.Context, cause error, handle ConnectionHandle, queue string, d Delivery) (ack bool, err error)

// recoveryGateway turns a handler outcome into a resolve event. It runs on
// dispatcher goroutines and talks back to the event loop only through post.
type recoveryGateway struct {
	consumerName string
	queue        string

	strategy RecoveryStrategy
	reporter ErrorReporter
	post     func(event)
	log      loggingpkg.ServiceLogger
}

func (g *recoveryGateway) resolve(ctx context.Context, handle ConnectionHandle, d Delivery, outcome Outcome) {
	switch o := outcome.(type) {
	case Accepted:
		g.post(resolveEvent{ack: true, tag: d.DeliveryTag})
	case DeclinedNoRecovery:
		// An intentional application-level refusal: plain reject, no
		// requeue, no error report.
		g.post(resolveEvent{ack: false, requeue: false, tag: d.DeliveryTag})
	case HandlerFailed:
		g.escalate(ctx, handle, d, o.Message, o.Cause)
	case ExtractionFailed:
		g.escalate(ctx, handle, d, "failed to extract message", o.Err)
	}
}

func (g *recoveryGateway) escalate(ctx context.Context, handle ConnectionHandle, d Delivery, message string, cause error) {
	g.report(message, cause, d)

	ack, err := g.invokeStrategy(ctx, handle, d, cause)
	if err != nil {
		g.log.Error("recovery strategy failed, shutting consumer down", err, loggingpkg.LogFields{
			"consumer":     g.consumerName,
			"queue":        g.queue,
			"delivery_tag": d.DeliveryTag,
		})
		g.post(resolveEvent{ack: false, requeue: true, tag: d.DeliveryTag})
		g.post(shutdownEvent{})
		return
	}

	g.post(resolveEvent{ack: ack, requeue: true, tag: d.DeliveryTag})
}

// report invokes the error reporter. The reporter contract is fire-and-forget
// and must not raise; a panicking reporter is contained here so it cannot
// leave the delivery unresolved.
func (g *recoveryGateway) report(message string, cause error, d Delivery) {
	if g.reporter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("error reporter panicked", fmt.Errorf("panic: %v", r), loggingpkg.LogFields{
				"consumer":     g.consumerName,
				"delivery_tag": d.DeliveryTag,
			})
		}
	}()
	g.reporter(g.consumerName, message, cause, d.ConsumerTag, d.Routing, d.Metadata, d.Body)
}

func (g *recoveryGateway) invokeStrategy(ctx context.Context, handle ConnectionHandle, d Delivery, cause error) (ack bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ack = false
			err = fmt.Errorf("recovery strategy panicked: %v", r)
		}
	}()
	return g.strategy(ctx, cause, handle, g.queue, d)
}
