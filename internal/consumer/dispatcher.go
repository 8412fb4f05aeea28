package consumer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Handler processes one delivery. It must complete the slot exactly once,
// synchronously or from its own goroutine; a slot that is never completed
// leaves the delivery pending forever.
type Handler func(ctx context.Context, slot *ResultSlot, d Delivery)

// dispatcher runs the user handler off the consumer's sequential control
// path. Each delivery gets its own goroutine; a semaphore bounds how many
// handlers execute concurrently without ever blocking the event loop.
type dispatcher struct {
	consumerName string
	queue        string

	handler Handler
	gateway *recoveryGateway
	hooks   DeliveryHooks
	metrics *consumerMetrics
	tracer  trace.Tracer

	// sem bounds concurrent handler execution.
	sem chan struct{}
}

func newDispatcher(consumerName, queue string, concurrency int, handler Handler, gateway *recoveryGateway, hooks DeliveryHooks, metrics *consumerMetrics) *dispatcher {
	d := &dispatcher{
		consumerName: consumerName,
		queue:        queue,
		handler:      handler,
		gateway:      gateway,
		hooks:        hooks,
		metrics:      metrics,
		tracer:       otel.Tracer("ackflow-consumer"),
		sem:          make(chan struct{}, concurrency),
	}
	return d
}

func (d *dispatcher) dispatch(handle ConnectionHandle, del Delivery) {
	go func() {
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		d.run(handle, del)
	}()
}

func (d *dispatcher) run(handle ConnectionHandle, del Delivery) {
	ctx, span := d.tracer.Start(context.Background(), "HandleDelivery")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.queue", d.queue),
		attribute.String("messaging.consumer_tag", del.ConsumerTag),
		attribute.Int64("messaging.delivery_tag", int64(del.DeliveryTag)),
		attribute.Bool("messaging.redelivered", del.Routing.Redelivered),
	)

	hookCtx := DeliveryContext{
		ConsumerName: d.consumerName,
		Queue:        d.queue,
		ConsumerTag:  del.ConsumerTag,
		DeliveryTag:  del.DeliveryTag,
		Redelivered:  del.Routing.Redelivered,
		StartedAt:    time.Now(),
	}
	if d.hooks.OnStart != nil {
		d.hooks.OnStart(hookCtx)
	}

	outcome := d.invoke(ctx, del)

	hookCtx.Duration = time.Since(hookCtx.StartedAt)
	d.metrics.observeHandlerDuration(hookCtx.Duration.Seconds())
	d.metrics.observeOutcome(d.queue, outcome)
	d.notifyHooks(hookCtx, outcome)

	d.gateway.resolve(ctx, handle, del, outcome)
}

// invoke runs the handler and waits for the write-once slot. A synchronous
// panic is caught and normalized to HandlerFailed.
func (d *dispatcher) invoke(ctx context.Context, del Delivery) Outcome {
	slot := NewResultSlot()

	func() {
		defer func() {
			if r := recover(); r != nil {
				slot.Complete(HandlerFailed{
					Message: "delivery handler panicked",
					Cause:   fmt.Errorf("panic: %v", r),
				})
			}
		}()
		d.handler(ctx, slot, del)
	}()

	return slot.await()
}

func (d *dispatcher) notifyHooks(hookCtx DeliveryContext, outcome Outcome) {
	switch o := outcome.(type) {
	case Accepted:
		if d.hooks.OnDone != nil {
			d.hooks.OnDone(hookCtx)
		}
	case DeclinedNoRecovery:
		if d.hooks.OnFailed != nil {
			d.hooks.OnFailed(hookCtx, nil)
		}
	case HandlerFailed:
		if d.hooks.OnFailed != nil {
			d.hooks.OnFailed(hookCtx, o.Cause)
		}
	case ExtractionFailed:
		if d.hooks.OnFailed != nil {
			d.hooks.OnFailed(hookCtx, o.Err)
		}
	}
}
