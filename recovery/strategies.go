// Package recovery provides ready-made recovery strategies for ackflow
// consumers. A strategy decides, after a handler failure, whether the
// delivery is acknowledged (given up on) or rejected back to the broker with
// requeue.
package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	consumer "github.com/drblury/ackflow/internal/consumer"
)

// AlwaysRequeue rejects every failed delivery back to the queue. This is the
// consumer's default when no strategy is configured. With a persistently
// failing message this loops forever; combine with a broker-side dead-letter
// exchange or use DropOnRedelivery.
func AlwaysRequeue() consumer.RecoveryStrategy {
	return func(context.Context, error, consumer.ConnectionHandle, string, consumer.Delivery) (bool, error) {
		return false, nil
	}
}

// AlwaysDrop acknowledges every failed delivery, discarding it. Use when a
// failed message has no value and redelivery would only repeat the failure.
func AlwaysDrop() consumer.RecoveryStrategy {
	return func(context.Context, error, consumer.ConnectionHandle, string, consumer.Delivery) (bool, error) {
		return true, nil
	}
}

// DropOnRedelivery requeues a failed delivery once: the first failure goes
// back to the queue, a failure of a redelivered message is acknowledged and
// dropped. This bounds redelivery loops without any external bookkeeping,
// at the cost of at most one retry.
func DropOnRedelivery() consumer.RecoveryStrategy {
	return func(_ context.Context, _ error, _ consumer.ConnectionHandle, _ string, d consumer.Delivery) (bool, error) {
		return d.Routing.Redelivered, nil
	}
}

// RequeueWithBackoff requeues every failed delivery but waits an
// exponentially growing interval first, so a downstream outage does not turn
// into a hot redelivery loop. The interval grows across failures of any
// delivery on this consumer and is capped at maxInterval. Cancelling ctx cuts
// the wait short; the delivery is still requeued.
func RequeueWithBackoff(initialInterval, maxInterval time.Duration) consumer.RecoveryStrategy {
	bo := backoff.NewExponentialBackOff()
	if initialInterval > 0 {
		bo.InitialInterval = initialInterval
	}
	if maxInterval > 0 {
		bo.MaxInterval = maxInterval
	}
	bo.Reset()

	var mu sync.Mutex
	return func(ctx context.Context, _ error, _ consumer.ConnectionHandle, _ string, _ consumer.Delivery) (bool, error) {
		mu.Lock()
		wait := bo.NextBackOff()
		mu.Unlock()

		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return false, nil
	}
}
