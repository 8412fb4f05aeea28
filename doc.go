// Package ackflow is the reliability layer of a message-broker consumer: a
// per-queue process that subscribes to a queue over a connection handle,
// hands each delivery to a user handler asynchronously, and translates the
// handler's outcome into an acknowledge, reject, or recovery decision. It
// survives connection replacement, supports cooperative unsubscribe and
// resubscribe, and shuts down only after all in-flight deliveries are
// resolved, preserving at-least-once delivery without ever acknowledging a
// message twice.
//
// The Consumer is a single sequential event loop: all subscription state and
// the pending-delivery ledger are owned by the goroutine running Run, and
// everything else (handlers, recovery strategies, broker callbacks) talks to
// it only through its mailbox. Handlers execute on a bounded pool off that
// loop and report back through a write-once ResultSlot, so a slow handler
// never stalls control-event processing.
//
// A minimal setup fills Config, creates a Consumer with a Handler, starts Run
// in a goroutine, and calls Subscribe with a connection handle; the adapter
// in transport/amqp091 turns a RabbitMQ channel into such a handle. The
// recovery package ships ready-made strategies for the failure path, and
// Dependencies lets applications plug in their own RecoveryStrategy,
// ErrorReporter, and DeliveryHooks.
//
// # Failure taxonomy
//
// Handlers resolve each delivery to exactly one Outcome: Accepted (ack),
// DeclinedNoRecovery (intentional refusal, plain reject, never reported),
// HandlerFailed, or ExtractionFailed. The failed outcomes are reported
// through the ErrorReporter and escalated to the RecoveryStrategy, whose
// boolean decision maps true to ack and false to reject-with-requeue. A
// failing strategy is fatal: the delivery is requeued and the consumer shuts
// down rather than continuing in an unknown state.
//
// # Observability
//
// With Config.MetricsEnabled the consumer registers Prometheus collectors for
// dispatched deliveries, resolutions, pending count, and handler duration.
// Each handler invocation runs inside an OpenTelemetry span, and
// DeliveryHooks expose OnStart/OnDone/OnFailed callbacks for custom logging
// and alerting around handler execution.
package ackflow
