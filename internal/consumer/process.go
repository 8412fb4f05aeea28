package consumer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/ackflow/internal/consumer/config"
	errspkg "github.com/drblury/ackflow/internal/consumer/errors"
	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

type procState int

const (
	stateUnsubscribed procState = iota
	stateConnected
	stateStopping
)

// Dependencies holds the collaborators for a Consumer. Handler is required;
// everything else has a sensible default.
type Dependencies struct {
	// Handler processes each delivery. Required.
	Handler Handler

	// Strategy decides ack-vs-requeue after a handler failure. Defaults to
	// reject-and-requeue.
	Strategy RecoveryStrategy

	// Reporter records failing deliveries. Defaults to LoggingErrorReporter.
	Reporter ErrorReporter

	// Hooks run around handler execution.
	Hooks DeliveryHooks

	// Registerer receives the Prometheus collectors when Config.MetricsEnabled
	// is set. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Consumer is a per-queue reliability process. It subscribes on a connection
// handle, dispatches deliveries to the handler asynchronously, and resolves
// each one with an ack or reject on the handle.
//
// All state (subscription, pending ledger) is owned by the single goroutine
// running Run; control methods only post events into its mailbox. Events are
// processed strictly in arrival order. Deliveries themselves resolve in
// whatever order their handlers finish.
type Consumer struct {
	conf *configpkg.Config
	log  loggingpkg.ServiceLogger
	name string

	subs       *subscriptionManager
	dispatcher *dispatcher
	metrics    *consumerMetrics

	events chan event
	done   chan struct{}

	// Owned exclusively by the Run goroutine.
	state       procState
	handle      ConnectionHandle
	consumerTag string
	pending     *pendingLedger
	termErr     error
}

// New constructs a Consumer. Call Run to start it, then drive it with
// Subscribe/Unsubscribe/Shutdown/Abort.
func New(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps Dependencies) (*Consumer, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if deps.Handler == nil {
		return nil, errspkg.ErrHandlerRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	name := conf.ConsumerName
	if name == "" {
		name = conf.Queue
	}
	concurrency := conf.HandlerConcurrency
	if concurrency <= 0 {
		concurrency = configpkg.DefaultHandlerConcurrency
	}
	buffer := conf.EventBufferSize
	if buffer <= 0 {
		buffer = configpkg.DefaultEventBufferSize
	}

	strategy := deps.Strategy
	if strategy == nil {
		strategy = defaultRecoveryStrategy
	}
	reporter := deps.Reporter
	if reporter == nil {
		reporter = LoggingErrorReporter(log)
	}

	var metrics *consumerMetrics
	if conf.MetricsEnabled {
		namespace := conf.MetricsNamespace
		if namespace == "" {
			namespace = configpkg.DefaultMetricsNamespace
		}
		metrics = newConsumerMetrics(namespace, deps.Registerer)
		if err := metrics.Register(); err != nil {
			return nil, err
		}
	}

	c := &Consumer{
		conf:    conf,
		log:     log.With(loggingpkg.LogFields{"consumer": name, "queue": conf.Queue}),
		name:    name,
		metrics: metrics,
		events:  make(chan event, buffer),
		done:    make(chan struct{}),
		pending: newPendingLedger(),
	}
	c.subs = &subscriptionManager{queue: conf.Queue, post: c.post, log: c.log}
	gateway := &recoveryGateway{
		consumerName: name,
		queue:        conf.Queue,
		strategy:     strategy,
		reporter:     reporter,
		post:         c.post,
		log:          c.log,
	}
	c.dispatcher = newDispatcher(name, conf.Queue, concurrency, deps.Handler, gateway, deps.Hooks, metrics)

	return c, nil
}

// defaultRecoveryStrategy rejects with requeue, preserving at-least-once
// delivery when no policy is configured.
func defaultRecoveryStrategy(context.Context, error, ConnectionHandle, string, Delivery) (bool, error) {
	return false, nil
}

// Subscribe (re)registers the subscription on the given handle. Subscribing
// with a different handle than the current one abandons all in-flight
// deliveries; the broker redelivers them on the new handle.
func (c *Consumer) Subscribe(handle ConnectionHandle) {
	c.post(subscribeEvent{handle: handle})
}

// Unsubscribe cancels the broker registration but keeps the consumer running;
// it will accept a later Subscribe.
func (c *Consumer) Unsubscribe() {
	c.post(unsubscribeEvent{})
}

// Shutdown begins a graceful drain: the registration is cancelled and the
// consumer terminates once every pending delivery has been resolved.
func (c *Consumer) Shutdown() {
	c.post(shutdownEvent{})
}

// Abort terminates immediately, discarding pending deliveries. They remain
// unacked and will be redelivered by the broker after the connection times
// out.
func (c *Consumer) Abort() {
	c.post(abortEvent{})
}

// Done is closed when the consumer has terminated.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

// Err reports why the consumer terminated. Only valid after Done is closed;
// nil means a clean stop.
func (c *Consumer) Err() error {
	return c.termErr
}

// Run executes the event loop until the consumer terminates. Cancelling ctx
// is an owner-requested stop: it cancels the registration and drains like
// Shutdown, but stays distinct from Abort. Run must be called exactly once.
func (c *Consumer) Run(ctx context.Context) error {
	defer close(c.done)

	stop := ctx.Done()
	for {
		select {
		case <-stop:
			stop = nil
			c.log.Info("stop requested by owner", nil)
			if c.beginDrain() {
				return c.termErr
			}
		case ev := <-c.events:
			if c.handleEvent(ev) {
				return c.termErr
			}
		}
	}
}

func (c *Consumer) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
		// Terminated; late events are dropped.
	}
}

func (c *Consumer) handleEvent(ev event) (terminated bool) {
	switch e := ev.(type) {
	case subscribeEvent:
		return c.onSubscribe(e.handle)
	case unsubscribeEvent:
		return c.onUnsubscribe()
	case deliveryEvent:
		return c.onDelivery(e.delivery)
	case resolveEvent:
		return c.onResolve(e)
	case shutdownEvent:
		return c.beginDrain()
	case abortEvent:
		c.log.Info("aborted", loggingpkg.LogFields{"pending": c.pending.Len()})
		return true
	}
	return false
}

func (c *Consumer) onSubscribe(handle ConnectionHandle) bool {
	switch c.state {
	case stateStopping:
		if handle != c.handle {
			// Connection lost mid-drain; the pending tags can never be
			// resolved on the old handle.
			c.pending.Clear()
			c.metrics.setPending(0)
			c.log.Info("connection replaced while draining, terminating", nil)
			return true
		}
		// Still draining, no new work accepted.
		return false
	case stateConnected:
		if handle != c.handle {
			// In-flight deliveries on the old handle are abandoned; the
			// broker redelivers them.
			c.pending.Clear()
			c.metrics.setPending(0)
		} else if c.cancelRegistration() {
			return true
		}
	}

	tag, err := c.subs.register(handle)
	if err != nil {
		c.termErr = err
		c.log.Error("subscription registration failed", err, nil)
		return true
	}

	c.state = stateConnected
	c.handle = handle
	c.consumerTag = tag
	return false
}

func (c *Consumer) onUnsubscribe() bool {
	if c.state != stateConnected {
		return false
	}
	return c.cancelRegistration()
}

func (c *Consumer) onDelivery(d Delivery) bool {
	switch c.state {
	case stateConnected:
		if !c.pending.Insert(d.DeliveryTag) {
			c.log.Debug("duplicate delivery tag ignored", loggingpkg.LogFields{"delivery_tag": d.DeliveryTag})
			return false
		}
		c.metrics.setPending(c.pending.Len())
		c.dispatcher.dispatch(c.handle, d)
	case stateStopping:
		// No new work while draining. Requeue right away; the broker may
		// reorder this message ahead of earlier pending resolutions.
		if err := c.handle.Reject(d.DeliveryTag, true); err != nil {
			c.log.Error("failed to requeue delivery during drain", err, loggingpkg.LogFields{"delivery_tag": d.DeliveryTag})
		}
	case stateUnsubscribed:
		// Stale broker callback; there is no handle to resolve it on.
		c.log.Debug("dropping delivery received while unsubscribed", loggingpkg.LogFields{"delivery_tag": d.DeliveryTag})
	}
	return false
}

func (c *Consumer) onResolve(e resolveEvent) bool {
	if !c.pending.Remove(e.tag) {
		// Unknown or already-resolved tag, e.g. a late resolution after the
		// ledger was cleared on reconnect. Never touches the broker.
		return false
	}
	c.metrics.setPending(c.pending.Len())

	var err error
	if e.ack {
		err = c.handle.Ack(e.tag)
	} else {
		err = c.handle.Reject(e.tag, e.requeue)
	}
	if err != nil {
		c.log.Error("failed to resolve delivery on broker", err, loggingpkg.LogFields{
			"delivery_tag": e.tag,
			"ack":          e.ack,
		})
	}
	c.metrics.observeResolution(c.conf.Queue, e.ack, e.requeue)

	if c.state == stateStopping && c.pending.Len() == 0 {
		c.log.Info("drain complete", nil)
		return true
	}
	return false
}

// beginDrain implements Shutdown and the owner-requested stop. Terminates
// immediately when nothing is pending, otherwise enters Stopping.
func (c *Consumer) beginDrain() bool {
	switch c.state {
	case stateUnsubscribed:
		return true
	case stateConnected:
		if c.cancelRegistration() {
			return true
		}
		if c.pending.Len() == 0 {
			return true
		}
		c.state = stateStopping
		c.log.Info("draining pending deliveries", loggingpkg.LogFields{"pending": c.pending.Len()})
		return false
	default:
		// Already stopping.
		return false
	}
}

// cancelRegistration cancels the current broker registration, if any.
// Broker-side failures are swallowed by the subscription manager; anything
// else is fatal and terminates the consumer. Returns true when fatal.
func (c *Consumer) cancelRegistration() bool {
	if c.handle == nil || c.consumerTag == "" {
		return false
	}
	err := c.subs.cancel(c.handle, c.consumerTag)
	c.consumerTag = ""
	if err != nil {
		c.termErr = err
		c.log.Error("subscription cancel failed", err, nil)
		return true
	}
	return false
}
