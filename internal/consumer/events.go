package consumer

// event is a control event accepted by the consumer's mailbox. Events are
// processed strictly in arrival order by a single goroutine.
type event interface {
	controlEvent()
}

// subscribeEvent (re)registers the subscription on the given handle.
type subscribeEvent struct {
	handle ConnectionHandle
}

// unsubscribeEvent cancels the broker registration but keeps the consumer
// alive.
type unsubscribeEvent struct{}

// deliveryEvent carries one message pushed by the broker.
type deliveryEvent struct {
	delivery Delivery
}

// resolveEvent resolves one pending delivery. requeue is only meaningful when
// ack is false.
type resolveEvent struct {
	ack     bool
	requeue bool
	tag     uint64
}

// shutdownEvent begins a graceful drain: no new work is accepted and the
// consumer terminates once the ledger is empty.
type shutdownEvent struct{}

// abortEvent terminates immediately, discarding pending deliveries. The
// broker redelivers them after the connection times out.
type abortEvent struct{}

func (subscribeEvent) controlEvent()   {}
func (unsubscribeEvent) controlEvent() {}
func (deliveryEvent) controlEvent()    {}
func (resolveEvent) controlEvent()     {}
func (shutdownEvent) controlEvent()    {}
func (abortEvent) controlEvent()       {}
