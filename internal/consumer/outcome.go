package consumer

import "sync"

// Outcome is the normalized result of handling one delivery. Exactly one of
// the four variants is produced per dispatched delivery.
type Outcome interface {
	outcome()
}

// Accepted means the handler processed the delivery successfully; the
// delivery will be acknowledged.
type Accepted struct{}

// DeclinedNoRecovery means the application intentionally refuses the
// delivery. It is not an error: the delivery is rejected without requeue and
// no error report is emitted.
type DeclinedNoRecovery struct {
	Reason string
}

// HandlerFailed means the handler returned or raised an error. The failure is
// reported and escalated to the recovery strategy.
type HandlerFailed struct {
	Message string
	Cause   error
}

// ExtractionFailed means the delivery could not be decoded before reaching
// business logic. It follows the same reporting and escalation path as
// HandlerFailed.
type ExtractionFailed struct {
	Err error
}

func (Accepted) outcome()           {}
func (DeclinedNoRecovery) outcome() {}
func (HandlerFailed) outcome()      {}
func (ExtractionFailed) outcome()   {}

func outcomeLabel(o Outcome) string {
	switch o.(type) {
	case Accepted:
		return "accepted"
	case DeclinedNoRecovery:
		return "declined"
	case HandlerFailed:
		return "handler_failed"
	case ExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// ResultSlot is the write-once outcome cell handed to a handler. The handler
// may complete it synchronously or from another goroutine, but must complete
// it exactly once; a slot that is never completed leaves its delivery pending
// forever and blocks graceful shutdown.
type ResultSlot struct {
	once sync.Once
	ch   chan Outcome
}

// NewResultSlot returns an empty slot.
func NewResultSlot() *ResultSlot {
	return &ResultSlot{ch: make(chan Outcome, 1)}
}

// Complete sets the outcome. The first call wins and returns true; later
// calls are no-ops returning false.
func (s *ResultSlot) Complete(o Outcome) bool {
	completed := false
	s.once.Do(func() {
		s.ch <- o
		completed = true
	})
	return completed
}

// await blocks until the slot is completed.
func (s *ResultSlot) await() Outcome {
	return <-s.ch
}
