package errors

import sterrors "errors"

var (
	ErrConfigRequired  = sterrors.New("ackflow: configuration is required")
	ErrLoggerRequired  = sterrors.New("ackflow: logger is required")
	ErrHandlerRequired = sterrors.New("ackflow: delivery handler is required")
	ErrQueueRequired   = sterrors.New("ackflow: queue name is required")

	// ErrBrokerClosed classifies broker-side failures (closed channel or
	// connection). Cancellation errors wrapping it are swallowed by the
	// subscription manager; anything else propagates.
	ErrBrokerClosed = sterrors.New("ackflow: broker channel or connection closed")
)
