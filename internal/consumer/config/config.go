package config

import (
	"errors"
	"fmt"

	errspkg "github.com/drblury/ackflow/internal/consumer/errors"
)

// Default values applied by the consumer when the corresponding field is zero.
const (
	DefaultHandlerConcurrency = 8
	DefaultEventBufferSize    = 64
	DefaultMetricsNamespace   = "ackflow"
)

// Config groups the settings required to run a queue consumer. Only Queue is
// mandatory; zero values fall back to the defaults above.
type Config struct {
	// Queue is the broker queue the consumer subscribes to.
	Queue string

	// ConsumerName identifies this consumer in logs, error reports, and
	// metrics. Defaults to the queue name.
	ConsumerName string

	// HandlerConcurrency bounds how many deliveries may execute their handler
	// at the same time. Control-event processing is never blocked by a full
	// pool; deliveries queue for a slot instead.
	HandlerConcurrency int

	// EventBufferSize is the capacity of the consumer's internal event
	// mailbox.
	EventBufferSize int

	// Metrics configuration.
	MetricsEnabled bool
	// MetricsNamespace is the Prometheus namespace for consumer metrics.
	MetricsNamespace string
}

// Validate checks that the configuration is usable. Returns an error
// describing every invalid field.
func (c *Config) Validate() error {
	var errs []error

	if c.Queue == "" {
		errs = append(errs, errspkg.ErrQueueRequired)
	}
	if c.HandlerConcurrency < 0 {
		errs = append(errs, fmt.Errorf("handler concurrency cannot be negative: %d", c.HandlerConcurrency))
	}
	if c.EventBufferSize < 0 {
		errs = append(errs, fmt.Errorf("event buffer size cannot be negative: %d", c.EventBufferSize))
	}

	return errors.Join(errs...)
}

// ValidateConfig is a convenience function to validate a config pointer.
// Returns nil if the config is valid.
func ValidateConfig(c *Config) error {
	if c == nil {
		return errspkg.ErrConfigRequired
	}
	return c.Validate()
}
