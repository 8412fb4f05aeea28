package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrConfigRequired", ErrConfigRequired, "ackflow: configuration is required"},
		{"ErrLoggerRequired", ErrLoggerRequired, "ackflow: logger is required"},
		{"ErrHandlerRequired", ErrHandlerRequired, "ackflow: delivery handler is required"},
		{"ErrQueueRequired", ErrQueueRequired, "ackflow: queue name is required"},
		{"ErrBrokerClosed", ErrBrokerClosed, "ackflow: broker channel or connection closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrBrokerClosedWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: channel/connection is not open", ErrBrokerClosed)
	if !errors.Is(wrapped, ErrBrokerClosed) {
		t.Fatal("expected wrapped error to match ErrBrokerClosed")
	}
}
