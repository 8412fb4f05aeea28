package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogServiceLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log := NewSlogServiceLogger(base)
	log.Info("subscribed", LogFields{"queue": "orders"})

	out := buf.String()
	if !strings.Contains(out, "subscribed") || !strings.Contains(out, "orders") {
		t.Fatalf("expected log output to contain message and fields, got %q", out)
	}
}

func TestWithFieldsPropagate(t *testing.T) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log := NewSlogServiceLogger(base).With(LogFields{"consumer": "orders-worker"})
	log.Error("delivery failed", errors.New("boom"), LogFields{"delivery_tag": 7})

	out := buf.String()
	for _, want := range []string{"orders-worker", "delivery failed", "boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestNilLoggerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil logger")
		}
	}()
	NewSlogServiceLogger(nil)
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	// Must not panic.
	log.Debug("ignored", nil)
	log.Trace("ignored", LogFields{"k": "v"})
	log.With(LogFields{"k": "v"}).Info("ignored", nil)
}
