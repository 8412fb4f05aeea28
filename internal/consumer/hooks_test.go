package consumer

import (
	"errors"
	"testing"

	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

func TestDeliveryHooksMerge(t *testing.T) {
	var order []string

	first := DeliveryHooks{
		OnStart:  func(DeliveryContext) { order = append(order, "first-start") },
		OnFailed: func(DeliveryContext, error) { order = append(order, "first-failed") },
	}
	second := DeliveryHooks{
		OnStart: func(DeliveryContext) { order = append(order, "second-start") },
		OnDone:  func(DeliveryContext) { order = append(order, "second-done") },
	}

	merged := first.Merge(second)

	merged.OnStart(DeliveryContext{})
	merged.OnDone(DeliveryContext{})
	merged.OnFailed(DeliveryContext{}, errors.New("boom"))

	want := []string{"first-start", "second-start", "second-done", "first-failed"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestDeliveryHooksMergeWithEmpty(t *testing.T) {
	called := false
	hooks := DeliveryHooks{OnDone: func(DeliveryContext) { called = true }}

	merged := DeliveryHooks{}.Merge(hooks)
	if merged.OnStart != nil {
		t.Fatal("expected OnStart to stay nil")
	}
	merged.OnDone(DeliveryContext{})
	if !called {
		t.Fatal("expected merged OnDone to call the original hook")
	}
}

func TestLoggingHooksDoNotPanic(t *testing.T) {
	hooks := LoggingHooks(loggingpkg.NopLogger())

	ctx := DeliveryContext{ConsumerName: "orders", Queue: "orders", DeliveryTag: 7}
	hooks.OnStart(ctx)
	hooks.OnDone(ctx)
	hooks.OnFailed(ctx, errors.New("boom"))
	hooks.OnFailed(ctx, nil) // declined path
}
