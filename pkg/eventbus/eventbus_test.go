package eventbus

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

type stepDone struct {
	name string
}

type otherEvent struct{}

func bufferedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(level)
	return log, buf
}

func TestBus_PublishDeliversToMatchingHandler(t *testing.T) {
	bus := New(nil)
	var got string
	if _, err := bus.Subscribe(func(e *stepDone) { got = e.name }); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Subscribe(func(e *otherEvent) { t.Error("should not be called") }); err != nil {
		t.Fatal(err)
	}
	bus.Publish(&stepDone{name: "hris"})
	if got != "hris" {
		t.Errorf("expected hris, got %q", got)
	}
}

func TestBus_PublishLogsHandlerFailures(t *testing.T) {
	log, buf := bufferedLogger(logrus.ErrorLevel)
	bus := New(log)
	calledAfterPanic := false
	_, _ = bus.Subscribe(func(e *stepDone) { panic("intentional") })
	_, _ = bus.Subscribe(func(e *stepDone) { calledAfterPanic = true })

	bus.Publish(&stepDone{})

	if !calledAfterPanic {
		t.Error("handlers after a panicking one should still run")
	}
	if out := buf.String(); !strings.Contains(out, "panicked") || !strings.Contains(out, "intentional") {
		t.Errorf("panic should be logged, got %q", out)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(nil)
	calls := 0
	unsubscribe, err := bus.Subscribe(func(e *stepDone) { calls++ })
	if err != nil {
		t.Fatal(err)
	}
	bus.Publish(&stepDone{})
	unsubscribe()
	bus.Publish(&stepDone{})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if bus.SubscribersCount() != 0 {
		t.Errorf("expected no subscribers, got %d", bus.SubscribersCount())
	}
}

func TestBus_SubscribeRejectsBadHandlers(t *testing.T) {
	bus := New(nil)
	if _, err := bus.Subscribe("not a func"); !errors.Is(err, ErrNotAFunc) {
		t.Errorf("expected ErrNotAFunc, got %v", err)
	}
	if _, err := bus.Subscribe(func(e *stepDone) int { return 1 }); !errors.Is(err, ErrInvalidHandlerReturn) {
		t.Errorf("expected ErrInvalidHandlerReturn, got %v", err)
	}
}

func TestBus_PublishE(t *testing.T) {
	t.Run("no subscribers", func(t *testing.T) {
		if err := New(nil).PublishE(&stepDone{}); !errors.Is(err, ErrNoSubscribers) {
			t.Fatalf("expected ErrNoSubscribers, got %v", err)
		}
	})

	t.Run("errors are joined", func(t *testing.T) {
		bus := New(nil)
		err1 := errors.New("err1")
		err2 := errors.New("err2")
		_, _ = bus.Subscribe(func(e *stepDone) error { return err1 })
		_, _ = bus.Subscribe(func(e *stepDone) error { return err2 })
		err := bus.PublishE(&stepDone{})
		if !errors.Is(err, err1) || !errors.Is(err, err2) {
			t.Fatalf("expected joined errors, got %v", err)
		}
	})

	t.Run("nil argument reaches pointer handler", func(t *testing.T) {
		bus := New(nil)
		var seen bool
		_, _ = bus.Subscribe(func(e *stepDone) { seen = e == nil })
		if err := bus.PublishE(nil); err != nil {
			t.Fatal(err)
		}
		if !seen {
			t.Error("handler should receive a nil pointer")
		}
	})
}

func TestMatches(t *testing.T) {
	h := reflect.TypeOf(func(e *stepDone) {})
	if !Matches(h, []any{&stepDone{}}) {
		t.Error("expected match")
	}
	if Matches(h, []any{&otherEvent{}}) {
		t.Error("expected no match for other type")
	}
	if Matches(h, []any{}) || Matches(h, []any{&stepDone{}, &stepDone{}}) {
		t.Error("expected no match for wrong arity")
	}
	if !Matches(reflect.TypeOf(func(ctx context.Context) {}), []any{context.Background()}) {
		t.Error("interface parameters should accept implementations")
	}
}
