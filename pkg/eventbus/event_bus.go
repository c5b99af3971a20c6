// Package eventbus dispatches in-process events to subscribers whose
// parameter list matches the published arguments.
package eventbus

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoSubscribers        = errors.New("no matching subscribers")
	ErrInvalidHandlerReturn = errors.New("invalid handler return signature")
	ErrNotAFunc             = errors.New("handler must be a function")

	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Bus is safe for concurrent use. Handlers run synchronously, in
// subscription order, on the publishing goroutine.
type Bus struct {
	log *logrus.Logger

	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id      int
	handler reflect.Value
}

func New(log *logrus.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers handler and returns a function removing it again.
// handler must be a func; it may return nothing or a single error.
func (b *Bus) Subscribe(handler any) (func(), error) {
	v := reflect.ValueOf(handler)
	if v.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrNotAFunc, "got %T", handler)
	}
	t := v.Type()
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return nil, errors.Wrapf(ErrInvalidHandlerReturn, "handler %s", t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: v})
	return func() { b.unsubscribe(id) }, nil
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) SubscribersCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Matches reports whether handler accepts exactly args.
func Matches(handler reflect.Type, args []any) bool {
	if handler.Kind() != reflect.Func || handler.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := handler.In(i)
		if arg == nil {
			if param.Kind() != reflect.Interface && param.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		if !reflect.TypeOf(arg).AssignableTo(param) {
			return false
		}
	}
	return true
}

// Publish delivers args to every matching handler and logs handler errors
// and panics instead of returning them.
func (b *Bus) Publish(args ...any) {
	err := b.PublishE(args...)
	if err == nil || b.log == nil {
		return
	}
	if errors.Is(err, ErrNoSubscribers) {
		b.log.WithField("event", describe(args)).Debug("eventbus: no matching subscribers")
		return
	}
	b.log.WithError(err).WithField("event", describe(args)).Error("eventbus: handler failed")
}

// PublishE delivers args to every matching handler. Every handler runs even
// when an earlier one fails; the failures are joined.
func (b *Bus) PublishE(args ...any) error {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(reflect.TypeOf((*any)(nil)).Elem())
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	matched := false
	var errs []error
	for _, s := range subs {
		t := s.handler.Type()
		if !Matches(t, args) {
			continue
		}
		matched = true
		if err := call(s.handler, fixNils(t, in, args)); err != nil {
			errs = append(errs, err)
		}
	}
	if !matched {
		return ErrNoSubscribers
	}
	return stderrors.Join(errs...)
}

func fixNils(t reflect.Type, in []reflect.Value, args []any) []reflect.Value {
	out := in
	for i, arg := range args {
		if arg != nil {
			continue
		}
		if &out[0] == &in[0] {
			out = make([]reflect.Value, len(in))
			copy(out, in)
		}
		out[i] = reflect.Zero(t.In(i))
	}
	return out
}

func call(handler reflect.Value, in []reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("eventbus: handler %s panicked: %v", handler.Type(), r)
		}
	}()
	out := handler.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

func describe(args []any) string {
	if len(args) == 0 {
		return "<none>"
	}
	return fmt.Sprintf("%T", args[0])
}
