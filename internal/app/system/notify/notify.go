// Package notify delivers user-facing success and error messages produced
// by catalog operations. Delivery is fire-and-forget: a sink never returns
// an error to the operation that raised the message.
package notify

import (
	"context"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Notification is one message raised by an operation.
type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, kind Kind, message string)
}

// Func adapts a plain function to a Sink.
type Func func(ctx context.Context, kind Kind, message string)

// Notify calls f.
func (f Func) Notify(ctx context.Context, kind Kind, message string) { f(ctx, kind, message) }

// Discard drops every notification.
var Discard Sink = Func(func(context.Context, Kind, string) {})

// Multi fans a notification out to every sink in order.
type Multi []Sink

// Notify delivers to each non-nil sink.
func (m Multi) Notify(ctx context.Context, kind Kind, message string) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, kind, message)
		}
	}
}

type ctxKey struct{}

// WithSink returns a context carrying an additional request-scoped sink.
// The catalog synchronizer delivers to it alongside its own sink, which is
// how an HTTP handler collects the messages for its response.
func WithSink(ctx context.Context, s Sink) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request-scoped sink, or nil.
func FromContext(ctx context.Context) Sink {
	s, _ := ctx.Value(ctxKey{}).(Sink)
	return s
}
