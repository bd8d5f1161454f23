// Package notify delivers short human-readable notices to the user.
package notify

import (
	"time"

	"github.com/matheus3301/evowpp/internal/bus"
	"go.uber.org/zap"
)

// Level is the tone of a notice.
type Level int

const (
	Info Level = iota
	Positive
	Negative
)

func (l Level) String() string {
	switch l {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "info"
	}
}

// Notice is a single fire-and-forget message.
type Notice struct {
	Level Level
	Text  string
	At    time.Time
}

// Sink receives notices. Implementations must not block.
type Sink interface {
	Notify(n Notice)
}

// Multi fans a notice out to several sinks in order.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// BusSink publishes notices as notify.notice events.
type BusSink struct {
	Bus *bus.Bus
}

// Notify implements Sink.
func (s BusSink) Notify(n Notice) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(bus.Event{Kind: bus.KindNotice, Timestamp: n.At, Payload: n})
}

// LogSink writes notices to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

// Notify implements Sink.
func (s LogSink) Notify(n Notice) {
	if s.Logger == nil {
		return
	}
	fields := []zap.Field{zap.Stringer("level", n.Level), zap.String("text", n.Text)}
	if n.Level == Negative {
		s.Logger.Warn("notice", fields...)
		return
	}
	s.Logger.Info("notice", fields...)
}

// Func adapts a function to Sink.
type Func func(Notice)

// Notify implements Sink.
func (f Func) Notify(n Notice) { f(n) }
