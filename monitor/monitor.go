// Package monitor instruments façade operations with timing and error
// metrics. It is orthogonal to correctness: observers record what happened
// and must never suppress or rewrite the error, which the caller returns
// regardless.
package monitor

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives one completed operation: its name, wall duration, and
// error (nil on success).
type Observer interface {
	Observe(op string, took time.Duration, err error)
}

// Nop discards all observations. Used when monitoring is disabled.
type Nop struct{}

func (Nop) Observe(string, time.Duration, error) {}

// Multi fans observations out to several observers in order.
type Multi []Observer

func (m Multi) Observe(op string, took time.Duration, err error) {
	for _, o := range m {
		o.Observe(op, took, err)
	}
}

// New resolves the process-wide observer once at startup: metrics plus error
// logging when enabled, a no-op otherwise.
func New(enabled bool, log *zap.Logger) Observer {
	if !enabled {
		return Nop{}
	}
	return Multi{Metrics{}, NewLogging(log)}
}
