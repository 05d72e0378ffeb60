package bridge

import (
	"github.com/Rhishavhere/codeblink/internal/event"
	"github.com/Rhishavhere/codeblink/internal/logging"
)

// Option configures a Surface.
type Option func(*config)

type config struct {
	bus    *event.Bus
	logger *logging.Logger
	notify func(TerminalClosed)
}

// WithBus publishes launch completions on bus.
func WithBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}

// WithLogger sets the logger for the bridge.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTerminalClosed registers a direct callback for launch completions.
func WithTerminalClosed(fn func(TerminalClosed)) Option {
	return func(c *config) {
		c.notify = fn
	}
}
