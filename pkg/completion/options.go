package completion

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/expression"
)

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDelay overrides the debounce delay of Retrieve.
func WithDelay(delay time.Duration) Option {
	return func(e *Engine) {
		e.delay = delay
	}
}

// WithAnchor shares the target range and import offset with other
// components of the same form.
func WithAnchor(anchor *expression.Anchor) Option {
	return func(e *Engine) {
		if anchor != nil {
			e.anchor = anchor
		}
	}
}

// WithDataMapper routes requests to the data mapper completion endpoint.
func WithDataMapper() Option {
	return func(e *Engine) {
		e.dataMapper = true
	}
}

// OnUpdate registers the sink that receives every published list.
func OnUpdate(fn func([]Item)) Option {
	return func(e *Engine) {
		e.onUpdate = fn
	}
}
