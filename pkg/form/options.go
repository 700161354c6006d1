package form

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/diagnostics"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
)

// SubmitFunc receives the submitted values, imports included.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Option customises an Instance.
type Option func(*Instance)

// WithLogger sets the logger shared by the instance and its components.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Instance) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithDelay overrides the debounce delay for completions, visible types and
// diagnostics.
func WithDelay(delay time.Duration) Option {
	return func(i *Instance) {
		i.delay = delay
	}
}

// WithDataMapper routes completions to the data mapper endpoint.
func WithDataMapper() Option {
	return func(i *Instance) {
		i.dataMapper = true
	}
}

// WithTypesCacheSize bounds the visible types cache.
func WithTypesCacheSize(size int) Option {
	return func(i *Instance) {
		i.typesCacheSize = size
	}
}

// WithDiagnosticsFilter installs an extra diagnostics filter.
func WithDiagnosticsFilter(filter diagnostics.Filter) Option {
	return func(i *Instance) {
		i.diagnosticsFilter = filter
	}
}

// WithCodedata sets the node codedata sent with diagnostics and signature
// requests when a field carries none.
func WithCodedata(codedata *model.Codedata) Option {
	return func(i *Instance) {
		i.codedata = codedata
	}
}

// WithSubmit installs the handler called by Submit.
func WithSubmit(fn SubmitFunc) Option {
	return func(i *Instance) {
		i.submit = fn
	}
}

// OnCompletions registers a sink for every published completion list.
func OnCompletions(fn func([]completion.Item)) Option {
	return func(i *Instance) {
		i.onCompletions = fn
	}
}

// OnVisibleTypes registers a sink for lists published by RetrieveVisibleTypes.
func OnVisibleTypes(fn func([]completion.Item)) Option {
	return func(i *Instance) {
		i.onTypes = fn
	}
}

// OnThemeChanged registers a callback for host theme changes.
func OnThemeChanged(fn func(lsclient.ThemeKind)) Option {
	return func(i *Instance) {
		i.onTheme = fn
	}
}

// WithDecorators applies model decorators to the form before it is served.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(i *Instance) {
		i.decorators = append(i.decorators, decorators...)
	}
}
