package tui

import (
	"context"

	"github.com/goliatone/go-biforms/pkg/completion"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional message prefixes.
type Theme struct {
	InfoPrefix       string
	ErrorPrefix      string
	DiagnosticPrefix string
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Suggester supplies completions while the user types into an expression,
// identifier or type field. form.Instance implements it.
type Suggester interface {
	Suggest(ctx context.Context, fieldKey, text string) []completion.Item
}

// SuggesterFunc adapts a function into a Suggester.
type SuggesterFunc func(ctx context.Context, fieldKey, text string) []completion.Item

// Suggest calls f.
func (f SuggesterFunc) Suggest(ctx context.Context, fieldKey, text string) []completion.Item {
	return f(ctx, fieldKey, text)
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSuggester enables live suggestions. Without one, the completions passed
// in RenderOptions are filtered locally.
func WithSuggester(s Suggester) Option {
	return func(r *Renderer) {
		r.suggester = s
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
