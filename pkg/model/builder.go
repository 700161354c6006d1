package model

import (
	"github.com/goliatone/go-biforms/internal/model"
)

// Builder converts node properties into form fields.
type Builder interface {
	Build(props map[string]Property) (Form, error)
	BuildField(key string, prop Property) (Field, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler         func(string) string
	order           []string
	hideDiagnostics bool
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithFieldOrder keeps the listed property keys first, in the given order.
func WithFieldOrder(keys ...string) BuilderOption {
	return func(opts *builderOptions) {
		opts.order = append(opts.order, keys...)
	}
}

// WithoutDiagnostics builds expression fields with diagnostics disabled.
func WithoutDiagnostics() BuilderOption {
	return func(opts *builderOptions) {
		opts.hideDiagnostics = true
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	return model.New(model.Options{
		Labeler:         cfg.labeler,
		Order:           cfg.order,
		HideDiagnostics: cfg.hideDiagnostics,
	})
}

// BuildFields builds the fields of props with a builder configured by
// options.
func BuildFields(props map[string]Property, options ...BuilderOption) ([]Field, error) {
	form, err := NewBuilder(options...).Build(props)
	if err != nil {
		return nil, err
	}
	return form.Fields, nil
}
