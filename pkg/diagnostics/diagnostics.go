// Package diagnostics fetches expression diagnostics from the language
// service and cleans them up for display.
package diagnostics

import (
	"context"
	"strings"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/debounce"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
)

// unsupportedPrefixes mark diagnostics the form cannot act on.
var unsupportedPrefixes = []string{"unknown type", "undefined module"}

// Service is the subset of the language service the fetcher calls.
type Service interface {
	ExpressionDiagnostics(ctx context.Context, req lsclient.DiagnosticsRequest) (lsclient.DiagnosticsResponse, error)
}

// Filter post-processes diagnostics before they are published.
type Filter func([]protocol.Diagnostic) []protocol.Diagnostic

// Query describes the expression to check.
type Query struct {
	Key             string
	Expression      string
	ShowDiagnostics bool
	Property        *model.Property
	Codedata        *model.Codedata
}

// Result carries the diagnostics of one field.
type Result struct {
	Key         string                `json:"key"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

// Fetcher asks the service for diagnostics of one form's expressions.
type Fetcher struct {
	svc       Service
	filePath  string
	anchor    *expression.Anchor
	logger    *zap.Logger
	filter    Filter
	delay     time.Duration
	debouncer *debounce.Debouncer
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithAnchor shares the target range and import offset of a form.
func WithAnchor(anchor *expression.Anchor) Option {
	return func(f *Fetcher) {
		if anchor != nil {
			f.anchor = anchor
		}
	}
}

// WithFilter installs a filter applied after the built-in clean up.
func WithFilter(filter Filter) Option {
	return func(f *Fetcher) {
		f.filter = filter
	}
}

// WithDelay overrides the debounce delay of Request.
func WithDelay(delay time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = delay
	}
}

// NewFetcher returns a fetcher for filePath.
func NewFetcher(svc Service, filePath string, opts ...Option) *Fetcher {
	f := &Fetcher{
		svc:      svc,
		filePath: filePath,
		anchor:   expression.NewAnchor(nil),
		logger:   zap.NewNop(),
		delay:    debounce.DefaultDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.debouncer = debounce.New(f.delay)
	return f
}

// Fetch returns the diagnostics for q. Hidden diagnostics and service
// failures both yield an empty result.
func (f *Fetcher) Fetch(ctx context.Context, q Query) Result {
	result := Result{Key: q.Key, Diagnostics: []protocol.Diagnostic{}}
	if !q.ShowDiagnostics {
		return result
	}

	resp, err := f.svc.ExpressionDiagnostics(ctx, lsclient.DiagnosticsRequest{
		FilePath: f.filePath,
		Context: lsclient.ExpressionContext{
			Expression: q.Expression,
			StartLine:  f.anchor.StartLine(),
			LineOffset: 0,
			Offset:     0,
			Codedata:   q.Codedata,
			Property:   q.Property,
		},
	})
	if err != nil {
		f.logger.Warn("diagnostics fetch failed",
			zap.String("file", f.filePath),
			zap.String("field", q.Key),
			zap.Error(err),
		)
		return result
	}

	diags := FilterUnsupported(RemoveDuplicates(resp.Diagnostics))
	if f.filter != nil {
		diags = f.filter(diags)
	}
	if diags != nil {
		result.Diagnostics = diags
	}
	return result
}

// Request schedules a debounced Fetch and hands the result to sink.
func (f *Fetcher) Request(ctx context.Context, q Query, sink func(Result)) {
	f.debouncer.Schedule(func() {
		res := f.Fetch(ctx, q)
		if sink != nil {
			sink(res)
		}
	})
}

// Flush runs a pending Request immediately.
func (f *Fetcher) Flush() bool {
	return f.debouncer.Flush()
}

// Cancel drops a pending Request.
func (f *Fetcher) Cancel() {
	f.debouncer.Cancel()
}

type diagnosticKey struct {
	start, end protocol.Position
	message    string
}

// RemoveDuplicates keeps the first diagnostic for each message and range.
func RemoveDuplicates(diags []protocol.Diagnostic) []protocol.Diagnostic {
	seen := make(map[diagnosticKey]struct{}, len(diags))
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		key := diagnosticKey{start: d.Range.Start, end: d.Range.End, message: d.Message}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

// FilterUnsupported drops diagnostics about unknown types and undefined
// modules.
func FilterUnsupported(diags []protocol.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if unsupported(d.Message) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func unsupported(message string) bool {
	for _, prefix := range unsupportedPrefixes {
		if strings.HasPrefix(message, prefix) {
			return true
		}
	}
	return false
}
