package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/debounce"
	"github.com/goliatone/go-biforms/pkg/diagnostics"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/imports"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
)

var (
	// ErrUnknownField is returned for a field key the form does not have.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrNoSubmitHandler is returned by Submit without WithSubmit.
	ErrNoSubmitHandler = errors.New("form: no submit handler configured")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("form: instance closed")
)

const validateConcurrency = 4

// Instance is one open form bound to a source file.
type Instance struct {
	client   lsclient.Client
	filePath string
	form     model.Form
	logger   *zap.Logger

	delay             time.Duration
	dataMapper        bool
	typesCacheSize    int
	diagnosticsFilter diagnostics.Filter
	codedata          *model.Codedata
	submit            SubmitFunc
	onCompletions     func([]completion.Item)
	onTypes           func([]completion.Item)
	onTheme           func(lsclient.ThemeKind)
	decorators        []model.Decorator

	anchor  *expression.Anchor
	engine  *completion.Engine
	types   *completion.TypeCache
	typesDb *debounce.Debouncer
	fetcher *diagnostics.Fetcher
	imports *imports.Table

	mu            sync.Mutex
	filteredTypes []completion.Item
	typesGen      uint64
	diagnostics   map[string][]protocol.Diagnostic
	unsubscribe   []func()
	opened        bool
	closed        bool

	theme  atomic.Int32
	saving atomic.Int32
}

// New prepares an instance for form. The target line range of the form
// anchors every request; imports already recorded on fields seed the import
// table.
func New(client lsclient.Client, filePath string, form model.Form, opts ...Option) (*Instance, error) {
	if client == nil {
		return nil, errors.New("form: client is required")
	}
	i := &Instance{
		client:      client,
		filePath:    lsclient.NormalizePath(filePath),
		form:        form,
		logger:      zap.NewNop(),
		delay:       debounce.DefaultDelay,
		diagnostics: make(map[string][]protocol.Diagnostic),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	if err := model.Apply(&i.form, i.decorators...); err != nil {
		return nil, fmt.Errorf("form: decorate: %w", err)
	}
	i.theme.Store(int32(lsclient.ThemeLight))

	i.anchor = expression.NewAnchor(form.TargetLineRange)
	engineOpts := []completion.Option{
		completion.WithLogger(i.logger),
		completion.WithDelay(i.delay),
		completion.WithAnchor(i.anchor),
		completion.OnUpdate(i.onCompletions),
	}
	if i.dataMapper {
		engineOpts = append(engineOpts, completion.WithDataMapper())
	}
	i.engine = completion.NewEngine(client, i.filePath, engineOpts...)

	types, err := completion.NewTypeCache(client, i.filePath, i.anchor, i.typesCacheSize)
	if err != nil {
		return nil, err
	}
	i.types = types
	i.typesDb = debounce.New(i.delay)

	i.fetcher = diagnostics.NewFetcher(client, i.filePath,
		diagnostics.WithLogger(i.logger),
		diagnostics.WithAnchor(i.anchor),
		diagnostics.WithFilter(i.diagnosticsFilter),
		diagnostics.WithDelay(i.delay),
	)
	i.imports = imports.FromFields(i.form.Fields)
	return i, nil
}

// Open announces the form to the service and subscribes to host
// notifications. Calling Open twice is a no-op.
func (i *Instance) Open(ctx context.Context) error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return ErrClosed
	}
	if i.opened {
		i.mu.Unlock()
		return nil
	}
	i.opened = true
	i.unsubscribe = append(i.unsubscribe,
		i.client.OnThemeChanged(i.handleTheme),
		i.client.OnProjectContentUpdated(i.handleProjectUpdate),
	)
	i.mu.Unlock()

	if err := i.client.FormDidOpen(ctx, lsclient.FormDidOpenParams{FilePath: i.filePath}); err != nil {
		return fmt.Errorf("form: open: %w", err)
	}
	i.logger.Debug("form opened", zap.String("file", i.filePath))
	return nil
}

// Close drops pending work, unsubscribes and tells the service the form is
// gone. Further calls return ErrClosed.
func (i *Instance) Close(ctx context.Context) error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil
	}
	i.closed = true
	unsubscribe := i.unsubscribe
	i.unsubscribe = nil
	i.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	i.CancelCompletions()
	i.fetcher.Cancel()

	if err := i.client.FormDidClose(ctx, lsclient.FormDidCloseParams{FilePath: i.filePath}); err != nil {
		return fmt.Errorf("form: close: %w", err)
	}
	i.logger.Debug("form closed", zap.String("file", i.filePath))
	return nil
}

// Form returns the decorated form.
func (i *Instance) Form() model.Form {
	return i.form
}

// FilePath returns the normalised file path the form edits.
func (i *Instance) FilePath() string {
	return i.filePath
}

// Imports exposes the import table.
func (i *Instance) Imports() *imports.Table {
	return i.imports
}

// Anchor exposes the shared target range and import offset.
func (i *Instance) Anchor() *expression.Anchor {
	return i.anchor
}

// Theme reports the last theme the host announced.
func (i *Instance) Theme() lsclient.ThemeKind {
	return lsclient.ThemeKind(i.theme.Load())
}

// Saving reports whether Submit is running.
func (i *Instance) Saving() bool {
	return i.saving.Load() > 0
}

// CompletionQuery is the editor state of one completion request.
type CompletionQuery struct {
	FieldKey string
	Text     string
	Offset   int
	Trigger  string
}

// RetrieveCompletions schedules a completion fetch for a field. Results are
// delivered through OnCompletions and Completions.
func (i *Instance) RetrieveCompletions(ctx context.Context, q CompletionQuery) error {
	if i.isClosed() {
		return ErrClosed
	}
	prop, err := i.property(q.FieldKey)
	if err != nil {
		return err
	}
	i.engine.Retrieve(ctx, completion.Query{
		Text:     q.Text,
		Offset:   q.Offset,
		Property: prop,
		Trigger:  q.Trigger,
	})
	return nil
}

// Suggest fetches completions for text with the cursor at its end, bypassing
// the debouncer. Type fields are answered from the visible types list. Errors
// are logged and yield no suggestions.
func (i *Instance) Suggest(ctx context.Context, fieldKey, text string) []completion.Item {
	if i.isClosed() {
		return nil
	}
	field, ok := i.form.Field(fieldKey)
	if !ok {
		return nil
	}
	if typeField, ok := field.(*model.TypeField); ok {
		items, err := i.VisibleTypes(ctx, completion.TypesQuery{
			FieldKey:       fieldKey,
			Text:           text,
			Cursor:         len(text),
			TypeConstraint: typeField.TypeConstraint,
		})
		if err != nil {
			i.logger.Debug("type suggestions failed", zap.String("field", fieldKey), zap.Error(err))
			return nil
		}
		return items
	}

	prop, err := i.property(fieldKey)
	if err != nil {
		return nil
	}
	items, err := i.engine.Fetch(ctx, completion.Query{
		Text:     text,
		Offset:   len(text),
		Property: prop,
	})
	if err != nil {
		i.logger.Debug("suggestions failed", zap.String("field", fieldKey), zap.Error(err))
		return nil
	}
	return items
}

// Completions returns the last published completion list.
func (i *Instance) Completions() []completion.Item {
	return i.engine.Completions()
}

// CancelCompletions clears completions and the filtered types list. Pending
// and in-flight visible types retrievals are dropped.
func (i *Instance) CancelCompletions() {
	i.engine.Cancel()
	i.typesDb.Cancel()
	i.mu.Lock()
	i.typesGen++
	i.filteredTypes = nil
	i.mu.Unlock()
}

// VisibleTypes returns the types visible to a field filtered by the text
// before the cursor.
func (i *Instance) VisibleTypes(ctx context.Context, q completion.TypesQuery) ([]completion.Item, error) {
	if i.isClosed() {
		return nil, ErrClosed
	}
	i.mu.Lock()
	i.typesGen++
	gen := i.typesGen
	i.mu.Unlock()
	return i.visibleTypes(ctx, q, gen)
}

// RetrieveVisibleTypes schedules a debounced VisibleTypes call. Results are
// delivered through OnVisibleTypes and FilteredTypes; failures are logged and
// publish an empty list.
func (i *Instance) RetrieveVisibleTypes(ctx context.Context, q completion.TypesQuery) error {
	if i.isClosed() {
		return ErrClosed
	}
	i.mu.Lock()
	i.typesGen++
	gen := i.typesGen
	i.mu.Unlock()

	i.typesDb.Schedule(func() {
		items, err := i.visibleTypes(ctx, q, gen)
		switch {
		case errors.Is(err, completion.ErrStale):
			i.logger.Debug("visible types discarded", zap.String("field", q.FieldKey))
			return
		case err != nil:
			i.logger.Error("visible types failed", zap.String("field", q.FieldKey), zap.Error(err))
			items = nil
			i.mu.Lock()
			i.filteredTypes = nil
			i.mu.Unlock()
		}
		if i.onTypes != nil {
			i.onTypes(items)
		}
	})
	return nil
}

// FlushVisibleTypes runs a pending visible types retrieval now.
func (i *Instance) FlushVisibleTypes() bool {
	return i.typesDb.Flush()
}

func (i *Instance) visibleTypes(ctx context.Context, q completion.TypesQuery, gen uint64) ([]completion.Item, error) {
	items, err := i.types.Types(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("form: visible types: %w", err)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.typesGen {
		return nil, completion.ErrStale
	}
	i.filteredTypes = items
	return items, nil
}

// FilteredTypes returns the last VisibleTypes result.
func (i *Instance) FilteredTypes() []completion.Item {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]completion.Item(nil), i.filteredTypes...)
}

// SignatureHelp describes the call the cursor of a field sits in.
func (i *Instance) SignatureHelp(ctx context.Context, fieldKey, text string, cursor int) (*completion.Signature, error) {
	if i.isClosed() {
		return nil, ErrClosed
	}
	field, ok := i.form.Field(fieldKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, fieldKey)
	}
	return completion.FetchSignature(ctx, i.client, completion.SignatureQuery{
		FilePath: i.filePath,
		Anchor:   i.anchor,
		Text:     text,
		Cursor:   cursor,
		Property: field.Base().Property,
		Codedata: i.codedataFor(field),
	})
}

// SelectCompletion applies the side effects of picking item in a field. An
// item that carries an import statement adds it to the file, moves the
// anchor by the inserted offset and records the import on the field.
func (i *Instance) SelectCompletion(ctx context.Context, fieldKey string, item completion.Item) error {
	defer i.CancelCompletions()

	edit, ok := item.ImportEdit()
	if !ok {
		return nil
	}
	resp, err := i.client.UpdateImports(ctx, lsclient.UpdateImportsRequest{
		FilePath:        i.filePath,
		ImportStatement: edit.NewText,
	})
	if err != nil {
		return fmt.Errorf("form: update imports: %w", err)
	}
	i.anchor.Add(resp.ImportStatementOffset)
	if resp.Prefix != "" && resp.ModuleID != "" {
		i.imports.Merge(fieldKey, imports.Imports{resp.Prefix: resp.ModuleID})
	}
	i.logger.Debug("import added",
		zap.String("field", fieldKey),
		zap.String("prefix", resp.Prefix),
		zap.String("module", resp.ModuleID),
		zap.Int("offset", resp.ImportStatementOffset),
	)
	return nil
}

// DiagnosticsQuery asks for the diagnostics of one field's expression.
type DiagnosticsQuery struct {
	FieldKey        string
	Expression      string
	ShowDiagnostics bool
}

// RequestDiagnostics schedules a debounced diagnostics fetch. The result is
// stored on the instance and handed to sink when it is not nil.
func (i *Instance) RequestDiagnostics(ctx context.Context, q DiagnosticsQuery, sink func(diagnostics.Result)) error {
	if i.isClosed() {
		return ErrClosed
	}
	dq, err := i.diagnosticsQuery(q)
	if err != nil {
		return err
	}
	i.fetcher.Request(ctx, dq, func(res diagnostics.Result) {
		i.storeDiagnostics(res)
		if sink != nil {
			sink(res)
		}
	})
	return nil
}

// FlushDiagnostics runs a pending diagnostics request now.
func (i *Instance) FlushDiagnostics() bool {
	return i.fetcher.Flush()
}

// Diagnostics returns the diagnostics last stored for a field.
func (i *Instance) Diagnostics(fieldKey string) []protocol.Diagnostic {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]protocol.Diagnostic(nil), i.diagnostics[fieldKey]...)
}

// ValidateAll fetches diagnostics for every expression field that shows them,
// concurrently, and returns the non-empty results keyed by field.
func (i *Instance) ValidateAll(ctx context.Context) (map[string][]protocol.Diagnostic, error) {
	if i.isClosed() {
		return nil, ErrClosed
	}
	var (
		mu  sync.Mutex
		out = make(map[string][]protocol.Diagnostic)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)
	for _, field := range i.form.Fields {
		expr, ok := field.(*model.ExpressionField)
		if !ok || !expr.ShowDiagnostics {
			continue
		}
		q, err := i.diagnosticsQuery(DiagnosticsQuery{
			FieldKey:        expr.Key,
			Expression:      stringValue(expr.Value),
			ShowDiagnostics: true,
		})
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := i.fetcher.Fetch(gctx, q)
			i.storeDiagnostics(res)
			if len(res.Diagnostics) > 0 {
				mu.Lock()
				out[res.Key] = res.Diagnostics
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("form: validate: %w", err)
	}
	return out, nil
}

// Submit attaches the import table to values and hands them to the submit
// handler. Nil values submit the current field values.
func (i *Instance) Submit(ctx context.Context, values map[string]any) error {
	if i.submit == nil {
		return ErrNoSubmitHandler
	}
	if values == nil {
		values = i.form.Values()
	}
	payload := i.imports.Attach(values)

	i.saving.Add(1)
	defer i.saving.Add(-1)

	if err := i.submit(ctx, payload); err != nil {
		i.logger.Error("form submit failed", zap.String("file", i.filePath), zap.Error(err))
		return fmt.Errorf("form: submit: %w", err)
	}
	return nil
}

func (i *Instance) handleTheme(kind lsclient.ThemeKind) {
	i.theme.Store(int32(kind))
	i.logger.Debug("theme changed", zap.Stringer("theme", kind))
	if i.onTheme != nil {
		i.onTheme(kind)
	}
}

func (i *Instance) handleProjectUpdate(updated bool) {
	if !updated {
		return
	}
	i.types.Purge()
	i.logger.Debug("project content updated, types cache purged", zap.String("file", i.filePath))
}

func (i *Instance) property(fieldKey string) (*model.Property, error) {
	field, ok := i.form.Field(fieldKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, fieldKey)
	}
	return field.Base().Property, nil
}

func (i *Instance) diagnosticsQuery(q DiagnosticsQuery) (diagnostics.Query, error) {
	field, ok := i.form.Field(q.FieldKey)
	if !ok {
		return diagnostics.Query{}, fmt.Errorf("%w: %s", ErrUnknownField, q.FieldKey)
	}
	return diagnostics.Query{
		Key:             q.FieldKey,
		Expression:      q.Expression,
		ShowDiagnostics: q.ShowDiagnostics,
		Property:        field.Base().Property,
		Codedata:        i.codedataFor(field),
	}, nil
}

func (i *Instance) codedataFor(field model.Field) *model.Codedata {
	if cd := field.Base().Codedata; cd != nil {
		return cd
	}
	return i.codedata
}

func (i *Instance) storeDiagnostics(res diagnostics.Result) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.diagnostics[res.Key] = res.Diagnostics
}

func (i *Instance) isClosed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
