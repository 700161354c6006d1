// Package html renders forms as HTML fragments using pongo2 templates.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
	rendertemplate "github.com/goliatone/go-biforms/pkg/render/template"
	"github.com/goliatone/go-biforms/pkg/render/template/pongo"
	"github.com/goliatone/go-biforms/pkg/widgets"
)

// Name is the registry key of the renderer.
const Name = "html"

// Partial names looked up in theme overrides, e.g. "forms.expression".
const partialPrefix = "forms."

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgets          *widgets.Registry
	logger           *zap.Logger
}

// WithTemplatesFS layers files over the embedded templates.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir layers a directory on disk over the embedded templates.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer replaces the template engine entirely.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgets replaces the registry that picks the control of each field.
// Widgets the templates do not know render as text inputs.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithLogger sets the logger used for partial fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Registry
	logger    *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{logger: zap.NewNop(), widgets: widgets.NewRegistry()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		var engineOpts []pongo.Option
		if cfg.templateFS != nil {
			engineOpts = append(engineOpts, pongo.WithFS(cfg.templateFS))
		}
		engineOpts = append(engineOpts, pongo.WithFS(TemplatesFS()))
		engine, err := pongo.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, widgets: cfg.widgets, logger: cfg.logger}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup. Errors are mapped onto fields with
// render.MapErrorPayload; unmatched ones are listed at the top of the form.
func (r *Renderer) Render(ctx context.Context, form model.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}

	state := &renderState{
		ctx:         ctx,
		renderer:    r,
		options:     options,
		errors:      render.MapErrorPayload(form, options.Errors),
		diagnostics: render.DiagnosticMessages(options.Diagnostics),
		partials:    themePartials(options),
	}
	for _, field := range form.Fields {
		if field == nil {
			continue
		}
		if diags := expressionDiagnostics(field); len(diags) > 0 {
			if _, ok := state.diagnostics[field.Base().Key]; !ok {
				if state.diagnostics == nil {
					state.diagnostics = make(map[string][]string)
				}
				state.diagnostics[field.Base().Key] = diags
			}
		}
	}

	fields, err := state.renderFields(form.Fields, "")
	if err != nil {
		return nil, err
	}

	hidden := render.SortedHiddenFields(append(render.FormHiddenFields(form), options.Hidden...)...)
	hiddenViews := make([]hiddenView, 0, len(hidden))
	for _, h := range hidden {
		hiddenViews = append(hiddenViews, hiddenView{Name: h.Name, Value: h.Value})
	}

	out, err := r.templates.RenderTemplate("form", formView{
		Fields:     fields,
		Hidden:     hiddenViews,
		FormErrors: state.errors.Form,
		Theme:      newThemeView(options),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}
	return []byte(out), nil
}

func themePartials(options render.RenderOptions) map[string]string {
	if options.Theme == nil {
		return nil
	}
	return options.Theme.Partials
}

func expressionDiagnostics(field model.Field) []string {
	expr, ok := field.(*model.ExpressionField)
	if !ok || !expr.ShowDiagnostics || len(expr.Diagnostics) == 0 {
		return nil
	}
	return render.DiagnosticMessages(map[string][]protocol.Diagnostic{expr.Key: expr.Diagnostics})[expr.Key]
}

func joinPath(prefix, key string) string {
	key = strings.TrimSpace(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
