package html

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
)

type formView struct {
	Fields     []string     `json:"fields"`
	Hidden     []hiddenView `json:"hidden"`
	FormErrors []string     `json:"formErrors,omitempty"`
	Theme      themeView    `json:"theme"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type themeView struct {
	Name       string            `json:"name,omitempty"`
	Variant    string            `json:"variant,omitempty"`
	CSSVars    map[string]string `json:"cssVars,omitempty"`
	Stylesheet string            `json:"stylesheet,omitempty"`
}

type itemView struct {
	Value    string `json:"value"`
	Label    string `json:"label,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

type fieldView struct {
	Key           string     `json:"key"`
	Path          string     `json:"path"`
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	Control       string     `json:"control"`
	Label         string     `json:"label"`
	Documentation string     `json:"documentation,omitempty"`
	Placeholder   string     `json:"placeholder,omitempty"`
	Value         string     `json:"value,omitempty"`
	Checked       bool       `json:"checked,omitempty"`
	Multiple      bool       `json:"multiple,omitempty"`
	Optional      bool       `json:"optional"`
	Readonly      bool       `json:"readonly,omitempty"`
	Hidden        bool       `json:"hidden,omitempty"`
	Items         []itemView `json:"items,omitempty"`
	Suggestions   []itemView `json:"suggestions,omitempty"`
	Diagnostics   []string   `json:"diagnostics,omitempty"`
	Errors        []string   `json:"errors,omitempty"`
	Children      string     `json:"children,omitempty"`
	Advanced      string     `json:"advanced,omitempty"`
}

type paramView struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Fields []string `json:"fields"`
}

func newThemeView(options render.RenderOptions) themeView {
	cfg := options.Theme
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		CSSVars: cfg.CSSVars,
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL("stylesheet")
	}
	return view
}

type renderState struct {
	ctx         context.Context
	renderer    *Renderer
	options     render.RenderOptions
	errors      render.ErrorMapping
	diagnostics map[string][]string
	partials    map[string]string
}

func (s *renderState) renderFields(fields []model.Field, prefix string) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == nil {
			continue
		}
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}
		markup, err := s.renderField(field, prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, markup)
	}
	return out, nil
}

func (s *renderState) renderField(field model.Field, prefix string) (string, error) {
	base := field.Base()
	path := joinPath(prefix, base.Key)
	view := fieldView{
		Key:           base.Key,
		Path:          path,
		ID:            "field-" + strings.NewReplacer(".", "-", " ", "-").Replace(path),
		Kind:          string(field.Kind()),
		Label:         base.Label,
		Documentation: SanitizeDocumentation(base.Documentation),
		Placeholder:   base.Placeholder,
		Optional:      base.Optional,
		Readonly:      !base.Editable,
		Hidden:        base.Hidden,
		Errors:        s.errors.Fields[path],
		Diagnostics:   s.diagnostics[base.Key],
	}
	view.Control, _ = s.renderer.widgets.Resolve(field)
	value := s.valueFor(path, base)

	switch f := field.(type) {
	case *model.FlagField:
		view.Checked = truthy(value)
	case *model.SelectField:
		view.Multiple = f.Multiple
		selected := selectedSet(value)
		for _, item := range f.Items {
			_, ok := selected[item]
			view.Items = append(view.Items, itemView{Value: item, Selected: ok})
		}
	case *model.TextField:
		view.Value = stringify(value)
	case *model.ParamManagerField:
		children, err := s.renderParams(f, path)
		if err != nil {
			return "", err
		}
		view.Children = children
	default:
		view.Value = stringify(value)
		view.Suggestions = s.suggestionsFor(base.Key)
	}

	if len(base.AdvanceFields) > 0 {
		advanced, err := s.renderFields(base.AdvanceFields, prefix)
		if err != nil {
			return "", err
		}
		view.Advanced = strings.Join(advanced, "\n")
	}

	return s.execute(field.Kind(), "field", map[string]any{"field": view})
}

func (s *renderState) renderParams(field *model.ParamManagerField, path string) (string, error) {
	var b strings.Builder
	for _, param := range field.Params {
		paramPath := joinPath(path, param.Key)
		fields, err := s.renderFields(param.Fields, paramPath)
		if err != nil {
			return "", err
		}
		label := param.Value
		if label == "" {
			label = param.Key
		}
		markup, err := s.renderer.templates.RenderTemplate("param", map[string]any{
			"param": paramView{Key: param.Key, Label: label, Fields: fields},
		})
		if err != nil {
			return "", fmt.Errorf("html renderer: render param %q: %w", paramPath, err)
		}
		b.WriteString(markup)
	}
	return b.String(), nil
}

// execute renders with the theme partial for kind when one is configured,
// falling back to the default template when the partial fails to load.
func (s *renderState) execute(kind model.FieldKind, fallback string, data map[string]any) (string, error) {
	if name := s.partials[partialPrefix+strings.ToLower(string(kind))]; name != "" {
		out, err := s.renderer.templates.RenderTemplate(name, data)
		if err == nil {
			return out, nil
		}
		s.renderer.logger.Warn("theme partial failed, using default",
			zap.String("partial", name),
			zap.Error(err),
		)
	}
	out, err := s.renderer.templates.RenderTemplate(fallback, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s: %w", strings.ToLower(string(kind)), err)
	}
	return out, nil
}

func (s *renderState) valueFor(path string, base *model.FieldBase) any {
	if value, ok := s.options.Values[path]; ok {
		return value
	}
	if value, ok := s.options.Values[base.Key]; ok {
		return value
	}
	if base.Value != nil {
		return base.Value
	}
	return base.DefaultValue
}

func (s *renderState) suggestionsFor(key string) []itemView {
	items := s.options.Completions[key]
	if len(items) == 0 {
		return nil
	}
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		label := item.Label
		if item.Description != "" {
			label = item.Label + " " + item.Description
		}
		out = append(out, itemView{Value: item.Value, Label: label})
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func selectedSet(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case string:
		if v != "" {
			out[v] = struct{}{}
		}
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	case []any:
		for _, item := range v {
			out[stringify(item)] = struct{}{}
		}
	}
	return out
}
