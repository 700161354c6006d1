// Package tui fills forms interactively in a terminal using survey prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
)

// Name is the registry key of the renderer.
const Name = "tui"

// maxSuggestions caps the list shown under an input prompt.
const maxSuggestions = 20

// Renderer implements render.Renderer for terminal sessions. Render prompts
// for every visible editable field and returns the collected values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	suggester         Suggester
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (render.Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme: Theme{
			ErrorPrefix:      "error: ",
			DiagnosticPrefix: "diagnostic: ",
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		return nil, ErrNilDriver
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

type session struct {
	state       *State
	diagnostics map[string][]string
	completions map[string][]completion.Item
}

// Render prompts for each field and serializes the collected values.
func (r *Renderer) Render(ctx context.Context, form model.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNilDriver
	}

	mapped := render.MapErrorPayload(form, opts.Errors)
	s := &session{
		state:       NewState(opts.Values, mapped.Fields),
		diagnostics: render.DiagnosticMessages(opts.Diagnostics),
		completions: opts.Completions,
	}
	seedState(s.state, form.Fields, "")
	for _, message := range mapped.Form {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	if err := r.promptFields(ctx, s, form.Fields, ""); err != nil {
		return nil, err
	}

	values := s.state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

// seedState fills paths the caller did not supply from the field values of
// the form, including parameter rows and advanced fields.
func seedState(state *State, fields []model.Field, prefix string) {
	for _, field := range fields {
		if field == nil {
			continue
		}
		base := field.Base()
		path := joinPath(prefix, base.Key)
		if pm, ok := field.(*model.ParamManagerField); ok {
			for _, param := range pm.Params {
				if param.Key != "" {
					seedState(state, param.Fields, joinPath(path, param.Key))
				}
			}
		} else if _, exists := state.GetValue(path); !exists {
			switch {
			case base.Value != nil:
				_ = state.SetValue(path, base.Value)
			case base.DefaultValue != nil:
				_ = state.SetValue(path, base.DefaultValue)
			}
		}
		seedState(state, base.AdvanceFields, prefix)
	}
}

func (r *Renderer) promptFields(ctx context.Context, s *session, fields []model.Field, prefix string) error {
	for _, field := range fields {
		if field == nil {
			continue
		}
		base := field.Base()
		if base.Hidden || !base.Editable {
			continue
		}
		path := joinPath(prefix, base.Key)
		if err := r.announce(ctx, s, base.Key, path); err != nil {
			return err
		}
		if err := r.promptField(ctx, s, field, path); err != nil {
			return err
		}
		if len(base.AdvanceFields) > 0 {
			edit, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Edit advanced options of %s?", displayLabel(base)),
			})
			if err != nil {
				return err
			}
			if edit {
				if err := r.promptFields(ctx, s, base.AdvanceFields, prefix); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// announce prints pending errors and diagnostics for a field before its
// prompt.
func (r *Renderer) announce(ctx context.Context, s *session, key, path string) error {
	for _, message := range s.state.ErrorsFor(path) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}
	for _, message := range s.diagnostics[key] {
		if err := r.driver.Info(ctx, r.theme.DiagnosticPrefix+message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, s *session, field model.Field, path string) error {
	switch f := field.(type) {
	case *model.FlagField:
		return r.promptFlag(ctx, s, f.Base(), path)
	case *model.SelectField:
		if f.Multiple {
			return r.promptMultiSelect(ctx, s, f, path)
		}
		return r.promptSelect(ctx, s, f, path)
	case *model.ParamManagerField:
		return r.promptParams(ctx, s, f, path)
	case *model.TextField:
		if f.Kind() == model.FieldKindText {
			return r.promptTextArea(ctx, s, f.Base(), path)
		}
		return r.promptInput(ctx, s, f.Base(), path, nil)
	default:
		base := field.Base()
		return r.promptInput(ctx, s, base, path, r.suggestFor(ctx, s, base.Key))
	}
}

func (r *Renderer) promptInput(ctx context.Context, s *session, base *model.FieldBase, path string, suggest func(string) []string) error {
	label := displayLabel(base)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: defaultStringValue(s.state, path),
			Help:    base.Documentation,
			Suggest: suggest,
		})
		if err != nil {
			return err
		}
		if err := validateRequired(base, response); err != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, path, err)); err != nil {
				return err
			}
			continue
		}
		return s.state.SetValue(path, response)
	}
}

func (r *Renderer) promptTextArea(ctx context.Context, s *session, base *model.FieldBase, path string) error {
	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(base),
			Default: defaultStringValue(s.state, path),
			Help:    base.Documentation,
		})
		if err != nil {
			return err
		}
		if err := validateRequired(base, response); err != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, path, err)); err != nil {
				return err
			}
			continue
		}
		return s.state.SetValue(path, response)
	}
}

func (r *Renderer) promptFlag(ctx context.Context, s *session, base *model.FieldBase, path string) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(base),
		Default: defaultBoolValue(s.state, path),
		Help:    base.Documentation,
	})
	if err != nil {
		return err
	}
	return s.state.SetValue(path, resp)
}

func (r *Renderer) promptSelect(ctx context.Context, s *session, field *model.SelectField, path string) error {
	if len(field.Items) == 0 {
		return nil
	}
	current := defaultStringValue(s.state, path)
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(&field.FieldBase),
		Options:      field.Items,
		DefaultIndex: indexOf(field.Items, current),
		Help:         field.Documentation,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(field.Items) {
		return fmt.Errorf("tui: selection out of range for %s", path)
	}
	return s.state.SetValue(path, field.Items[idx])
}

func (r *Renderer) promptMultiSelect(ctx context.Context, s *session, field *model.SelectField, path string) error {
	if len(field.Items) == 0 {
		return nil
	}
	current, _ := s.state.GetValue(path)
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  displayLabel(&field.FieldBase),
		Options:  field.Items,
		Defaults: indicesOf(field.Items, stringSlice(current)),
		Help:     field.Documentation,
	})
	if err != nil {
		return err
	}
	selected := make([]any, 0, len(indices))
	for _, value := range defaultsFromIndices(field.Items, indices) {
		selected = append(selected, value)
	}
	return s.state.SetValue(path, selected)
}

// promptParams walks existing parameters, then offers to add new ones built
// from the field template.
func (r *Renderer) promptParams(ctx context.Context, s *session, field *model.ParamManagerField, path string) error {
	for _, param := range field.Params {
		if param.Key == "" {
			continue
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.InfoPrefix, displayLabel(&field.FieldBase), paramLabel(param))); err != nil {
			return err
		}
		if err := r.promptFields(ctx, s, param.Fields, joinPath(path, param.Key)); err != nil {
			return err
		}
	}
	if len(field.Template) == 0 {
		return nil
	}

	for {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a %s entry?", strings.ToLower(displayLabel(&field.FieldBase))),
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		name, err := r.driver.Input(ctx, InputConfig{
			Message:   "Name",
			Validator: validateParamName,
		})
		if err != nil {
			return err
		}
		if err := r.promptFields(ctx, s, field.Template, joinPath(path, strings.TrimSpace(name))); err != nil {
			return err
		}
	}
}

// suggestFor returns the suggestion callback for an input field, or nil when
// no completions are available.
func (r *Renderer) suggestFor(ctx context.Context, s *session, key string) func(string) []string {
	if r.suggester != nil {
		return func(text string) []string {
			return suggestionValues(r.suggester.Suggest(ctx, key, text))
		}
	}
	items := s.completions[key]
	if len(items) == 0 {
		return nil
	}
	return func(text string) []string {
		return suggestionValues(completion.Filter(items, text))
	}
}

func suggestionValues(items []completion.Item) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		value := item.Value
		if value == "" {
			value = item.Label
		}
		if _, ok := seen[value]; ok || value == "" {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return jsonBytes(values)
	}
}

func displayLabel(base *model.FieldBase) string {
	if base.Label != "" {
		return base.Label
	}
	return base.Key
}

func paramLabel(param model.Param) string {
	if param.Value != "" {
		return param.Value
	}
	return param.Key
}

func validateRequired(base *model.FieldBase, value string) error {
	if base.Optional || strings.TrimSpace(value) != "" {
		return nil
	}
	return errors.New("value is required")
}

func validateParamName(value string) error {
	name := strings.TrimSpace(value)
	if name == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(name, ". ") {
		return errors.New("name must not contain dots or spaces")
	}
	return nil
}

func defaultStringValue(state *State, path string) string {
	value, ok := state.GetValue(path)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func defaultBoolValue(state *State, path string) bool {
	value, ok := state.GetValue(path)
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func joinPath(prefix, key string) string {
	key = strings.TrimSpace(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
