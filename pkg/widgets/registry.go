package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-biforms/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetCheckbox = "checkbox"
	WidgetParams   = "params"
	WidgetSelect   = "select"
	WidgetTextArea = "textarea"
	WidgetInput    = "input"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects the widget a renderer uses for a field, from per-key
// overrides or registered matchers. Higher priority wins; ties fall back to
// registration order. An empty registry never resolves a widget.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	overrides map[string]string
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Override pins the widget of the field with the given key. An empty widget
// removes the override.
func (r *Registry) Override(fieldKey, widget string) {
	if r == nil || fieldKey == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	widget = strings.TrimSpace(widget)
	if widget == "" {
		delete(r.overrides, fieldKey)
		return
	}
	if r.overrides == nil {
		r.overrides = make(map[string]string)
	}
	r.overrides[fieldKey] = widget
}

// Resolve returns the widget name for a field. Overrides are honoured before
// matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil || field == nil {
		return "", false
	}
	r.mu.RLock()
	if widget, ok := r.overrides[field.Base().Key]; ok {
		r.mu.RUnlock()
		return widget, true
	}
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field model.Field) bool {
		_, ok := field.(*model.FlagField)
		return ok
	})

	r.Register(WidgetParams, 80, func(field model.Field) bool {
		_, ok := field.(*model.ParamManagerField)
		return ok
	})

	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		_, ok := field.(*model.SelectField)
		return ok
	})

	r.Register(WidgetTextArea, 60, func(field model.Field) bool {
		return field.Kind() == model.FieldKindText
	})

	r.Register(WidgetInput, 0, func(model.Field) bool {
		return true
	})
}
