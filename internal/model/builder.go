package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Builder converts node properties into form fields.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	opts.Order = append([]string(nil), options.Order...)
	opts.HideDiagnostics = options.HideDiagnostics
	return &Builder{opts: opts}
}

// Build transforms the properties of one node into a Form. Fields follow the
// configured order, then lexical key order.
func (b *Builder) Build(props map[string]Property) (Form, error) {
	if err := validateProperties(props); err != nil {
		return Form{}, err
	}

	fields, err := b.fieldsFromProperties(props)
	if err != nil {
		return Form{}, err
	}
	return Form{Fields: fields}, nil
}

// BuildField converts a single property.
func (b *Builder) BuildField(key string, prop Property) (Field, error) {
	if key == "" {
		return nil, errPropertyKeyEmpty
	}
	if err := validateProperty(prop); err != nil {
		return nil, fmt.Errorf("model builder: property %q: %w", key, err)
	}
	return b.fieldFromProperty(key, prop)
}

func (b *Builder) fieldsFromProperties(props map[string]Property) ([]Field, error) {
	fields := make([]Field, 0, len(props))
	for _, key := range b.orderedKeys(props) {
		field, err := b.fieldFromProperty(key, props[key])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func (b *Builder) orderedKeys(props map[string]Property) []string {
	keys := make([]string, 0, len(props))
	seen := make(map[string]struct{}, len(props))
	for _, key := range b.opts.Order {
		if _, ok := props[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var rest []string
	for key := range props {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func (b *Builder) fieldFromProperty(key string, prop Property) (Field, error) {
	base := b.baseFromProperty(key, prop)

	if len(prop.AdvanceProperties) > 0 {
		advanced, err := b.fieldsFromProperties(prop.AdvanceProperties)
		if err != nil {
			return nil, fmt.Errorf("model builder: advanced properties of %q: %w", key, err)
		}
		base.AdvanceFields = advanced
	}

	switch prop.ValueType {
	case FieldKindIdentifier:
		return &IdentifierField{FieldBase: base}, nil
	case FieldKindExpression, FieldKindLVExpression, FieldKindActionOrExpression:
		field := &ExpressionField{
			FieldBase:       base,
			ExprKind:        prop.ValueType,
			TypeConstraint:  constraintString(prop.ValueTypeConstraint),
			Imports:         copyImports(prop.Imports),
			ShowDiagnostics: !b.opts.HideDiagnostics,
		}
		if prop.Diagnostics != nil && prop.Diagnostics.HasDiagnostics {
			field.Diagnostics = append(field.Diagnostics, prop.Diagnostics.Diagnostics...)
		}
		return field, nil
	case FieldKindType:
		return &TypeField{FieldBase: base, TypeConstraint: constraintString(prop.ValueTypeConstraint)}, nil
	case FieldKindParamManager:
		return b.paramManager(base, prop)
	case FieldKindSingleSelect, FieldKindMultipleSelect:
		return &SelectField{
			FieldBase: base,
			Items:     constraintItems(prop.ValueTypeConstraint),
			Multiple:  prop.ValueType == FieldKindMultipleSelect,
		}, nil
	case FieldKindFlag:
		return &FlagField{FieldBase: base}, nil
	default:
		return &TextField{FieldBase: base, RawKind: prop.ValueType}, nil
	}
}

func (b *Builder) baseFromProperty(key string, prop Property) FieldBase {
	label := strings.TrimSpace(prop.Metadata.Label)
	if label == "" {
		label = b.opts.Labeler(key)
	}
	propCopy := prop
	return FieldBase{
		Key:           key,
		Label:         label,
		Documentation: prop.Metadata.Description,
		Placeholder:   prop.Placeholder,
		Optional:      prop.Optional,
		Advanced:      prop.Advanced,
		Editable:      prop.Editable,
		Hidden:        prop.Hidden,
		Value:         prop.Value,
		DefaultValue:  prop.DefaultValue,
		LineRange:     prop.LineRange,
		Codedata:      prop.Codedata,
		Property:      &propCopy,
	}
}

type paramManagerConstraint struct {
	ParamValues []struct {
		ID         int            `json:"id"`
		Key        string         `json:"key"`
		Value      string         `json:"value"`
		Icon       string         `json:"icon"`
		FormValues map[string]any `json:"formValues"`
	} `json:"paramValues"`
	FormFields map[string]Property `json:"formFields"`
}

func (b *Builder) paramManager(base FieldBase, prop Property) (Field, error) {
	var constraint paramManagerConstraint
	if err := remarshal(prop.ValueTypeConstraint, &constraint); err != nil {
		return nil, fmt.Errorf("model builder: param manager %q: %w", base.Key, err)
	}

	field := &ParamManagerField{FieldBase: base}
	if len(constraint.FormFields) > 0 {
		template, err := b.fieldsFromProperties(constraint.FormFields)
		if err != nil {
			return nil, fmt.Errorf("model builder: param manager %q template: %w", base.Key, err)
		}
		field.Template = template
	}

	for _, raw := range constraint.ParamValues {
		param := Param{ID: raw.ID, Key: raw.Key, Value: raw.Value, Icon: raw.Icon}
		if len(constraint.FormFields) > 0 {
			rowProps := make(map[string]Property, len(constraint.FormFields))
			for key, p := range constraint.FormFields {
				if value, ok := raw.FormValues[key]; ok {
					p.Value = value
				}
				rowProps[key] = p
			}
			rowFields, err := b.fieldsFromProperties(rowProps)
			if err != nil {
				return nil, fmt.Errorf("model builder: param manager %q row %d: %w", base.Key, raw.ID, err)
			}
			param.Fields = rowFields
		}
		field.Params = append(field.Params, param)
	}
	return field, nil
}

func remarshal(in any, out any) error {
	if in == nil {
		return nil
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func constraintString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "|")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "|")
	default:
		return ""
	}
}

func constraintItems(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
		return items
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func copyImports(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for alias, module := range in {
		out[alias] = module
	}
	return out
}
