package model

import (
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/expression"
)

// FieldKind discriminates the form field variants. Values match the
// valueType strings emitted by the language service.
type FieldKind string

const (
	FieldKindIdentifier         FieldKind = "IDENTIFIER"
	FieldKindExpression         FieldKind = "EXPRESSION"
	FieldKindLVExpression       FieldKind = "LV_EXPRESSION"
	FieldKindActionOrExpression FieldKind = "ACTION_OR_EXPRESSION"
	FieldKindType               FieldKind = "TYPE"
	FieldKindParamManager       FieldKind = "PARAM_MANAGER"
	FieldKindSingleSelect       FieldKind = "SINGLE_SELECT"
	FieldKindMultipleSelect     FieldKind = "MULTIPLE_SELECT"
	FieldKindFlag               FieldKind = "FLAG"
	FieldKindString             FieldKind = "STRING"
	FieldKindText               FieldKind = "TEXT"
)

// IsExpression reports whether the kind is edited with the expression editor
// and therefore takes part in completions and diagnostics.
func (k FieldKind) IsExpression() bool {
	switch k {
	case FieldKindExpression, FieldKindLVExpression, FieldKindActionOrExpression:
		return true
	default:
		return false
	}
}

// Codedata identifies the source node a property belongs to.
type Codedata struct {
	Node         string                `json:"node,omitempty"`
	Org          string                `json:"org,omitempty"`
	Module       string                `json:"module,omitempty"`
	Object       string                `json:"object,omitempty"`
	Symbol       string                `json:"symbol,omitempty"`
	ParentSymbol string                `json:"parentSymbol,omitempty"`
	ResourcePath string                `json:"resourcePath,omitempty"`
	ID           string                `json:"id,omitempty"`
	Kind         string                `json:"kind,omitempty"`
	SourceCode   string                `json:"sourceCode,omitempty"`
	IsNew        bool                  `json:"isNew,omitempty"`
	LineRange    *expression.LineRange `json:"lineRange,omitempty"`
}

// PropertyMetadata carries the human facing text of a property.
type PropertyMetadata struct {
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// PropertyDiagnostics wraps the diagnostics the service attached to a
// property when it produced the node.
type PropertyDiagnostics struct {
	HasDiagnostics bool                  `json:"hasDiagnostics"`
	Diagnostics    []protocol.Diagnostic `json:"diagnostics,omitempty"`
}

// Property is a node property as described by the language service. It is
// the input from which form fields are built and is sent back verbatim as the
// owning property of completion and diagnostics requests.
type Property struct {
	Metadata            PropertyMetadata      `json:"metadata"`
	ValueType           FieldKind             `json:"valueType"`
	ValueTypeConstraint any                   `json:"valueTypeConstraint,omitempty"`
	Value               any                   `json:"value,omitempty"`
	Placeholder         string                `json:"placeholder,omitempty"`
	DefaultValue        any                   `json:"defaultValue,omitempty"`
	Optional            bool                  `json:"optional"`
	Editable            bool                  `json:"editable"`
	Advanced            bool                  `json:"advanced,omitempty"`
	Hidden              bool                  `json:"hidden,omitempty"`
	Codedata            *Codedata             `json:"codedata,omitempty"`
	Imports             map[string]string     `json:"imports,omitempty"`
	Diagnostics         *PropertyDiagnostics  `json:"diagnostics,omitempty"`
	LineRange           *expression.LineRange `json:"lineRange,omitempty"`
	AdvanceProperties   map[string]Property   `json:"advanceProperties,omitempty"`
}

// FieldBase holds the attributes every field kind shares.
type FieldBase struct {
	Key           string                `json:"key"`
	Label         string                `json:"label"`
	Documentation string                `json:"documentation,omitempty"`
	Placeholder   string                `json:"placeholder,omitempty"`
	Optional      bool                  `json:"optional"`
	Advanced      bool                  `json:"advanced,omitempty"`
	Editable      bool                  `json:"editable"`
	Hidden        bool                  `json:"hidden,omitempty"`
	Value         any                   `json:"value,omitempty"`
	DefaultValue  any                   `json:"defaultValue,omitempty"`
	LineRange     *expression.LineRange `json:"lineRange,omitempty"`
	Codedata      *Codedata             `json:"codedata,omitempty"`
	// AdvanceFields are built from the property's advanceProperties.
	AdvanceFields []Field   `json:"-"`
	Property      *Property `json:"-"`
}

// Field is implemented by every field variant. The unexported method keeps
// the set of variants closed to this package.
type Field interface {
	Kind() FieldKind
	Base() *FieldBase
	isField()
}

// IdentifierField names a variable, function or other symbol.
type IdentifierField struct {
	FieldBase
}

// ExpressionField is edited with completions and validated with diagnostics.
type ExpressionField struct {
	FieldBase
	ExprKind        FieldKind             `json:"exprKind,omitempty"`
	TypeConstraint  string                `json:"typeConstraint,omitempty"`
	Imports         map[string]string     `json:"imports,omitempty"`
	Diagnostics     []protocol.Diagnostic `json:"diagnostics,omitempty"`
	ShowDiagnostics bool                  `json:"showDiagnostics"`
}

// TypeField selects a type, helped by the visible types list.
type TypeField struct {
	FieldBase
	TypeConstraint string `json:"typeConstraint,omitempty"`
}

// Param is one row of a parameter manager.
type Param struct {
	ID     int     `json:"id"`
	Key    string  `json:"key"`
	Value  string  `json:"value"`
	Icon   string  `json:"icon,omitempty"`
	Fields []Field `json:"-"`
}

// ParamManagerField edits a list of parameters, each described by its own
// nested fields.
type ParamManagerField struct {
	FieldBase
	Params   []Param `json:"params,omitempty"`
	Template []Field `json:"-"`
}

// SelectField offers a fixed set of items.
type SelectField struct {
	FieldBase
	Items    []string `json:"items"`
	Multiple bool     `json:"multiple,omitempty"`
}

// FlagField is a boolean toggle.
type FlagField struct {
	FieldBase
}

// TextField is a plain string input. Unknown kinds fall back to it.
type TextField struct {
	FieldBase
	RawKind FieldKind `json:"rawKind,omitempty"`
}

func (f *IdentifierField) Kind() FieldKind   { return FieldKindIdentifier }
func (f *TypeField) Kind() FieldKind         { return FieldKindType }
func (f *ParamManagerField) Kind() FieldKind { return FieldKindParamManager }
func (f *FlagField) Kind() FieldKind         { return FieldKindFlag }

func (f *ExpressionField) Kind() FieldKind {
	if f.ExprKind != "" {
		return f.ExprKind
	}
	return FieldKindExpression
}

func (f *SelectField) Kind() FieldKind {
	if f.Multiple {
		return FieldKindMultipleSelect
	}
	return FieldKindSingleSelect
}

func (f *TextField) Kind() FieldKind {
	if f.RawKind != "" {
		return f.RawKind
	}
	return FieldKindString
}

func (f *IdentifierField) Base() *FieldBase   { return &f.FieldBase }
func (f *ExpressionField) Base() *FieldBase   { return &f.FieldBase }
func (f *TypeField) Base() *FieldBase         { return &f.FieldBase }
func (f *ParamManagerField) Base() *FieldBase { return &f.FieldBase }
func (f *SelectField) Base() *FieldBase       { return &f.FieldBase }
func (f *FlagField) Base() *FieldBase         { return &f.FieldBase }
func (f *TextField) Base() *FieldBase         { return &f.FieldBase }

func (*IdentifierField) isField()   {}
func (*ExpressionField) isField()   {}
func (*TypeField) isField()         {}
func (*ParamManagerField) isField() {}
func (*SelectField) isField()       {}
func (*FlagField) isField()         {}
func (*TextField) isField()         {}

// Form is the ordered set of fields rendered for one node.
type Form struct {
	FilePath        string                `json:"filePath,omitempty"`
	TargetLineRange *expression.LineRange `json:"targetLineRange,omitempty"`
	Fields          []Field               `json:"fields"`
	Metadata        map[string]string     `json:"metadata,omitempty"`
}

// Field returns the field stored under key.
func (f *Form) Field(key string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Base().Key == key {
			return field, true
		}
	}
	return nil, false
}

// Values collects the current value of every field keyed by field key.
func (f *Form) Values() map[string]any {
	values := make(map[string]any, len(f.Fields))
	for _, field := range f.Fields {
		base := field.Base()
		values[base.Key] = base.Value
	}
	return values
}

type fieldEnvelope struct {
	Kind  FieldKind `json:"kind"`
	Field Field     `json:"field"`
}

// MarshalJSON tags each field with its kind so snapshots stay readable.
func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	out := struct {
		alias
		Fields []fieldEnvelope `json:"fields"`
	}{alias: alias(f)}
	out.Fields = make([]fieldEnvelope, 0, len(f.Fields))
	for _, field := range f.Fields {
		out.Fields = append(out.Fields, fieldEnvelope{Kind: field.Kind(), Field: field})
	}
	return json.Marshal(out)
}
