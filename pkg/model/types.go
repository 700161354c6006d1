package model

import internalmodel "github.com/goliatone/go-biforms/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindIdentifier         = internalmodel.FieldKindIdentifier
	FieldKindExpression         = internalmodel.FieldKindExpression
	FieldKindLVExpression       = internalmodel.FieldKindLVExpression
	FieldKindActionOrExpression = internalmodel.FieldKindActionOrExpression
	FieldKindType               = internalmodel.FieldKindType
	FieldKindParamManager       = internalmodel.FieldKindParamManager
	FieldKindSingleSelect       = internalmodel.FieldKindSingleSelect
	FieldKindMultipleSelect     = internalmodel.FieldKindMultipleSelect
	FieldKindFlag               = internalmodel.FieldKindFlag
	FieldKindString             = internalmodel.FieldKindString
	FieldKindText               = internalmodel.FieldKindText
)

type (
	Codedata            = internalmodel.Codedata
	Property            = internalmodel.Property
	PropertyMetadata    = internalmodel.PropertyMetadata
	PropertyDiagnostics = internalmodel.PropertyDiagnostics
	Field               = internalmodel.Field
	FieldBase           = internalmodel.FieldBase
	IdentifierField     = internalmodel.IdentifierField
	ExpressionField     = internalmodel.ExpressionField
	TypeField           = internalmodel.TypeField
	ParamManagerField   = internalmodel.ParamManagerField
	Param               = internalmodel.Param
	SelectField         = internalmodel.SelectField
	FlagField           = internalmodel.FlagField
	TextField           = internalmodel.TextField
	Form                = internalmodel.Form
)

// DefaultLabeler exposes the label generator used when a property carries no
// label of its own.
func DefaultLabeler(key string) string {
	return internalmodel.DefaultLabeler(key)
}
