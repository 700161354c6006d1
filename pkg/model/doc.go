// Package model defines the form field variants built from language service
// node properties. Each property's valueType selects one variant
// (IdentifierField, ExpressionField, TypeField, ParamManagerField,
// SelectField, FlagField or TextField) that carries only the attributes valid
// for that kind. Shared attributes live on FieldBase, reachable through
// Field.Base(). Builders reside in internal/model but return the types
// defined here.
package model
