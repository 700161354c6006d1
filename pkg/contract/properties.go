package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-biforms/pkg/model"
)

// Property keys of a resource form, in display order.
const (
	KeyAccessor   = "accessor"
	KeyPath       = "path"
	KeyParameters = "parameters"
	KeyPayload    = "payload"
	KeyReturnType = "returnType"
)

// FieldOrder lists the property keys in the order a resource form shows them.
var FieldOrder = []string{KeyAccessor, KeyPath, KeyParameters, KeyPayload, KeyReturnType}

var accessors = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// ResourcePath renders the path with parameters as typed segments, e.g.
// "/users/{id}" with an int id becomes "users/[int id]". The root path is ".".
func (r Resource) ResourcePath() string {
	types := make(map[string]string)
	for _, p := range r.Params {
		if p.In == "path" {
			types[p.Name] = p.Type
		}
	}
	trimmed := strings.Trim(r.Path, "/")
	if trimmed == "" {
		return "."
	}
	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := segment[1 : len(segment)-1]
		typ := types[name]
		if typ == "" {
			typ = "string"
		}
		segments[i] = fmt.Sprintf("[%s %s]", typ, name)
	}
	return strings.Join(segments, "/")
}

// ReturnType is the union of the distinct 2xx response types, sorted. It is
// empty when no success response carries a body.
func (r Resource) ReturnType() string {
	seen := make(map[string]struct{})
	var types []string
	for status, typ := range r.Responses {
		if !strings.HasPrefix(status, "2") || typ == "" {
			continue
		}
		if _, ok := seen[typ]; ok {
			continue
		}
		seen[typ] = struct{}{}
		types = append(types, typ)
	}
	sort.Strings(types)
	return strings.Join(types, "|")
}

// Properties describes the resource as node properties for model.BuildFields.
// Path parameters are folded into the path and excluded from the parameter
// manager.
func (r Resource) Properties() map[string]model.Property {
	props := map[string]model.Property{
		KeyAccessor: {
			Metadata:            model.PropertyMetadata{Label: "HTTP Method", Description: "The HTTP method of the resource."},
			ValueType:           model.FieldKindSingleSelect,
			ValueTypeConstraint: append([]string(nil), accessors...),
			Value:               strings.ToLower(r.Method),
			Editable:            true,
		},
		KeyPath: {
			Metadata:  model.PropertyMetadata{Label: "Resource Path", Description: r.Summary},
			ValueType: model.FieldKindString,
			Value:     r.ResourcePath(),
			Editable:  true,
		},
		KeyParameters: {
			Metadata:            model.PropertyMetadata{Label: "Parameters", Description: "Query and header parameters of the resource."},
			ValueType:           model.FieldKindParamManager,
			ValueTypeConstraint: r.paramConstraint(),
			Optional:            true,
			Editable:            true,
		},
		KeyReturnType: {
			Metadata:  model.PropertyMetadata{Label: "Return Type", Description: "The type returned by the resource."},
			ValueType: model.FieldKindType,
			Value:     r.ReturnType(),
			Optional:  true,
			Editable:  true,
		},
	}
	if r.Payload != "" {
		props[KeyPayload] = model.Property{
			Metadata:  model.PropertyMetadata{Label: "Payload", Description: "The type of the request body."},
			ValueType: model.FieldKindType,
			Value:     r.Payload,
			Editable:  true,
		}
	}
	return props
}

func (r Resource) paramConstraint() map[string]any {
	var rows []map[string]any
	for _, p := range r.Params {
		if p.In == "path" {
			continue
		}
		typ := p.Type
		if !p.Required && !strings.HasSuffix(typ, "?") {
			typ += "?"
		}
		values := map[string]any{
			"name": p.Name,
			"type": typ,
			"kind": strings.ToUpper(p.In),
		}
		if p.Default != nil {
			values["defaultValue"] = fmt.Sprint(p.Default)
		}
		rows = append(rows, map[string]any{
			"id":         len(rows),
			"key":        p.Name,
			"value":      typ + " " + p.Name,
			"formValues": values,
		})
	}

	return map[string]any{
		"paramValues": rows,
		"formFields": map[string]model.Property{
			"name": {
				Metadata:  model.PropertyMetadata{Label: "Name"},
				ValueType: model.FieldKindIdentifier,
				Editable:  true,
			},
			"type": {
				Metadata:  model.PropertyMetadata{Label: "Type"},
				ValueType: model.FieldKindType,
				Editable:  true,
			},
			"kind": {
				Metadata:            model.PropertyMetadata{Label: "Parameter Kind"},
				ValueType:           model.FieldKindSingleSelect,
				ValueTypeConstraint: []string{"QUERY", "HEADER"},
				Editable:            true,
			},
			"defaultValue": {
				Metadata:  model.PropertyMetadata{Label: "Default Value"},
				ValueType: model.FieldKindExpression,
				Optional:  true,
				Editable:  true,
			},
		},
	}
}

// Form builds the resource form. The field order follows FieldOrder.
func (r Resource) Form(options ...model.BuilderOption) (model.Form, error) {
	opts := append([]model.BuilderOption{model.WithFieldOrder(FieldOrder...)}, options...)
	form, err := model.NewBuilder(opts...).Build(r.Properties())
	if err != nil {
		return model.Form{}, fmt.Errorf("contract: build form for %s: %w", r.OperationID, err)
	}
	return form, nil
}
