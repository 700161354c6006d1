package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/expression"
)

func httpResourceProperties() map[string]Property {
	target := &expression.LineRange{
		FileName:  "main.bal",
		StartLine: expression.LinePosition{Line: 12, Offset: 4},
		EndLine:   expression.LinePosition{Line: 12, Offset: 30},
	}
	return map[string]Property{
		"variable": {
			Metadata:  PropertyMetadata{Label: "Variable Name"},
			ValueType: FieldKindIdentifier,
			Value:     "response",
			Editable:  true,
		},
		"url": {
			Metadata:            PropertyMetadata{Label: "URL", Description: "Endpoint to call"},
			ValueType:           FieldKindExpression,
			ValueTypeConstraint: "string",
			Value:               "\"htt\"",
			Editable:            true,
			LineRange:           target,
			Imports:             map[string]string{"http": "ballerina/http"},
			Diagnostics: &PropertyDiagnostics{
				HasDiagnostics: true,
				Diagnostics:    []protocol.Diagnostic{{Message: "missing close quote"}},
			},
		},
		"method": {
			ValueType:           FieldKindSingleSelect,
			ValueTypeConstraint: []any{"GET", "POST"},
			Value:               "GET",
		},
		"retry": {
			ValueType: FieldKindFlag,
			Value:     false,
			Optional:  true,
		},
		"returnType": {
			ValueType:           FieldKindType,
			ValueTypeConstraint: "anydata",
		},
		"description": {
			ValueType: FieldKindText,
			Advanced:  true,
			Optional:  true,
		},
	}
}

func TestBuilder_BuildHTTPResource(t *testing.T) {
	builder := New(Options{Order: []string{"variable", "url", "method"}})
	form, err := builder.Build(httpResourceProperties())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var order []string
	for _, field := range form.Fields {
		order = append(order, field.Base().Key)
	}
	wantOrder := []string{"variable", "url", "method", "description", "retry", "returnType"}
	if diff := cmp.Diff(wantOrder, order); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	field, ok := form.Field("url")
	if !ok {
		t.Fatalf("url field missing")
	}
	expr, ok := field.(*ExpressionField)
	if !ok {
		t.Fatalf("expected *ExpressionField, got %T", field)
	}
	want := &ExpressionField{
		FieldBase: FieldBase{
			Key:           "url",
			Label:         "URL",
			Documentation: "Endpoint to call",
			Editable:      true,
			Value:         "\"htt\"",
			LineRange: &expression.LineRange{
				FileName:  "main.bal",
				StartLine: expression.LinePosition{Line: 12, Offset: 4},
				EndLine:   expression.LinePosition{Line: 12, Offset: 30},
			},
		},
		ExprKind:        FieldKindExpression,
		TypeConstraint:  "string",
		Imports:         map[string]string{"http": "ballerina/http"},
		Diagnostics:     []protocol.Diagnostic{{Message: "missing close quote"}},
		ShowDiagnostics: true,
	}
	if diff := cmp.Diff(want, expr, cmpopts.IgnoreFields(FieldBase{}, "Property")); diff != "" {
		t.Fatalf("expression field mismatch (-want +got):\n%s", diff)
	}
	if expr.Base().Property == nil || expr.Base().Property.ValueType != FieldKindExpression {
		t.Fatalf("expected source property to be retained")
	}

	method, _ := form.Field("method")
	sel, ok := method.(*SelectField)
	if !ok || sel.Kind() != FieldKindSingleSelect {
		t.Fatalf("expected single select, got %T", method)
	}
	if diff := cmp.Diff([]string{"GET", "POST"}, sel.Items); diff != "" {
		t.Fatalf("select items mismatch (-want +got):\n%s", diff)
	}

	returnType, _ := form.Field("returnType")
	if typ, ok := returnType.(*TypeField); !ok || typ.TypeConstraint != "anydata" || typ.Base().Label != "Return Type" {
		t.Fatalf("unexpected type field %#v", returnType)
	}

	description, _ := form.Field("description")
	if text, ok := description.(*TextField); !ok || text.Kind() != FieldKindText {
		t.Fatalf("expected text field to keep raw kind, got %#v", description)
	}

	values := form.Values()
	if values["variable"] != "response" || values["retry"] != false {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestBuilder_HideDiagnostics(t *testing.T) {
	builder := New(Options{HideDiagnostics: true})
	field, err := builder.BuildField("condition", Property{ValueType: FieldKindActionOrExpression})
	if err != nil {
		t.Fatalf("build field: %v", err)
	}
	expr := field.(*ExpressionField)
	if expr.ShowDiagnostics {
		t.Fatalf("expected diagnostics hidden")
	}
	if expr.Kind() != FieldKindActionOrExpression || !expr.Kind().IsExpression() {
		t.Fatalf("unexpected kind %q", expr.Kind())
	}
}

func TestBuilder_ParamManager(t *testing.T) {
	constraint := map[string]any{
		"paramValues": []any{
			map[string]any{
				"id":    0,
				"key":   "id",
				"value": "int id",
				"formValues": map[string]any{
					"type":     "int",
					"variable": "id",
				},
			},
		},
		"formFields": map[string]any{
			"type": map[string]any{
				"metadata":  map[string]any{"label": "Type"},
				"valueType": "TYPE",
			},
			"variable": map[string]any{
				"metadata":  map[string]any{"label": "Name"},
				"valueType": "IDENTIFIER",
			},
		},
	}

	builder := New(Options{})
	field, err := builder.BuildField("parameters", Property{
		ValueType:           FieldKindParamManager,
		ValueTypeConstraint: constraint,
	})
	if err != nil {
		t.Fatalf("build field: %v", err)
	}
	pm, ok := field.(*ParamManagerField)
	if !ok {
		t.Fatalf("expected *ParamManagerField, got %T", field)
	}
	if len(pm.Template) != 2 || len(pm.Params) != 1 {
		t.Fatalf("unexpected param manager shape: template=%d params=%d", len(pm.Template), len(pm.Params))
	}
	row := pm.Params[0]
	if row.Value != "int id" || len(row.Fields) != 2 {
		t.Fatalf("unexpected row %+v", row)
	}
	if got := row.Fields[1].Base().Value; got != "id" {
		t.Fatalf("expected row value to be applied, got %v", got)
	}
	if _, ok := row.Fields[0].(*TypeField); !ok {
		t.Fatalf("expected first row field to be a type field, got %T", row.Fields[0])
	}
}

func TestBuilder_Errors(t *testing.T) {
	builder := New(Options{})

	if _, err := builder.Build(nil); !errors.Is(err, errPropertiesMissing) {
		t.Fatalf("expected errPropertiesMissing, got %v", err)
	}

	_, err := builder.Build(map[string]Property{
		"params": {ValueType: FieldKindParamManager},
	})
	if err == nil || !strings.Contains(err.Error(), `property "params"`) {
		t.Fatalf("expected property error, got %v", err)
	}

	if _, err := builder.BuildField("", Property{}); !errors.Is(err, errPropertyKeyEmpty) {
		t.Fatalf("expected errPropertyKeyEmpty, got %v", err)
	}
}

func TestForm_MarshalJSONTagsKinds(t *testing.T) {
	form := Form{Fields: []Field{
		&IdentifierField{FieldBase: FieldBase{Key: "name"}},
		&SelectField{FieldBase: FieldBase{Key: "tags"}, Multiple: true},
	}}
	payload, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Fields []struct {
			Kind  string `json:"kind"`
			Field struct {
				Key string `json:"key"`
			} `json:"field"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Fields) != 2 || decoded.Fields[0].Kind != "IDENTIFIER" || decoded.Fields[1].Kind != "MULTIPLE_SELECT" {
		t.Fatalf("unexpected payload %s", payload)
	}
	if decoded.Fields[1].Field.Key != "tags" {
		t.Fatalf("expected field body to be preserved, got %s", payload)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"resourcePath":  "Resource Path",
		"http_version":  "Http Version",
		"'type":         "Type",
		"HTTPServer":    "HTTP Server",
		"v2beta":        "V 2 Beta",
		"":              "",
		"return-type.x": "Return Type X",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Errorf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}
