package model_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-biforms/pkg/model"
)

func TestApply_HideAdvancedAndDiagnostics(t *testing.T) {
	builder := model.NewBuilder(model.WithFieldOrder("expr"))
	form, err := builder.Build(map[string]model.Property{
		"expr":    {ValueType: model.FieldKindExpression},
		"other":   {ValueType: model.FieldKindExpression},
		"comment": {ValueType: model.FieldKindString, Advanced: true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := model.Apply(&form, model.HideAdvanced(), model.ShowDiagnosticsOnly("expr")); err != nil {
		t.Fatalf("apply: %v", err)
	}

	comment, _ := form.Field("comment")
	if !comment.Base().Hidden {
		t.Fatalf("expected advanced field to be hidden")
	}
	expr, _ := form.Field("expr")
	if !expr.(*model.ExpressionField).ShowDiagnostics {
		t.Fatalf("expected diagnostics on expr")
	}
	other, _ := form.Field("other")
	if other.(*model.ExpressionField).ShowDiagnostics {
		t.Fatalf("expected diagnostics disabled on other")
	}
}

func TestApply_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	err := model.Apply(&model.Form{},
		model.DecoratorFunc(func(*model.Form) error { return boom }),
		model.DecoratorFunc(func(*model.Form) error { called = true; return nil }),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Fatalf("expected later decorators to be skipped")
	}
}
