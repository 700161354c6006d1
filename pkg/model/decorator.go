package model

// Decorator adjusts a form after it has been built from node properties and
// before it is handed to a form instance or renderer.
type Decorator interface {
	Decorate(*Form) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Form) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *Form) error {
	return fn(form)
}

// HideAdvanced marks every advanced field hidden.
func HideAdvanced() Decorator {
	return DecoratorFunc(func(form *Form) error {
		for _, field := range form.Fields {
			if base := field.Base(); base.Advanced {
				base.Hidden = true
			}
		}
		return nil
	})
}

// ShowDiagnosticsOnly enables diagnostics on the listed expression fields and
// disables them on every other expression field.
func ShowDiagnosticsOnly(keys ...string) Decorator {
	allowed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}
	return DecoratorFunc(func(form *Form) error {
		for _, field := range form.Fields {
			expr, ok := field.(*ExpressionField)
			if !ok {
				continue
			}
			_, expr.ShowDiagnostics = allowed[expr.Key]
		}
		return nil
	})
}

// Apply runs decorators in order and stops at the first error.
func Apply(form *Form, decorators ...Decorator) error {
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return err
		}
	}
	return nil
}
