// Package imports tracks, per form field, the module imports that the
// field's expression depends on.
package imports

import (
	"sort"
	"sync"

	"github.com/goliatone/go-biforms/pkg/model"
)

// ValuesKey is the reserved key under which Attach stores the table in
// submitted form values.
const ValuesKey = "__imports"

// Imports maps a module alias (prefix) to its module id.
type Imports map[string]string

// Table holds the imports of every field of a form. The zero value is ready
// to use and safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	fields map[string]Imports
}

// FromFields seeds a table with the imports already recorded on expression
// fields.
func FromFields(fields []model.Field) *Table {
	t := &Table{}
	for _, field := range fields {
		expr, ok := field.(*model.ExpressionField)
		if !ok || len(expr.Imports) == 0 {
			continue
		}
		for alias, module := range expr.Imports {
			t.Merge(expr.Key, Imports{alias: module})
		}
	}
	return t
}

// Merge adds imports to fieldKey. Aliases the field already records are left
// untouched. It reports whether the table changed.
func (t *Table) Merge(fieldKey string, imports Imports) bool {
	if fieldKey == "" || len(imports) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fields == nil {
		t.fields = make(map[string]Imports)
	}
	existing, ok := t.fields[fieldKey]
	if !ok {
		t.fields[fieldKey] = clone(imports)
		return true
	}

	changed := false
	for alias, module := range imports {
		if _, present := existing[alias]; present {
			continue
		}
		existing[alias] = module
		changed = true
	}
	return changed
}

// Field returns a copy of the imports recorded for fieldKey.
func (t *Table) Field(fieldKey string) Imports {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return clone(t.fields[fieldKey])
}

// Snapshot returns a deep copy of the whole table.
func (t *Table) Snapshot() map[string]Imports {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Imports, len(t.fields))
	for key, imports := range t.fields {
		out[key] = clone(imports)
	}
	return out
}

// Modules returns the distinct module ids across all fields, sorted.
func (t *Table) Modules() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, imports := range t.fields {
		for _, module := range imports {
			seen[module] = struct{}{}
		}
	}
	modules := make([]string, 0, len(seen))
	for module := range seen {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Attach returns a copy of values with the table stored under ValuesKey.
// Empty tables leave values unchanged.
func (t *Table) Attach(values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+1)
	for key, value := range values {
		out[key] = value
	}
	snapshot := t.Snapshot()
	if len(snapshot) > 0 {
		out[ValuesKey] = snapshot
	}
	return out
}

// Reset drops every recorded import.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fields = nil
}

func clone(in Imports) Imports {
	if in == nil {
		return nil
	}
	out := make(Imports, len(in))
	for alias, module := range in {
		out[alias] = module
	}
	return out
}
