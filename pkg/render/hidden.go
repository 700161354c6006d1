package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-biforms/pkg/model"
)

// Hidden input names carrying the form's anchor back on submission.
const (
	HiddenFilePath    = "__filePath"
	HiddenTargetRange = "__targetLineRange"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// FormHiddenFields returns the inputs that tie a submission back to the file
// and node the form was opened on.
func FormHiddenFields(form model.Form) []HiddenField {
	var out []HiddenField
	if form.FilePath != "" {
		out = append(out, Hidden(HiddenFilePath, form.FilePath))
	}
	if form.TargetLineRange != nil {
		if raw, err := json.Marshal(form.TargetLineRange); err == nil {
			out = append(out, Hidden(HiddenTargetRange, string(raw)))
		}
	}
	return out
}

// SortedHiddenFields merges fields by name, later entries winning, and
// returns them sorted. Empty names are dropped.
func SortedHiddenFields(fields ...HiddenField) []HiddenField {
	clean := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		clean[name] = field.Value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
