package render

import (
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by dotted field paths.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// FormErrorKey collects messages that belong to the form rather than a field.
const FormErrorKey = "__all__"

// MapErrorPayload assigns error messages to field paths. Keys are dotted
// (params.id.type) or slash separated (/params/id/type); a key addressing
// something below a field lands on the deepest field it names. Keys that match
// no field become form-level errors.
func MapErrorPayload(form model.Form, payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	fieldPaths := make(map[string]struct{})
	collectFieldPaths(form.Fields, "", fieldPaths)

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		path := matchFieldPath(splitErrorKey(key), fieldPaths)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[path] = normalizeMessages(append(mapping.Fields[path], messages...))
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitErrorKey(key string) []string {
	key = strings.TrimSpace(key)
	if key == FormErrorKey {
		return nil
	}
	return strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '/'
	})
}

// matchFieldPath returns the longest prefix of segments naming a field.
func matchFieldPath(segments []string, fieldPaths map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func collectFieldPaths(fields []model.Field, prefix string, dest map[string]struct{}) {
	for _, field := range fields {
		base := field.Base()
		key := strings.TrimSpace(base.Key)
		if key == "" {
			continue
		}
		path := joinPath(prefix, key)
		dest[path] = struct{}{}

		if len(base.AdvanceFields) > 0 {
			collectFieldPaths(base.AdvanceFields, prefix, dest)
		}
		if pm, ok := field.(*model.ParamManagerField); ok {
			collectFieldPaths(pm.Template, path, dest)
			for _, param := range pm.Params {
				if param.Key == "" {
					continue
				}
				paramPath := joinPath(path, param.Key)
				dest[paramPath] = struct{}{}
				collectFieldPaths(param.Fields, paramPath, dest)
			}
		}
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// DiagnosticMessages flattens diagnostics into display messages keyed by
// field. Messages carry a 1-based line:column prefix when the diagnostic does
// not start at the origin.
func DiagnosticMessages(diags map[string][]protocol.Diagnostic) map[string][]string {
	if len(diags) == 0 {
		return nil
	}
	out := make(map[string][]string, len(diags))
	for key, list := range diags {
		messages := make([]string, 0, len(list))
		for _, d := range list {
			start := d.Range.Start
			if start.Line == 0 && start.Character == 0 {
				messages = append(messages, d.Message)
				continue
			}
			messages = append(messages, fmt.Sprintf("%d:%d %s", start.Line+1, start.Character+1, d.Message))
		}
		if normalized := normalizeMessages(messages); len(normalized) > 0 {
			out[key] = normalized
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
