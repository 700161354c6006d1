package pongo

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

var builtinFilters sync.Once

func registerBuiltinFilters() {
	builtinFilters.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"trim":       filterTrim,
			"lowerfirst": filterLowerFirst,
			"cssvars":    filterCSSVars,
		} {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterLowerFirst lowercases the first non-space rune.
func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := in.String()
	idx := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
	if idx < 0 {
		return pongo2.AsValue(text), nil
	}
	r, size := utf8.DecodeRuneInString(text[idx:])
	return pongo2.AsValue(text[:idx] + string(unicode.ToLower(r)) + text[idx+size:]), nil
}

// filterCSSVars renders a map of CSS custom properties as a sorted
// declaration list suitable for a style attribute.
func filterCSSVars(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	vars, ok := in.Interface().(map[string]any)
	if !ok || len(vars) == 0 {
		if typed, ok := in.Interface().(map[string]string); ok {
			vars = make(map[string]any, len(typed))
			for k, v := range typed {
				vars[k] = v
			}
		}
	}
	if len(vars) == 0 {
		return pongo2.AsValue(""), nil
	}

	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value, _ := vars[key].(string)
		if value == "" || strings.ContainsAny(value, ";{}<>\"") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte(';')
	}
	return pongo2.AsValue(b.String()), nil
}
