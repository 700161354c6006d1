// Package completion turns language service completion results into the
// items an expression editor offers. It owns the per-form completion cache,
// the visible types cache, and signature help conversion.
package completion

import (
	"regexp"
	"strings"

	"go.lsp.dev/protocol"
)

// Kind is the editor facing category of a completion item.
type Kind string

const (
	KindText          Kind = "text"
	KindMethod        Kind = "method"
	KindFunction      Kind = "function"
	KindConstructor   Kind = "constructor"
	KindField         Kind = "field"
	KindVariable      Kind = "variable"
	KindClass         Kind = "class"
	KindInterface     Kind = "interface"
	KindModule        Kind = "module"
	KindProperty      Kind = "property"
	KindUnit          Kind = "unit"
	KindValue         Kind = "value"
	KindEnum          Kind = "enum"
	KindKeyword       Kind = "keyword"
	KindSnippet       Kind = "snippet"
	KindColor         Kind = "color"
	KindFile          Kind = "file"
	KindReference     Kind = "reference"
	KindFolder        Kind = "folder"
	KindEnumMember    Kind = "enum-member"
	KindConstant      Kind = "constant"
	KindStruct        Kind = "struct"
	KindEvent         Kind = "event"
	KindOperator      Kind = "operator"
	KindTypeParameter Kind = "type-parameter"
)

var kinds = map[protocol.CompletionItemKind]Kind{
	protocol.CompletionItemKindText:          KindText,
	protocol.CompletionItemKindMethod:        KindMethod,
	protocol.CompletionItemKindFunction:      KindFunction,
	protocol.CompletionItemKindConstructor:   KindConstructor,
	protocol.CompletionItemKindField:         KindField,
	protocol.CompletionItemKindVariable:      KindVariable,
	protocol.CompletionItemKindClass:         KindClass,
	protocol.CompletionItemKindInterface:     KindInterface,
	protocol.CompletionItemKindModule:        KindModule,
	protocol.CompletionItemKindProperty:      KindProperty,
	protocol.CompletionItemKindUnit:          KindUnit,
	protocol.CompletionItemKindValue:         KindValue,
	protocol.CompletionItemKindEnum:          KindEnum,
	protocol.CompletionItemKindKeyword:       KindKeyword,
	protocol.CompletionItemKindSnippet:       KindSnippet,
	protocol.CompletionItemKindColor:         KindColor,
	protocol.CompletionItemKindFile:          KindFile,
	protocol.CompletionItemKindReference:     KindReference,
	protocol.CompletionItemKindFolder:        KindFolder,
	protocol.CompletionItemKindEnumMember:    KindEnumMember,
	protocol.CompletionItemKindConstant:      KindConstant,
	protocol.CompletionItemKindStruct:        KindStruct,
	protocol.CompletionItemKindEvent:         KindEvent,
	protocol.CompletionItemKindOperator:      KindOperator,
	protocol.CompletionItemKindTypeParameter: KindTypeParameter,
}

// KindOf maps an LSP completion kind. Unknown kinds map to KindText.
func KindOf(k protocol.CompletionItemKind) Kind {
	if kind, ok := kinds[k]; ok {
		return kind
	}
	return KindText
}

// Item is a completion entry as shown by the editor.
type Item struct {
	Tag                 string              `json:"tag,omitempty"`
	Label               string              `json:"label"`
	Value               string              `json:"value"`
	Description         string              `json:"description,omitempty"`
	Kind                Kind                `json:"kind"`
	SortText            string              `json:"sortText,omitempty"`
	CursorOffset        int                 `json:"cursorOffset,omitempty"`
	AdditionalTextEdits []protocol.TextEdit `json:"additionalTextEdits,omitempty"`
}

// ImportEdit returns the first additional edit, which the service uses to
// carry the import statement a completion depends on.
func (i Item) ImportEdit() (protocol.TextEdit, bool) {
	if len(i.AdditionalTextEdits) == 0 || i.AdditionalTextEdits[0].NewText == "" {
		return protocol.TextEdit{}, false
	}
	return i.AdditionalTextEdits[0], true
}

// callPattern splits a call snippet into its callee and argument list.
var callPattern = regexp.MustCompile(`^(?P<label>[\p{L}\p{N}_'.:]+)\((?P<args>.*)\)`)

func parseCall(text string) (label, args string, ok bool) {
	m := callPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", "", false
	}
	return m[callPattern.SubexpIndex("label")], m[callPattern.SubexpIndex("args")], true
}

// Convert maps a service completion item. Labels of the form "a/b/c" keep
// the last segment as the label and the rest as the tag. Function items
// insert an empty call and, when the snippet had arguments, place the cursor
// between the parentheses.
func Convert(src protocol.CompletionItem) Item {
	item := Item{
		Label:               src.Label,
		Value:               src.InsertText,
		Description:         src.Detail,
		Kind:                KindOf(src.Kind),
		SortText:            src.SortText,
		AdditionalTextEdits: src.AdditionalTextEdits,
	}
	if idx := strings.LastIndex(src.Label, "/"); idx >= 0 {
		item.Tag = src.Label[:idx]
		item.Label = src.Label[idx+1:]
	}
	if item.Value == "" {
		item.Value = item.Label
	}
	if item.Kind == KindFunction {
		label, args, ok := parseCall(item.Value)
		if ok {
			item.Value = label + "()"
		} else {
			item.Value += "()"
		}
		if args != "" {
			item.CursorOffset = len(item.Value) - 1
		}
	}
	return item
}

// ConvertAll converts src, skipping items the service sent without detail.
func ConvertAll(src []protocol.CompletionItem) []Item {
	items := make([]Item, 0, len(src))
	for _, c := range src {
		if c.Detail == "" {
			continue
		}
		items = append(items, Convert(c))
	}
	return items
}
