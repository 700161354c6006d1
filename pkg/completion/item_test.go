package completion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/lsclient"
)

func TestConvert(t *testing.T) {
	importEdit := protocol.TextEdit{NewText: "import ballerina/http;\n"}

	cases := []struct {
		name string
		in   protocol.CompletionItem
		want Item
	}{
		{
			name: "tagged label",
			in: protocol.CompletionItem{
				Label:               "ballerina/http/Client",
				InsertText:          "http:Client",
				Detail:              "class",
				Kind:                protocol.CompletionItemKindClass,
				SortText:            "AB",
				AdditionalTextEdits: []protocol.TextEdit{importEdit},
			},
			want: Item{
				Tag:                 "ballerina/http",
				Label:               "Client",
				Value:               "http:Client",
				Description:         "class",
				Kind:                KindClass,
				SortText:            "AB",
				AdditionalTextEdits: []protocol.TextEdit{importEdit},
			},
		},
		{
			name: "function with arguments",
			in: protocol.CompletionItem{
				Label:      "concat(string... strs)",
				InsertText: "concat(${1})",
				Detail:     "string",
				Kind:       protocol.CompletionItemKindFunction,
			},
			want: Item{
				Label:        "concat(string... strs)",
				Value:        "concat()",
				Description:  "string",
				Kind:         KindFunction,
				CursorOffset: 7,
			},
		},
		{
			name: "function without arguments",
			in: protocol.CompletionItem{
				Label:      "now()",
				InsertText: "now()",
				Detail:     "time:Utc",
				Kind:       protocol.CompletionItemKindFunction,
			},
			want: Item{
				Label:       "now()",
				Value:       "now()",
				Description: "time:Utc",
				Kind:        KindFunction,
			},
		},
		{
			name: "function insert text without call",
			in: protocol.CompletionItem{
				Label:      "print",
				InsertText: "print",
				Detail:     "()",
				Kind:       protocol.CompletionItemKindFunction,
			},
			want: Item{
				Label:       "print",
				Value:       "print()",
				Description: "()",
				Kind:        KindFunction,
			},
		},
		{
			name: "unknown kind",
			in: protocol.CompletionItem{
				Label:  "x",
				Detail: "int",
				Kind:   protocol.CompletionItemKind(99),
			},
			want: Item{Label: "x", Value: "x", Description: "int", Kind: KindText},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Convert(tc.in)); diff != "" {
				t.Fatalf("convert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertAllSkipsItemsWithoutDetail(t *testing.T) {
	got := ConvertAll([]protocol.CompletionItem{
		{Label: "a", Detail: "int"},
		{Label: "b"},
		{Label: "c", Detail: "string"},
	})
	if len(got) != 2 || got[0].Label != "a" || got[1].Label != "c" {
		t.Fatalf("unexpected items %+v", got)
	}
}

func TestFilter(t *testing.T) {
	items := []Item{
		{Label: "toString", SortText: "C"},
		{Label: "length", SortText: "A"},
		{Label: "String", SortText: "B"},
		{Label: "trim", SortText: "B"},
	}
	got := Filter(items, "STR")
	want := []Item{{Label: "String", SortText: "B"}, {Label: "toString", SortText: "C"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	if items[0].Label != "toString" {
		t.Fatalf("filter reordered its input")
	}
	if all := Filter(items, ""); len(all) != len(items) || all[0].Label != "length" {
		t.Fatalf("empty filter should sort every item, got %+v", all)
	}
}

func TestItemImportEdit(t *testing.T) {
	if _, ok := (Item{}).ImportEdit(); ok {
		t.Fatalf("expected no import edit")
	}
	edit := protocol.TextEdit{NewText: "import ballerina/io;"}
	got, ok := Item{AdditionalTextEdits: []protocol.TextEdit{edit, {NewText: "other"}}}.ImportEdit()
	if !ok || got.NewText != edit.NewText {
		t.Fatalf("unexpected import edit %+v", got)
	}
	if _, ok := (Item{AdditionalTextEdits: []protocol.TextEdit{{}, edit}}).ImportEdit(); ok {
		t.Fatalf("only the first edit carries the import")
	}
}

func TestConvertSignature(t *testing.T) {
	resp := lsclient.SignatureHelpResponse{
		ActiveParameter: 1,
		Signatures: []lsclient.SignatureInfo{{
			Label:         "substring(string str, int startIndex)",
			Documentation: protocol.MarkupContent{Kind: protocol.Markdown, Value: "Returns a substring."},
			Parameters: []lsclient.ParameterInfo{
				{Documentation: protocol.MarkupContent{Value: "**Parameter** str: the string"}},
				{Documentation: protocol.MarkupContent{Value: "startIndex"}},
			},
		}},
	}
	want := &Signature{
		Label:      "substring",
		Args:       []string{"string str", "int startIndex"},
		CurrentArg: 1,
		Documentation: &SignatureDoc{
			Function: "Returns a substring.",
			Args:     []string{"- str: the string", "- startIndex"},
		},
	}
	if diff := cmp.Diff(want, ConvertSignature(resp)); diff != "" {
		t.Fatalf("signature mismatch (-want +got):\n%s", diff)
	}

	if ConvertSignature(lsclient.SignatureHelpResponse{}) != nil {
		t.Fatalf("expected nil without signatures")
	}
	if ConvertSignature(lsclient.SignatureHelpResponse{Signatures: []lsclient.SignatureInfo{{Label: "int"}}}) != nil {
		t.Fatalf("expected nil for a non call label")
	}

	noArgs := ConvertSignature(lsclient.SignatureHelpResponse{Signatures: []lsclient.SignatureInfo{{Label: "now()"}}})
	if noArgs == nil || len(noArgs.Args) != 0 || noArgs.Documentation != nil {
		t.Fatalf("unexpected signature %+v", noArgs)
	}
}
