package completion_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/testsupport"
)

func visibleTypes(context.Context, lsclient.VisibleTypesRequest) ([]lsclient.VisibleTypeItem, error) {
	return []lsclient.VisibleTypeItem{
		{Label: "string", InsertText: "string", Kind: protocol.CompletionItemKindTypeParameter, LabelDetails: lsclient.LabelDetails{Description: "String"}},
		{Label: "()", InsertText: "()", Kind: protocol.CompletionItemKindTypeParameter, LabelDetails: lsclient.LabelDetails{Description: "Nil"}},
		{Label: "Person", InsertText: "Person", Kind: protocol.CompletionItemKindStruct, LabelDetails: lsclient.LabelDetails{Description: "Record"}},
		{},
	}, nil
}

func TestTypeCache_CachesPerField(t *testing.T) {
	client := &testsupport.FakeClient{Types: visibleTypes}
	anchor := expression.NewAnchor(&expression.LineRange{
		StartLine: expression.LinePosition{Line: 4, Offset: 2},
		EndLine:   expression.LinePosition{Line: 6},
	})
	cache, err := completion.NewTypeCache(client, "types.bal", anchor, 0)
	if err != nil {
		t.Fatalf("new type cache: %v", err)
	}
	ctx := testsupport.Context()

	got, err := cache.Types(ctx, completion.TypesQuery{FieldKey: "type", Text: "Str", Cursor: 3})
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	want := []completion.Item{{Label: "string", Value: "string", Kind: completion.KindTypeParameter}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}

	if _, err := cache.Types(ctx, completion.TypesQuery{FieldKey: "type", Text: "P", Cursor: 1}); err != nil {
		t.Fatalf("types: %v", err)
	}
	if n := client.CallCount(lsclient.MethodVisibleTypes); n != 1 {
		t.Fatalf("expected one service call for a cached field, got %d", n)
	}

	if _, err := cache.Types(ctx, completion.TypesQuery{Text: "", Cursor: 0}); err != nil {
		t.Fatalf("types: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected a default entry next to the field entry, got %d", cache.Len())
	}

	req := client.Calls(lsclient.MethodVisibleTypes)[0].Params.(lsclient.VisibleTypesRequest)
	if diff := cmp.Diff(expression.LinePosition{Line: 4, Offset: 2}, req.Position); diff != "" {
		t.Fatalf("position mismatch (-want +got):\n%s", diff)
	}

	cache.Purge()
	if _, err := cache.Types(ctx, completion.TypesQuery{FieldKey: "type"}); err != nil {
		t.Fatalf("types: %v", err)
	}
	if n := client.CallCount(lsclient.MethodVisibleTypes); n != 3 {
		t.Fatalf("expected purge to force a refetch, got %d calls", n)
	}
}

func TestTypeCache_DataMapperDropsUnsupportedTypes(t *testing.T) {
	client := &testsupport.FakeClient{Types: visibleTypes}
	cache, err := completion.NewTypeCache(client, "types.bal", nil, 4)
	if err != nil {
		t.Fatalf("new type cache: %v", err)
	}

	got, err := cache.All(testsupport.Context(), "mapping", "json")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	labels := []string{}
	for _, item := range got {
		labels = append(labels, item.Label)
	}
	if diff := cmp.Diff([]string{"string", "Person"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	req := client.Calls(lsclient.MethodVisibleTypes)[0].Params.(lsclient.VisibleTypesRequest)
	if req.TypeConstraint != "json" {
		t.Fatalf("expected type constraint to be forwarded, got %q", req.TypeConstraint)
	}
}

func TestFetchSignature(t *testing.T) {
	client := &testsupport.FakeClient{
		Signature: func(context.Context, lsclient.SignatureHelpRequest) (lsclient.SignatureHelpResponse, error) {
			return lsclient.SignatureHelpResponse{
				Signatures: []lsclient.SignatureInfo{{Label: "max(int a, int b)"}},
			}, nil
		},
	}
	prop := &model.Property{ValueType: model.FieldKindExpression}
	sig, err := completion.FetchSignature(testsupport.Context(), client, completion.SignatureQuery{
		FilePath: "main.bal",
		Text:     "max(1, ",
		Cursor:   7,
		Property: prop,
	})
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	if sig == nil || sig.Label != "max" || len(sig.Args) != 2 {
		t.Fatalf("unexpected signature %+v", sig)
	}

	req := client.Calls(lsclient.MethodSignatureHelp)[0].Params.(lsclient.SignatureHelpRequest)
	want := lsclient.SignatureHelpContext{IsRetrigger: false, TriggerKind: 1}
	if diff := cmp.Diff(want, req.SignatureHelpContext); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
	if req.Context.Offset != 7 || req.Context.Property != prop {
		t.Fatalf("unexpected expression context %+v", req.Context)
	}
}
