package imports

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-biforms/pkg/model"
)

func TestTable_MergeCreatesFieldSet(t *testing.T) {
	var table Table
	if !table.Merge("url", Imports{"http": "ballerina/http"}) {
		t.Fatalf("expected first merge to change the table")
	}
	if diff := cmp.Diff(Imports{"http": "ballerina/http"}, table.Field("url")); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_MergeIsIdempotent(t *testing.T) {
	var table Table
	table.Merge("url", Imports{"http": "ballerina/http"})
	before := table.Snapshot()

	if table.Merge("url", Imports{"http": "ballerina/http"}) {
		t.Fatalf("expected second merge of the same pair to be a no-op")
	}
	if diff := cmp.Diff(before, table.Snapshot()); diff != "" {
		t.Fatalf("table changed after idempotent merge (-want +got):\n%s", diff)
	}
}

func TestTable_MergeKeepsExistingAlias(t *testing.T) {
	var table Table
	table.Merge("url", Imports{"http": "ballerina/http"})
	table.Merge("url", Imports{"http": "other/http"})

	if got := table.Field("url")["http"]; got != "ballerina/http" {
		t.Fatalf("expected existing alias to win, got %q", got)
	}
}

func TestTable_MergeAddsNewAlias(t *testing.T) {
	var table Table
	table.Merge("url", Imports{"http": "ballerina/http"})
	if !table.Merge("url", Imports{"log": "ballerina/log"}) {
		t.Fatalf("expected new alias to change the table")
	}

	want := Imports{"http": "ballerina/http", "log": "ballerina/log"}
	if diff := cmp.Diff(want, table.Field("url")); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ballerina/http", "ballerina/log"}, table.Modules()); diff != "" {
		t.Fatalf("modules mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_IgnoresEmptyInput(t *testing.T) {
	var table Table
	if table.Merge("", Imports{"a": "b"}) || table.Merge("url", nil) {
		t.Fatalf("expected empty input to be ignored")
	}
	if len(table.Snapshot()) != 0 {
		t.Fatalf("expected empty table")
	}
}

func TestFromFieldsAndAttach(t *testing.T) {
	fields := []model.Field{
		&model.ExpressionField{
			FieldBase: model.FieldBase{Key: "url"},
			Imports:   map[string]string{"http": "ballerina/http"},
		},
		&model.IdentifierField{FieldBase: model.FieldBase{Key: "name"}},
	}
	table := FromFields(fields)

	values := map[string]any{"url": "http:get()", "name": "res"}
	got := table.Attach(values)

	want := map[string]any{
		"url":  "http:get()",
		"name": "res",
		ValuesKey: map[string]Imports{
			"url": {"http": "ballerina/http"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attached values mismatch (-want +got):\n%s", diff)
	}
	if _, ok := values[ValuesKey]; ok {
		t.Fatalf("Attach must not mutate its input")
	}

	table.Reset()
	if _, ok := table.Attach(values)[ValuesKey]; ok {
		t.Fatalf("expected empty table not to be attached")
	}
}
