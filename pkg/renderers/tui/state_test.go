package tui

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStateSetAndGetPaths(t *testing.T) {
	state := NewState(map[string]any{"name": "svc"}, nil)

	if err := state.SetValue("params.id.type", "int"); err != nil {
		t.Fatalf("set nested: %v", err)
	}
	if err := state.SetValue("params.id.optional", true); err != nil {
		t.Fatalf("set sibling: %v", err)
	}

	if v, ok := state.GetValue("params.id.type"); !ok || v != "int" {
		t.Fatalf("get nested: %v %v", v, ok)
	}
	if _, ok := state.GetValue("params.missing"); ok {
		t.Fatalf("expected missing path")
	}

	want := map[string]any{
		"name":   "svc",
		"params": map[string]any{"id": map[string]any{"type": "int", "optional": true}},
	}
	if diff := cmp.Diff(want, state.Values()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestStateClonesInputs(t *testing.T) {
	prefill := map[string]any{"nested": map[string]any{"a": "1"}}
	errs := map[string][]string{"a": {"bad"}}
	state := NewState(prefill, errs)

	_ = state.SetValue("nested.a", "2")
	errs["a"][0] = "changed"

	if prefill["nested"].(map[string]any)["a"] != "1" {
		t.Fatalf("prefill mutated")
	}
	if got := state.ErrorsFor("a"); len(got) != 1 || got[0] != "bad" {
		t.Fatalf("errors not cloned: %v", got)
	}
}
