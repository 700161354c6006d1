package completion_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/testsupport"
)

func httpCompletions(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
	return []protocol.CompletionItem{
		{Label: "http", InsertText: "http", Detail: "module", Kind: protocol.CompletionItemKindModule, SortText: "B"},
		{Label: "https", InsertText: "https", Detail: "module", Kind: protocol.CompletionItemKindModule, SortText: "A"},
		{Label: "httpx", InsertText: "httpx", Kind: protocol.CompletionItemKindModule, SortText: "C"},
		{Label: "json", InsertText: "json", Detail: "module", Kind: protocol.CompletionItemKindModule, SortText: "D"},
	}, nil
}

func labels(items []completion.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestEngine_CachedWhileParentUnchanged(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	engine := completion.NewEngine(client, "main.bal")
	ctx := testsupport.Context()

	got, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"https", "http"}, labels(got)); diff != "" {
		t.Fatalf("first fetch mismatch (-want +got):\n%s", diff)
	}

	got, err = engine.Fetch(ctx, completion.Query{Text: "https", Offset: 5})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"https"}, labels(got)); diff != "" {
		t.Fatalf("cached fetch mismatch (-want +got):\n%s", diff)
	}
	if n := client.CallCount(lsclient.MethodExpressionCompletions); n != 1 {
		t.Fatalf("expected a single service call, got %d", n)
	}
	if diff := cmp.Diff([]string{"https"}, labels(engine.Completions())); diff != "" {
		t.Fatalf("published list mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RequestShape(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	anchor := expression.NewAnchor(&expression.LineRange{FileName: "main.bal"})
	anchor.Add(20)
	engine := completion.NewEngine(client, "main.bal", completion.WithAnchor(anchor))

	if _, err := engine.Fetch(testsupport.Context(), completion.Query{Text: "a +\nhtt", Offset: 7}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	calls := client.Calls(lsclient.MethodExpressionCompletions)
	if len(calls) != 1 {
		t.Fatalf("expected one call, got %d", len(calls))
	}
	want := lsclient.CompletionsRequest{
		FilePath: "main.bal",
		Context: lsclient.ExpressionContext{
			Expression: "a +\nhtt",
			StartLine:  &expression.LinePosition{Line: 0, Offset: 20},
			LineOffset: 1,
			Offset:     3,
		},
		CompletionContext: protocol.CompletionContext{
			TriggerKind: protocol.CompletionTriggerKindInvoked,
		},
	}
	if diff := cmp.Diff(want, calls[0].Params); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_TriggerBypassesCache(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	engine := completion.NewEngine(client, "main.bal")
	ctx := testsupport.Context()

	if _, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3, Trigger: "."})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	calls := client.Calls(lsclient.MethodExpressionCompletions)
	if len(calls) != 2 {
		t.Fatalf("expected trigger to reach the service, got %d calls", len(calls))
	}
	req := calls[1].Params.(lsclient.CompletionsRequest)
	if req.CompletionContext.TriggerKind != protocol.CompletionTriggerKindTriggerCharacter || req.CompletionContext.TriggerCharacter != "." {
		t.Fatalf("unexpected completion context %+v", req.CompletionContext)
	}
	if diff := cmp.Diff([]string{"http", "https", "json"}, labels(got)); diff != "" {
		t.Fatalf("trigger result should be the unfiltered list (-want +got):\n%s", diff)
	}
}

func TestEngine_NewParentRefetches(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	engine := completion.NewEngine(client, "main.bal")
	ctx := testsupport.Context()

	if _, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := engine.Fetch(ctx, completion.Query{Text: "a + htt", Offset: 7}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n := client.CallCount(lsclient.MethodExpressionCompletions); n != 2 {
		t.Fatalf("expected a refetch for a new parent, got %d calls", n)
	}
}

func TestEngine_DataMapperEndpoint(t *testing.T) {
	client := &testsupport.FakeClient{DataMapper: httpCompletions}
	engine := completion.NewEngine(client, "main.bal", completion.WithDataMapper())

	if _, err := engine.Fetch(testsupport.Context(), completion.Query{Text: "h", Offset: 1}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if client.CallCount(lsclient.MethodDataMapperCompletions) != 1 || client.CallCount(lsclient.MethodExpressionCompletions) != 0 {
		t.Fatalf("expected data mapper endpoint, got %+v", client.Calls(""))
	}
}

func TestEngine_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	client := &testsupport.FakeClient{
		Completions: func(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
			close(entered)
			<-release
			return httpCompletions(ctx, req)
		},
	}
	engine := completion.NewEngine(client, "main.bal")

	errc := make(chan error, 1)
	go func() {
		_, err := engine.Fetch(testsupport.Context(), completion.Query{Text: "htt", Offset: 3})
		errc <- err
	}()

	<-entered
	engine.Cancel()
	close(release)

	if err := <-errc; !errors.Is(err, completion.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if got := engine.Completions(); len(got) != 0 {
		t.Fatalf("stale response leaked into state: %+v", got)
	}
}

func TestEngine_CacheHitSupersedesInFlightTrigger(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	client := &testsupport.FakeClient{
		Completions: func(_ context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
			if req.Context.Expression == "y." {
				close(entered)
				<-release
				return []protocol.CompletionItem{{Label: "memberOfY", Detail: "int", SortText: "a"}}, nil
			}
			return []protocol.CompletionItem{
				{Label: "abc", Detail: "int", SortText: "a"},
				{Label: "abd", Detail: "int", SortText: "b"},
				{Label: "xyz", Detail: "int", SortText: "c"},
			}, nil
		},
	}
	engine := completion.NewEngine(client, "main.bal")
	ctx := testsupport.Context()

	if _, err := engine.Fetch(ctx, completion.Query{Text: "x + a", Offset: 5}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := engine.Fetch(ctx, completion.Query{Text: "y.", Offset: 2, Trigger: "."})
		errc <- err
	}()
	<-entered

	got, err := engine.Fetch(ctx, completion.Query{Text: "x + ab", Offset: 6})
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"abc", "abd"}, labels(got)); diff != "" {
		t.Fatalf("cached fetch mismatch (-want +got):\n%s", diff)
	}

	close(release)
	if err := <-errc; !errors.Is(err, completion.ErrStale) {
		t.Fatalf("expected the older trigger fetch to be stale, got %v", err)
	}
	if diff := cmp.Diff([]string{"abc", "abd"}, labels(engine.Completions())); diff != "" {
		t.Fatalf("published list mismatch (-want +got):\n%s", diff)
	}

	got, err = engine.Fetch(ctx, completion.Query{Text: "x + abc", Offset: 7})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"abc"}, labels(got)); diff != "" {
		t.Fatalf("cache should still hold the earlier parent (-want +got):\n%s", diff)
	}
	if n := client.CallCount(lsclient.MethodExpressionCompletions); n != 2 {
		t.Fatalf("expected two service calls, got %d", n)
	}
}

func TestEngine_FetchErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	client := &testsupport.FakeClient{
		Completions: func(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
			return nil, boom
		},
	}
	engine := completion.NewEngine(client, "main.bal")

	_, err := engine.Fetch(testsupport.Context(), completion.Query{Text: "x", Offset: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped service error, got %v", err)
	}
}

func TestEngine_RetrieveFlushesOnTrigger(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	var (
		mu        sync.Mutex
		published [][]completion.Item
	)
	engine := completion.NewEngine(client, "main.bal",
		completion.WithDelay(time.Hour),
		completion.OnUpdate(func(items []completion.Item) {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, items)
		}),
	)

	engine.Retrieve(testsupport.Context(), completion.Query{Text: "http.", Offset: 5, Trigger: "."})

	mu.Lock()
	defer mu.Unlock()
	if len(published) != 1 {
		t.Fatalf("expected the flushed fetch to publish once, got %d", len(published))
	}
	if diff := cmp.Diff([]string{"http", "https", "json"}, labels(published[0])); diff != "" {
		t.Fatalf("published mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_RetrieveDebounces(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	done := make(chan []completion.Item, 4)
	engine := completion.NewEngine(client, "main.bal",
		completion.WithDelay(20*time.Millisecond),
		completion.OnUpdate(func(items []completion.Item) { done <- items }),
	)
	ctx := testsupport.Context()

	engine.Retrieve(ctx, completion.Query{Text: "h", Offset: 1})
	engine.Retrieve(ctx, completion.Query{Text: "ht", Offset: 2})
	engine.Retrieve(ctx, completion.Query{Text: "htt", Offset: 3})

	select {
	case items := <-done:
		if diff := cmp.Diff([]string{"https", "http"}, labels(items)); diff != "" {
			t.Fatalf("published mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced fetch never ran")
	}
	if n := client.CallCount(lsclient.MethodExpressionCompletions); n != 1 {
		t.Fatalf("expected calls to coalesce, got %d", n)
	}
}

func TestEngine_RetrieveErrorPublishesEmpty(t *testing.T) {
	client := &testsupport.FakeClient{
		Completions: func(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
			return nil, errors.New("offline")
		},
	}
	var published []completion.Item
	calls := 0
	engine := completion.NewEngine(client, "main.bal",
		completion.OnUpdate(func(items []completion.Item) {
			calls++
			published = items
		}),
	)

	engine.Retrieve(testsupport.Context(), completion.Query{Text: "a.", Offset: 2, Trigger: "."})

	if calls != 1 || len(published) != 0 {
		t.Fatalf("expected one empty publish, got %d calls with %+v", calls, published)
	}
}

func TestEngine_CancelClearsState(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	engine := completion.NewEngine(client, "main.bal")
	ctx := testsupport.Context()

	if _, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	engine.Cancel()
	if got := engine.Completions(); len(got) != 0 {
		t.Fatalf("expected empty completions after cancel, got %+v", got)
	}
	if _, err := engine.Fetch(ctx, completion.Query{Text: "htt", Offset: 3}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n := client.CallCount(lsclient.MethodExpressionCompletions); n != 2 {
		t.Fatalf("expected cancel to drop the cache, got %d calls", n)
	}
}
