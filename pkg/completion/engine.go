package completion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/debounce"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
)

// ErrStale reports a response that arrived after a newer fetch or a Cancel.
var ErrStale = errors.New("completion: stale response")

// Service is the subset of the language service the engine calls.
type Service interface {
	ExpressionCompletions(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error)
	DataMapperCompletions(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error)
}

// Query describes the editor state a completion request is made for. Offset
// is the cursor as a byte offset into Text.
type Query struct {
	Text     string
	Offset   int
	Property *model.Property
	Trigger  string
}

// Engine serves completions for the expression fields of one form. It caches
// the last service response and reuses it while the user keeps typing inside
// the same parent expression.
type Engine struct {
	svc        Service
	filePath   string
	anchor     *expression.Anchor
	logger     *zap.Logger
	delay      time.Duration
	debouncer  *debounce.Debouncer
	dataMapper bool
	onUpdate   func([]Item)

	mu         sync.Mutex
	cache      []Item
	filtered   []Item
	lastParent string
	generation uint64
}

// NewEngine returns an engine for filePath backed by svc.
func NewEngine(svc Service, filePath string, opts ...Option) *Engine {
	e := &Engine{
		svc:      svc,
		filePath: filePath,
		anchor:   expression.NewAnchor(nil),
		logger:   zap.NewNop(),
		delay:    debounce.DefaultDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.debouncer = debounce.New(e.delay)
	return e
}

// Fetch computes completions for q without debouncing.
func (e *Engine) Fetch(ctx context.Context, q Query) ([]Item, error) {
	parent, current := expression.Split(q.Text, q.Offset)

	e.mu.Lock()
	// Every fetch, cached or not, supersedes requests still in flight.
	e.generation++
	gen := e.generation
	if q.Trigger == "" && len(e.cache) > 0 && parent == e.lastParent {
		items := Filter(e.cache, current)
		e.filtered = items
		e.mu.Unlock()
		e.publish(items)
		return items, nil
	}
	e.mu.Unlock()

	raw, err := e.request(ctx, e.buildRequest(q))
	if err != nil {
		if e.stale(gen) {
			return nil, ErrStale
		}
		return nil, fmt.Errorf("completion: fetch: %w", err)
	}

	converted := ConvertAll(raw)
	items := converted
	if q.Trigger == "" {
		items = Filter(converted, current)
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return nil, ErrStale
	}
	e.cache = converted
	e.filtered = items
	e.lastParent = parent
	e.mu.Unlock()

	e.publish(items)
	return items, nil
}

// Retrieve schedules a debounced Fetch. A trigger character flushes the
// pending call so the result is published before Retrieve returns. Failures
// are logged and publish an empty list.
func (e *Engine) Retrieve(ctx context.Context, q Query) {
	e.debouncer.Schedule(func() {
		if _, err := e.Fetch(ctx, q); err != nil {
			if errors.Is(err, ErrStale) {
				e.logger.Debug("completion response discarded", zap.String("file", e.filePath))
				return
			}
			e.logger.Error("completion fetch failed",
				zap.String("file", e.filePath),
				zap.Error(err),
			)
			e.mu.Lock()
			e.filtered = nil
			e.mu.Unlock()
			e.publish(nil)
		}
	})
	if q.Trigger != "" {
		e.debouncer.Flush()
	}
}

// Cancel drops any pending request and clears cached state. Responses to
// requests already in flight are discarded.
func (e *Engine) Cancel() {
	e.debouncer.Cancel()
	e.mu.Lock()
	e.generation++
	e.cache = nil
	e.filtered = nil
	e.lastParent = ""
	e.mu.Unlock()
	e.publish(nil)
}

// Completions returns the last published list.
func (e *Engine) Completions() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Item(nil), e.filtered...)
}

func (e *Engine) buildRequest(q Query) lsclient.CompletionsRequest {
	lineOffset, charOffset := expression.Offsets(q.Text, q.Offset)
	return lsclient.CompletionsRequest{
		FilePath: e.filePath,
		Context: lsclient.ExpressionContext{
			Expression: q.Text,
			StartLine:  e.anchor.StartLine(),
			LineOffset: lineOffset,
			Offset:     charOffset,
			Property:   q.Property,
		},
		CompletionContext: protocol.CompletionContext{
			TriggerKind:      expression.TriggerKind(q.Trigger),
			TriggerCharacter: q.Trigger,
		},
	}
}

func (e *Engine) request(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
	if e.dataMapper {
		return e.svc.DataMapperCompletions(ctx, req)
	}
	return e.svc.ExpressionCompletions(ctx, req)
}

func (e *Engine) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.generation
}

func (e *Engine) publish(items []Item) {
	if e.onUpdate != nil {
		e.onUpdate(append([]Item(nil), items...))
	}
}

// Filter keeps the items whose label contains current, ignoring case, and
// orders them by sort text. The input is not modified.
func Filter(items []Item, current string) []Item {
	needle := strings.ToLower(current)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Label), needle) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortText < out[j].SortText
	})
	return out
}
