package completion

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
)

// DefaultTypesCacheSize bounds the number of fields whose visible types are
// kept at once.
const DefaultTypesCacheSize = 64

const defaultTypesKey = "default"

// dataMapperConstraint marks a types request made for the data mapper.
const dataMapperConstraint = "json"

var unsupportedDataMapperTypes = map[string]struct{}{
	"Nil":  {},
	"Byte": {},
	"Map":  {},
}

// TypesService is the subset of the language service used by TypeCache.
type TypesService interface {
	VisibleTypes(ctx context.Context, req lsclient.VisibleTypesRequest) ([]lsclient.VisibleTypeItem, error)
}

// TypeCache remembers the types visible to each field of a form. Entries
// live until Purge, which callers run when the project content changes.
type TypeCache struct {
	svc      TypesService
	filePath string
	anchor   *expression.Anchor
	cache    *lru.Cache[string, []Item]
}

// NewTypeCache returns a cache holding up to size fields. A non-positive size
// uses DefaultTypesCacheSize.
func NewTypeCache(svc TypesService, filePath string, anchor *expression.Anchor, size int) (*TypeCache, error) {
	if size <= 0 {
		size = DefaultTypesCacheSize
	}
	cache, err := lru.New[string, []Item](size)
	if err != nil {
		return nil, fmt.Errorf("completion: types cache: %w", err)
	}
	if anchor == nil {
		anchor = expression.NewAnchor(nil)
	}
	return &TypeCache{svc: svc, filePath: filePath, anchor: anchor, cache: cache}, nil
}

// TypesQuery asks for the types matching the text before the cursor. Cursor
// is a byte offset into Text.
type TypesQuery struct {
	FieldKey       string
	Text           string
	Cursor         int
	TypeConstraint string
}

// Types returns the visible types for q.FieldKey filtered by the text before
// the cursor. The service is only called on a cache miss.
func (c *TypeCache) Types(ctx context.Context, q TypesQuery) ([]Item, error) {
	all, err := c.All(ctx, q.FieldKey, q.TypeConstraint)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(expression.Prefix(q.Text, q.Cursor))
	out := make([]Item, 0, len(all))
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Label), needle) {
			out = append(out, item)
		}
	}
	return out, nil
}

// All returns every visible type for fieldKey.
func (c *TypeCache) All(ctx context.Context, fieldKey, typeConstraint string) ([]Item, error) {
	key := fieldKey
	if key == "" {
		key = defaultTypesKey
	}
	if items, ok := c.cache.Get(key); ok {
		return items, nil
	}

	req := lsclient.VisibleTypesRequest{
		FilePath:       c.filePath,
		TypeConstraint: typeConstraint,
	}
	if start := c.anchor.StartLine(); start != nil {
		req.Position = *start
	}
	raw, err := c.svc.VisibleTypes(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("completion: visible types: %w", err)
	}
	items := ConvertTypes(raw, typeConstraint == dataMapperConstraint)
	c.cache.Add(key, items)
	return items, nil
}

// Purge drops every cached entry.
func (c *TypeCache) Purge() {
	c.cache.Purge()
}

// Len reports how many fields have cached types.
func (c *TypeCache) Len() int {
	return c.cache.Len()
}

// ConvertTypes maps visible types to completion items. When dataMapper is set
// types the data mapper cannot handle are dropped.
func ConvertTypes(types []lsclient.VisibleTypeItem, dataMapper bool) []Item {
	items := make([]Item, 0, len(types))
	for _, t := range types {
		if t.Label == "" && t.InsertText == "" {
			continue
		}
		if dataMapper {
			if _, skip := unsupportedDataMapperTypes[t.LabelDetails.Description]; skip {
				continue
			}
		}
		items = append(items, Item{
			Label: t.Label,
			Value: t.InsertText,
			Kind:  KindOf(t.Kind),
		})
	}
	return items
}
