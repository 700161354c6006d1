// Package contract imports HTTP resources from OpenAPI documents so they can
// be edited as resource forms.
package contract

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrEmptyDocument is returned for an empty payload.
	ErrEmptyDocument = errors.New("contract: document payload is empty")
	// ErrNoOperations is returned when a document yields no resources.
	ErrNoOperations = errors.New("contract: no operations extracted")
)

// methodOrder fixes the order resources of one path are emitted in.
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE"}

// Param is one path, query or header parameter of a resource.
type Param struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Resource is one operation of the contract.
type Resource struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	OperationID string            `json:"operationId"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Params      []Param           `json:"params,omitempty"`
	Payload     string            `json:"payload,omitempty"`
	Responses   map[string]string `json:"responses,omitempty"`
}

// Option configures Parse.
type Option func(*options)

type options struct {
	externalRefs bool
	validate     bool
	allowEmpty   bool
}

// WithExternalRefs allows $ref values pointing outside the document.
func WithExternalRefs() Option {
	return func(o *options) { o.externalRefs = true }
}

// WithValidation validates the document before extracting resources.
func WithValidation() Option {
	return func(o *options) { o.validate = true }
}

// AllowEmpty accepts documents without operations.
func AllowEmpty() Option {
	return func(o *options) { o.allowEmpty = true }
}

// Parse extracts resources from a JSON or YAML OpenAPI 3 document. Resources
// are ordered by path, then by method.
func Parse(ctx context.Context, raw []byte, opts ...Option) ([]Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyDocument
	}
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = cfg.externalRefs

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("contract: validate: %w", err)
		}
	}

	var resources []Resource
	if spec.Paths != nil {
		paths := spec.Paths.Map()
		keys := make([]string, 0, len(paths))
		for path := range paths {
			keys = append(keys, path)
		}
		sort.Strings(keys)

		for _, path := range keys {
			item := paths[path]
			if item == nil {
				continue
			}
			for _, method := range methodOrder {
				op := item.GetOperation(method)
				if op == nil {
					continue
				}
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				resources = append(resources, newResource(method, path, item, op))
			}
		}
	}

	if len(resources) == 0 && !cfg.allowEmpty {
		return nil, ErrNoOperations
	}
	return resources, nil
}

func newResource(method, path string, item *openapi3.PathItem, op *openapi3.Operation) Resource {
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	return Resource{
		Method:      method,
		Path:        path,
		OperationID: id,
		Summary:     op.Summary,
		Description: op.Description,
		Params:      collectParams(item.Parameters, op.Parameters),
		Payload:     payloadType(op.RequestBody),
		Responses:   responseTypes(op.Responses),
	}
}

// collectParams merges path-level and operation-level parameters, the latter
// overriding by name and location. Path parameters come first.
func collectParams(shared, own openapi3.Parameters) []Param {
	type key struct{ name, in string }
	index := make(map[key]int)
	var out []Param

	for _, list := range []openapi3.Parameters{shared, own} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := ref.Value
			param := Param{
				Name:        p.Name,
				In:          p.In,
				Type:        typeName(p.Schema),
				Required:    p.Required || p.In == openapi3.ParameterInPath,
				Description: p.Description,
			}
			if p.Schema != nil && p.Schema.Value != nil {
				param.Default = p.Schema.Value.Default
			}
			k := key{p.Name, p.In}
			if idx, ok := index[k]; ok {
				out[idx] = param
				continue
			}
			index[k] = len(out)
			out = append(out, param)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return paramRank(out[i].In) < paramRank(out[j].In)
	})
	return out
}

func paramRank(in string) int {
	switch in {
	case openapi3.ParameterInPath:
		return 0
	case openapi3.ParameterInQuery:
		return 1
	case openapi3.ParameterInHeader:
		return 2
	default:
		return 3
	}
}

func payloadType(body *openapi3.RequestBodyRef) string {
	if body == nil {
		return ""
	}
	if body.Value == nil {
		return refName(body.Ref)
	}
	return contentType(body.Value.Content)
}

func responseTypes(responses *openapi3.Responses) map[string]string {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	out := make(map[string]string)
	for status, ref := range responses.Map() {
		if ref == nil {
			continue
		}
		if ref.Value == nil {
			if name := refName(ref.Ref); name != "" {
				out[status] = name
			}
			continue
		}
		if name := contentType(ref.Value.Content); name != "" {
			out[status] = name
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// contentType prefers JSON, then form encodings, then any media type.
func contentType(content openapi3.Content) string {
	if len(content) == 0 {
		return ""
	}
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt := content.Get(mediaType); mt != nil {
			return typeName(mt.Schema)
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return typeName(content[keys[0]].Schema)
}

// typeName renders a schema as a source-level type: named references keep
// their component name, arrays append "[]", nullable types append "?".
func typeName(ref *openapi3.SchemaRef) string {
	if ref == nil {
		return "json"
	}
	if name := refName(ref.Ref); name != "" {
		if ref.Value != nil && ref.Value.Nullable {
			return name + "?"
		}
		return name
	}
	schema := ref.Value
	if schema == nil {
		return "json"
	}

	var name string
	switch firstSchemaType(schema.Type) {
	case openapi3.TypeString:
		if schema.Format == "binary" || schema.Format == "byte" {
			name = "byte[]"
		} else {
			name = "string"
		}
	case openapi3.TypeInteger:
		name = "int"
	case openapi3.TypeNumber:
		if schema.Format == "float" || schema.Format == "double" {
			name = "float"
		} else {
			name = "decimal"
		}
	case openapi3.TypeBoolean:
		name = "boolean"
	case openapi3.TypeArray:
		elem := typeName(schema.Items)
		if strings.HasSuffix(elem, "?") {
			elem = "(" + elem + ")"
		}
		name = elem + "[]"
	case openapi3.TypeObject:
		if len(schema.Properties) == 0 {
			name = "map<json>"
		} else {
			name = "record {}"
		}
	default:
		name = "json"
	}
	if schema.Nullable && name != "json" {
		name += "?"
	}
	return name
}

func refName(ref string) string {
	if ref == "" {
		return ""
	}
	idx := strings.LastIndex(ref, "/")
	return ref[idx+1:]
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
