package render

import (
	"context"

	"github.com/goliatone/go-biforms/pkg/model"
)

// Renderer turns a form into a byte representation such as HTML or the JSON
// values collected by an interactive prompt.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
