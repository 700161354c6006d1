package biforms

import (
	"io/fs"

	"github.com/goliatone/go-biforms/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in html renderer templates so callers
// can copy or override them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
