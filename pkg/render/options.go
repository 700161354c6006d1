package render

import (
	theme "github.com/goliatone/go-theme"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/completion"
)

// RenderOptions carry per-request data renderers use without mutating the
// form.
type RenderOptions struct {
	// Values pre-populate fields by key. Missing keys fall back to the field
	// value.
	Values map[string]any
	// Errors holds raw error payloads keyed by field path. Renderers normalise
	// them with MapErrorPayload.
	Errors map[string][]string
	// Diagnostics are shown under the matching expression field.
	Diagnostics map[string][]protocol.Diagnostic
	// Completions are offered as suggestions for the matching field.
	Completions map[string][]completion.Item
	// Hidden fields are emitted alongside the visible ones.
	Hidden []HiddenField
	// Theme supplies tokens, partial overrides and asset URLs.
	Theme *theme.RendererConfig
}
