package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/completion"
	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/model"
	"github.com/goliatone/go-biforms/pkg/render"
	"github.com/goliatone/go-biforms/pkg/renderers/html"
	"github.com/goliatone/go-biforms/pkg/renderers/tui"
	"github.com/goliatone/go-biforms/pkg/widgets"
)

func sampleForm() model.Form {
	return model.Form{
		FilePath: "main.bal",
		TargetLineRange: &expression.LineRange{
			StartLine: expression.LinePosition{Line: 3},
			EndLine:   expression.LinePosition{Line: 5},
		},
		Fields: []model.Field{
			&model.IdentifierField{FieldBase: model.FieldBase{
				Key: "variable", Label: "Name", Editable: true, Value: "url",
				Documentation: `Name of the <b>variable</b><script>alert(1)</script>`,
			}},
			&model.ExpressionField{
				FieldBase: model.FieldBase{
					Key: "expression", Label: "Expression", Editable: true, Optional: true,
					AdvanceFields: []model.Field{
						&model.TextField{FieldBase: model.FieldBase{Key: "comment", Label: "Comment", Editable: true}, RawKind: model.FieldKindText},
					},
				},
				ShowDiagnostics: true,
			},
			&model.FlagField{FieldBase: model.FieldBase{Key: "isPublic", Label: "Public", Editable: true, Value: true}},
			&model.SelectField{FieldBase: model.FieldBase{Key: "method", Label: "Method", Editable: true, Value: "post"}, Items: []string{"get", "post"}},
			&model.ParamManagerField{
				FieldBase: model.FieldBase{Key: "params", Label: "Parameters", Editable: true},
				Params: []model.Param{{
					Key: "id", Value: "int id",
					Fields: []model.Field{&model.TypeField{FieldBase: model.FieldBase{Key: "type", Label: "Type", Editable: true, Value: "int"}}},
				}},
			},
		},
	}
}

func TestRendererName(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)
	require.Equal(t, "html", renderer.Name())
	require.Contains(t, renderer.ContentType(), "text/html")
}

func TestRenderer_Render(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{
		Values: map[string]any{"expression": "htt"},
		Errors: map[string][]string{
			"/variable":      {"Name is taken"},
			"params/id/type": {"Unknown type"},
			"__all__":        {"Could not save"},
		},
		Diagnostics: map[string][]protocol.Diagnostic{
			"expression": {{Message: "undefined symbol htt"}},
		},
		Completions: map[string][]completion.Item{
			"expression": {{Label: "http", Value: "http", Description: "module"}},
		},
		Hidden: []render.HiddenField{render.Hidden("nodeKind", "VARIABLE")},
	})
	require.NoError(t, err)
	markup := string(out)

	for _, want := range []string{
		`<form class="biforms">`,
		`<input type="hidden" name="__filePath" value="main.bal">`,
		`<input type="hidden" name="nodeKind" value="VARIABLE">`,
		`<li>Could not save</li>`,
		`name="variable" value="url"`,
		`Name of the <b>variable</b>`,
		`<p class="biforms-error">Name is taken</p>`,
		`name="expression" value="htt"`,
		`list="field-expression-suggestions"`,
		`<option value="http">http module</option>`,
		`<p class="biforms-diagnostic">undefined symbol htt</p>`,
		`<details class="biforms-advanced">`,
		`<textarea id="field-comment" name="comment">`,
		`name="isPublic" value="true" checked`,
		`<option value="post" selected>post</option>`,
		`<fieldset class="biforms-param" data-param="id">`,
		`<legend>int id</legend>`,
		`name="params.id.type" value="int"`,
		`<p class="biforms-error">Unknown type</p>`,
	} {
		require.Contains(t, markup, want)
	}
	require.NotContains(t, markup, "<script>")
}

func TestRenderer_HiddenFieldsMergedAndSorted(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{
		Hidden: []render.HiddenField{
			render.Hidden("nodeKind", "VARIABLE"),
			render.Hidden(render.HiddenFilePath, "other.bal"),
			render.Hidden("  ", "dropped"),
		},
	})
	require.NoError(t, err)
	markup := string(out)

	filePath := `<input type="hidden" name="__filePath" value="other.bal">`
	targetRange := `<input type="hidden" name="__targetLineRange"`
	nodeKind := `<input type="hidden" name="nodeKind" value="VARIABLE">`
	for _, want := range []string{filePath, targetRange, nodeKind} {
		require.Contains(t, markup, want)
	}
	require.NotContains(t, markup, `value="main.bal"`)
	require.NotContains(t, markup, "dropped")
	require.Less(t, strings.Index(markup, filePath), strings.Index(markup, targetRange))
	require.Less(t, strings.Index(markup, targetRange), strings.Index(markup, nodeKind))
}

func TestRenderer_ExpressionFieldDiagnostics(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)

	form := model.Form{Fields: []model.Field{
		&model.ExpressionField{
			FieldBase:       model.FieldBase{Key: "condition", Label: "Condition", Editable: true},
			ShowDiagnostics: true,
			Diagnostics:     []protocol.Diagnostic{{Message: "expected boolean"}},
		},
		&model.ExpressionField{
			FieldBase:   model.FieldBase{Key: "quiet", Label: "Quiet", Editable: true},
			Diagnostics: []protocol.Diagnostic{{Message: "hidden diagnostic"}},
		},
	}}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
	require.NoError(t, err)
	require.Contains(t, string(out), "expected boolean")
	require.NotContains(t, string(out), "hidden diagnostic")
}

func TestRenderer_ThemePartial(t *testing.T) {
	overrides := fstest.MapFS{
		"themes/studio/flag.tpl": {Data: []byte(`<label class="studio-toggle">{{ field.label }}</label>`)},
	}
	renderer, err := html.New(html.WithTemplatesFS(overrides))
	require.NoError(t, err)

	cfg := render.ThemeConfig(studioManifest(), "dark")
	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{Theme: cfg})
	require.NoError(t, err)
	markup := string(out)

	require.Contains(t, markup, `data-theme="studio" data-variant="dark"`)
	require.Contains(t, markup, `style="--brand: #123456; --surface: #1e1e1e;"`)
	require.Contains(t, markup, `<link rel="stylesheet" href="/assets/studio/theme.css">`)
	require.Contains(t, markup, `<label class="studio-toggle">Public</label>`)
	require.Equal(t, 1, strings.Count(markup, "studio-toggle"))
}

func TestRenderer_MissingPartialFallsBack(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)

	cfg := render.ThemeConfig(studioManifest(), "dark")
	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{Theme: cfg})
	require.NoError(t, err)
	require.Contains(t, string(out), `name="isPublic"`)
}

func TestRenderer_RegistersWithRegistry(t *testing.T) {
	htmlRenderer, err := html.New()
	require.NoError(t, err)
	tuiRenderer, err := tui.New()
	require.NoError(t, err)
	registry, err := render.NewRegistry(htmlRenderer, tuiRenderer)
	require.NoError(t, err)
	require.Equal(t, []string{"html", "tui"}, registry.List())
}

func TestRenderer_WidgetOverride(t *testing.T) {
	reg := widgets.NewRegistry()
	reg.Override("variable", widgets.WidgetTextArea)

	renderer, err := html.New(html.WithWidgets(reg))
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{})
	require.NoError(t, err)
	require.Contains(t, string(out), `<textarea id="field-variable" name="variable"`)
}

func TestSanitizeDocumentation(t *testing.T) {
	got := html.SanitizeDocumentation(`  <p onclick="x()">Use <code>http:Client</code> <a href="https://example.com">docs</a></p><img src=x> `)
	require.Equal(t, `<p>Use <code>http:Client</code> <a href="https://example.com" rel="nofollow">docs</a></p>`, got)
	require.Empty(t, html.SanitizeDocumentation("   "))
}
