package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms"
	"github.com/goliatone/go-biforms/pkg/imports"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/renderers/tui"
	"github.com/goliatone/go-biforms/pkg/testsupport"
)

const formPath = "../../testdata/variable.yaml"

func newTestApp(t *testing.T, client *testsupport.FakeClient) (*app, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.connect = func(context.Context, biforms.ServiceConfig, *zap.Logger) (lsclient.Client, error) {
		if client == nil {
			return nil, biforms.ErrNoService
		}
		return client, nil
	}
	return a, &stdout
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	return cmd.ExecuteContext(context.Background())
}

func httpCompletions(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
	return []protocol.CompletionItem{
		{Label: "http", Detail: "module", Kind: protocol.CompletionItemKindModule},
		{Label: "io", Detail: "module", Kind: protocol.CompletionItemKindModule},
	}, nil
}

func TestCompleteCommand(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	a, stdout := newTestApp(t, client)

	err := run(t, a, "complete", "--form", formPath, "--field", "expression", "--text", "htt", "--plain")
	require.NoError(t, err)
	require.Equal(t, "http\n", stdout.String())
	require.Equal(t, 1, client.CallCount(lsclient.MethodFormDidOpen))
	require.Equal(t, 1, client.CallCount(lsclient.MethodFormDidClose))
	require.True(t, client.Closed())
}

func TestCompleteCommand_UnknownField(t *testing.T) {
	a, _ := newTestApp(t, &testsupport.FakeClient{})
	err := run(t, a, "complete", "--form", formPath, "--field", "missing")
	require.ErrorContains(t, err, `no field "missing"`)
}

func TestDiagnoseCommand(t *testing.T) {
	client := &testsupport.FakeClient{
		Diagnostics: func(context.Context, lsclient.DiagnosticsRequest) (lsclient.DiagnosticsResponse, error) {
			return lsclient.DiagnosticsResponse{Diagnostics: []protocol.Diagnostic{
				{Message: "undefined symbol 'htt'", Severity: protocol.DiagnosticSeverityError},
			}}, nil
		},
	}
	a, stdout := newTestApp(t, client)

	require.NoError(t, run(t, a, "diagnose", "--form", formPath))
	var got map[string][]protocol.Diagnostic
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got["expression"], 1)

	a, _ = newTestApp(t, client)
	err := run(t, a, "diagnose", "--form", formPath, "--strict")
	require.True(t, errors.Is(err, errHasErrors), "got %v", err)
}

func TestDiagnoseCommand_NoService(t *testing.T) {
	a, _ := newTestApp(t, nil)
	err := run(t, a, "diagnose", "--form", formPath)
	require.ErrorIs(t, err, biforms.ErrNoService)
}

func TestRenderCommand(t *testing.T) {
	a, stdout := newTestApp(t, nil)
	require.NoError(t, run(t, a, "render", "--form", formPath))
	require.Contains(t, stdout.String(), `name="expression"`)
}

func TestRenderCommand_Errors(t *testing.T) {
	a, stdout := newTestApp(t, nil)
	require.NoError(t, run(t, a, "render", "--form", formPath, "--errors", "../../testdata/errors.yaml"))
	out := stdout.String()
	require.Contains(t, out, `<li>Could not update the source</li>`)
	require.Contains(t, out, `<p class="biforms-error">Name is already used in this scope</p>`)
}

func TestRenderCommand_RequiresForm(t *testing.T) {
	a, _ := newTestApp(t, nil)
	require.Error(t, run(t, a, "render"))
}

type scriptedDriver struct {
	inputs []string
	infos  []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return 0, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestFillCommand_AttachesImports(t *testing.T) {
	client := &testsupport.FakeClient{Completions: httpCompletions}
	a, stdout := newTestApp(t, client)
	a.driver = &scriptedDriver{inputs: []string{"endpoint", "string", `http:get("x")`}}

	err := run(t, a, "--address", "127.0.0.1:1", "fill", "--form", formPath)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Equal(t, "endpoint", got["variable"])
	require.Equal(t, `http:get("x")`, got["expression"])
	require.Contains(t, got, imports.ValuesKey)
}

func TestFillCommand_Offline(t *testing.T) {
	a, stdout := newTestApp(t, nil)
	a.driver = &scriptedDriver{inputs: []string{"endpoint", "string", "1"}}

	require.NoError(t, run(t, a, "fill", "--form", formPath, "--format", "pretty"))
	require.True(t, strings.Contains(stdout.String(), "endpoint"), stdout.String())
}

func TestFillCommand_AnnouncesErrors(t *testing.T) {
	a, _ := newTestApp(t, nil)
	driver := &scriptedDriver{inputs: []string{"endpoint", "string", "1"}}
	a.driver = driver

	require.NoError(t, run(t, a, "fill", "--form", formPath, "--offline", "--errors", "../../testdata/errors.yaml"))
	require.Equal(t, []string{
		"error: Could not update the source",
		"error: Name is already used in this scope",
	}, driver.infos)
}

func TestContractCommand(t *testing.T) {
	a, stdout := newTestApp(t, nil)
	require.NoError(t, run(t, a, "contract", "../../pkg/contract/testdata/petstore.yaml"))
	out := stdout.String()
	require.Contains(t, out, "listPets")
	require.Contains(t, out, "pets/[int petId]")

	a, stdout = newTestApp(t, nil)
	require.NoError(t, run(t, a, "contract", "../../pkg/contract/testdata/petstore.yaml", "--operation", "listPets"))
	require.Contains(t, stdout.String(), `"fields"`)

	a, _ = newTestApp(t, nil)
	err := run(t, a, "contract", "../../pkg/contract/testdata/petstore.yaml", "--operation", "nope")
	require.ErrorContains(t, err, "not found")
}
