package testsupport

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
)

// Call is a request recorded by FakeClient.
type Call struct {
	Method string
	Params any
}

// FakeClient is an in-memory lsclient.Client. Every call is recorded; the
// optional hooks decide the response and default to zero values. Tests push
// notifications through the embedded Hub.
type FakeClient struct {
	lsclient.Hub

	Completions    func(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error)
	DataMapper     func(context.Context, lsclient.CompletionsRequest) ([]protocol.CompletionItem, error)
	Types          func(context.Context, lsclient.VisibleTypesRequest) ([]lsclient.VisibleTypeItem, error)
	Diagnostics    func(context.Context, lsclient.DiagnosticsRequest) (lsclient.DiagnosticsResponse, error)
	Signature      func(context.Context, lsclient.SignatureHelpRequest) (lsclient.SignatureHelpResponse, error)
	Imports        func(context.Context, lsclient.UpdateImportsRequest) (lsclient.UpdateImportsResponse, error)
	EOF            func(context.Context, lsclient.EndOfFileRequest) (expression.LinePosition, error)
	AddFunction    func(context.Context, lsclient.FunctionSourceCodeRequest) (lsclient.SourceEditResponse, error)
	UpdateResource func(context.Context, lsclient.FunctionSourceCodeRequest) (lsclient.SourceEditResponse, error)
	ClassModel     func(context.Context, lsclient.ModelFromCodeRequest) (lsclient.ServiceClassModelResponse, error)
	AddField       func(context.Context, lsclient.AddFieldRequest) (lsclient.SourceEditResponse, error)
	UpdateField    func(context.Context, lsclient.ClassFieldModifierRequest) (lsclient.SourceEditResponse, error)
	Rename         func(context.Context, lsclient.RenameIdentifierRequest) error

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ lsclient.Client = (*FakeClient)(nil)

func (f *FakeClient) record(method string, params any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Params: params})
}

// Calls returns the recorded calls for method, or every call when method is
// empty.
func (f *FakeClient) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, 0, len(f.calls))
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount reports how many times method was called.
func (f *FakeClient) CallCount(method string) int {
	return len(f.Calls(method))
}

// Reset forgets recorded calls.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Closed reports whether Close was called.
func (f *FakeClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeClient) ExpressionCompletions(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
	f.record(lsclient.MethodExpressionCompletions, req)
	if f.Completions == nil {
		return nil, nil
	}
	return f.Completions(ctx, req)
}

func (f *FakeClient) DataMapperCompletions(ctx context.Context, req lsclient.CompletionsRequest) ([]protocol.CompletionItem, error) {
	f.record(lsclient.MethodDataMapperCompletions, req)
	if f.DataMapper == nil {
		return nil, nil
	}
	return f.DataMapper(ctx, req)
}

func (f *FakeClient) VisibleTypes(ctx context.Context, req lsclient.VisibleTypesRequest) ([]lsclient.VisibleTypeItem, error) {
	f.record(lsclient.MethodVisibleTypes, req)
	if f.Types == nil {
		return nil, nil
	}
	return f.Types(ctx, req)
}

func (f *FakeClient) ExpressionDiagnostics(ctx context.Context, req lsclient.DiagnosticsRequest) (lsclient.DiagnosticsResponse, error) {
	f.record(lsclient.MethodExpressionDiagnostics, req)
	if f.Diagnostics == nil {
		return lsclient.DiagnosticsResponse{}, nil
	}
	return f.Diagnostics(ctx, req)
}

func (f *FakeClient) SignatureHelp(ctx context.Context, req lsclient.SignatureHelpRequest) (lsclient.SignatureHelpResponse, error) {
	f.record(lsclient.MethodSignatureHelp, req)
	if f.Signature == nil {
		return lsclient.SignatureHelpResponse{}, nil
	}
	return f.Signature(ctx, req)
}

func (f *FakeClient) UpdateImports(ctx context.Context, req lsclient.UpdateImportsRequest) (lsclient.UpdateImportsResponse, error) {
	f.record(lsclient.MethodUpdateImports, req)
	if f.Imports == nil {
		return lsclient.UpdateImportsResponse{}, nil
	}
	return f.Imports(ctx, req)
}

func (f *FakeClient) EndOfFile(ctx context.Context, req lsclient.EndOfFileRequest) (expression.LinePosition, error) {
	f.record(lsclient.MethodEndOfFile, req)
	if f.EOF == nil {
		return expression.LinePosition{}, nil
	}
	return f.EOF(ctx, req)
}

func (f *FakeClient) FormDidOpen(_ context.Context, params lsclient.FormDidOpenParams) error {
	f.record(lsclient.MethodFormDidOpen, params)
	return nil
}

func (f *FakeClient) FormDidClose(_ context.Context, params lsclient.FormDidCloseParams) error {
	f.record(lsclient.MethodFormDidClose, params)
	return nil
}

func (f *FakeClient) AddFunctionSourceCode(ctx context.Context, req lsclient.FunctionSourceCodeRequest) (lsclient.SourceEditResponse, error) {
	f.record(lsclient.MethodAddFunctionSourceCode, req)
	if f.AddFunction == nil {
		return lsclient.SourceEditResponse{}, nil
	}
	return f.AddFunction(ctx, req)
}

func (f *FakeClient) UpdateResourceSourceCode(ctx context.Context, req lsclient.FunctionSourceCodeRequest) (lsclient.SourceEditResponse, error) {
	f.record(lsclient.MethodUpdateResourceSourceCode, req)
	if f.UpdateResource == nil {
		return lsclient.SourceEditResponse{}, nil
	}
	return f.UpdateResource(ctx, req)
}

func (f *FakeClient) ServiceClassModel(ctx context.Context, req lsclient.ModelFromCodeRequest) (lsclient.ServiceClassModelResponse, error) {
	f.record(lsclient.MethodServiceClassModel, req)
	if f.ClassModel == nil {
		return lsclient.ServiceClassModelResponse{}, nil
	}
	return f.ClassModel(ctx, req)
}

func (f *FakeClient) AddClassField(ctx context.Context, req lsclient.AddFieldRequest) (lsclient.SourceEditResponse, error) {
	f.record(lsclient.MethodAddClassField, req)
	if f.AddField == nil {
		return lsclient.SourceEditResponse{}, nil
	}
	return f.AddField(ctx, req)
}

func (f *FakeClient) UpdateClassField(ctx context.Context, req lsclient.ClassFieldModifierRequest) (lsclient.SourceEditResponse, error) {
	f.record(lsclient.MethodUpdateClassField, req)
	if f.UpdateField == nil {
		return lsclient.SourceEditResponse{}, nil
	}
	return f.UpdateField(ctx, req)
}

func (f *FakeClient) RenameIdentifier(ctx context.Context, req lsclient.RenameIdentifierRequest) error {
	f.record(lsclient.MethodRenameIdentifier, req)
	if f.Rename == nil {
		return nil
	}
	return f.Rename(ctx, req)
}

func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
