// Package lsclient is the boundary to the language service that backs the
// expression editor. It defines the request and response records, the
// Client interface the rest of the module depends on, and a JSON-RPC 2.0
// implementation that speaks to the service over a byte stream or a
// WebSocket.
package lsclient

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/expression"
)

// ExpressionService covers the calls made while an expression is edited.
type ExpressionService interface {
	ExpressionCompletions(ctx context.Context, req CompletionsRequest) ([]protocol.CompletionItem, error)
	DataMapperCompletions(ctx context.Context, req CompletionsRequest) ([]protocol.CompletionItem, error)
	VisibleTypes(ctx context.Context, req VisibleTypesRequest) ([]VisibleTypeItem, error)
	ExpressionDiagnostics(ctx context.Context, req DiagnosticsRequest) (DiagnosticsResponse, error)
	SignatureHelp(ctx context.Context, req SignatureHelpRequest) (SignatureHelpResponse, error)
	UpdateImports(ctx context.Context, req UpdateImportsRequest) (UpdateImportsResponse, error)
	EndOfFile(ctx context.Context, req EndOfFileRequest) (expression.LinePosition, error)
}

// FormLifecycle tells the service which file a form is editing.
type FormLifecycle interface {
	FormDidOpen(ctx context.Context, params FormDidOpenParams) error
	FormDidClose(ctx context.Context, params FormDidCloseParams) error
}

// ArtifactService creates and updates source artifacts.
type ArtifactService interface {
	AddFunctionSourceCode(ctx context.Context, req FunctionSourceCodeRequest) (SourceEditResponse, error)
	UpdateResourceSourceCode(ctx context.Context, req FunctionSourceCodeRequest) (SourceEditResponse, error)
	ServiceClassModel(ctx context.Context, req ModelFromCodeRequest) (ServiceClassModelResponse, error)
	AddClassField(ctx context.Context, req AddFieldRequest) (SourceEditResponse, error)
	UpdateClassField(ctx context.Context, req ClassFieldModifierRequest) (SourceEditResponse, error)
	RenameIdentifier(ctx context.Context, req RenameIdentifierRequest) error
}

// Notifier delivers host push notifications. Subscriptions return a function
// that removes the handler.
type Notifier interface {
	OnThemeChanged(fn func(ThemeKind)) (unsubscribe func())
	OnProjectContentUpdated(fn func(bool)) (unsubscribe func())
}

// Client is the full surface of the language service.
type Client interface {
	ExpressionService
	FormLifecycle
	ArtifactService
	Notifier
	Close() error
}
