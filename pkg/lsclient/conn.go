package lsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/expression"
)

// Conn implements Client over a JSON-RPC 2.0 connection.
type Conn struct {
	Hub

	rpc     jsonrpc2.Conn
	logger  *zap.Logger
	closers []io.Closer
}

var _ Client = (*Conn)(nil)

// New starts serving stream and returns a client bound to it. Inbound
// notifications are handled until ctx is cancelled or the connection closes.
func New(ctx context.Context, stream jsonrpc2.Stream, options ...Option) *Conn {
	c := &Conn{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.rpc = jsonrpc2.NewConn(stream)
	c.rpc.Go(ctx, c.handle)
	return c
}

// NewFromReadWriteCloser frames messages on rwc with Content-Length headers,
// the framing used over stdio and TCP.
func NewFromReadWriteCloser(ctx context.Context, rwc io.ReadWriteCloser, options ...Option) *Conn {
	return New(ctx, jsonrpc2.NewStream(rwc), options...)
}

// Done is closed once the connection stops.
func (c *Conn) Done() <-chan struct{} {
	return c.rpc.Done()
}

// Close shuts the connection down and releases registered resources.
func (c *Conn) Close() error {
	err := c.rpc.Close()
	<-c.rpc.Done()
	for i := len(c.closers) - 1; i >= 0; i-- {
		if cerr := c.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

func (c *Conn) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case NotificationThemeChanged:
		var kind ThemeKind
		if err := json.Unmarshal(req.Params(), &kind); err != nil {
			c.logger.Warn("lsclient: decode theme notification", zap.Error(err))
			return reply(ctx, nil, fmt.Errorf("%w: %v", jsonrpc2.ErrInvalidParams, err))
		}
		c.PublishThemeChanged(kind)
		return reply(ctx, nil, nil)
	case NotificationProjectContentUpdated:
		var updated bool
		if err := json.Unmarshal(req.Params(), &updated); err != nil {
			c.logger.Warn("lsclient: decode project notification", zap.Error(err))
			return reply(ctx, nil, fmt.Errorf("%w: %v", jsonrpc2.ErrInvalidParams, err))
		}
		c.PublishProjectContentUpdated(updated)
		return reply(ctx, nil, nil)
	default:
		c.logger.Debug("lsclient: unhandled inbound method", zap.String("method", req.Method()))
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (c *Conn) call(ctx context.Context, method string, params, result any) error {
	if _, err := c.rpc.Call(ctx, method, params, result); err != nil {
		c.logger.Debug("lsclient: call failed", zap.String("method", method), zap.Error(err))
		return fmt.Errorf("lsclient: %s: %w", method, err)
	}
	return nil
}

func (c *Conn) notify(ctx context.Context, method string, params any) error {
	if err := c.rpc.Notify(ctx, method, params); err != nil {
		return fmt.Errorf("lsclient: %s: %w", method, err)
	}
	return nil
}

// ExpressionCompletions implements ExpressionService.
func (c *Conn) ExpressionCompletions(ctx context.Context, req CompletionsRequest) ([]protocol.CompletionItem, error) {
	var out []protocol.CompletionItem
	err := c.call(ctx, MethodExpressionCompletions, normalizeCompletions(req), &out)
	return out, err
}

// DataMapperCompletions implements ExpressionService.
func (c *Conn) DataMapperCompletions(ctx context.Context, req CompletionsRequest) ([]protocol.CompletionItem, error) {
	var out []protocol.CompletionItem
	err := c.call(ctx, MethodDataMapperCompletions, normalizeCompletions(req), &out)
	return out, err
}

// VisibleTypes implements ExpressionService.
func (c *Conn) VisibleTypes(ctx context.Context, req VisibleTypesRequest) ([]VisibleTypeItem, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out []VisibleTypeItem
	err := c.call(ctx, MethodVisibleTypes, req, &out)
	return out, err
}

// ExpressionDiagnostics implements ExpressionService.
func (c *Conn) ExpressionDiagnostics(ctx context.Context, req DiagnosticsRequest) (DiagnosticsResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out DiagnosticsResponse
	err := c.call(ctx, MethodExpressionDiagnostics, req, &out)
	return out, err
}

// SignatureHelp implements ExpressionService.
func (c *Conn) SignatureHelp(ctx context.Context, req SignatureHelpRequest) (SignatureHelpResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out SignatureHelpResponse
	err := c.call(ctx, MethodSignatureHelp, req, &out)
	return out, err
}

// UpdateImports implements ExpressionService.
func (c *Conn) UpdateImports(ctx context.Context, req UpdateImportsRequest) (UpdateImportsResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out UpdateImportsResponse
	err := c.call(ctx, MethodUpdateImports, req, &out)
	return out, err
}

// EndOfFile implements ExpressionService.
func (c *Conn) EndOfFile(ctx context.Context, req EndOfFileRequest) (expression.LinePosition, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out expression.LinePosition
	err := c.call(ctx, MethodEndOfFile, req, &out)
	return out, err
}

// FormDidOpen implements FormLifecycle.
func (c *Conn) FormDidOpen(ctx context.Context, params FormDidOpenParams) error {
	params.FilePath = NormalizePath(params.FilePath)
	return c.call(ctx, MethodFormDidOpen, params, nil)
}

// FormDidClose implements FormLifecycle.
func (c *Conn) FormDidClose(ctx context.Context, params FormDidCloseParams) error {
	params.FilePath = NormalizePath(params.FilePath)
	return c.call(ctx, MethodFormDidClose, params, nil)
}

// AddFunctionSourceCode implements ArtifactService.
func (c *Conn) AddFunctionSourceCode(ctx context.Context, req FunctionSourceCodeRequest) (SourceEditResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out SourceEditResponse
	err := c.call(ctx, MethodAddFunctionSourceCode, req, &out)
	return out, err
}

// UpdateResourceSourceCode implements ArtifactService.
func (c *Conn) UpdateResourceSourceCode(ctx context.Context, req FunctionSourceCodeRequest) (SourceEditResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out SourceEditResponse
	err := c.call(ctx, MethodUpdateResourceSourceCode, req, &out)
	return out, err
}

// ServiceClassModel implements ArtifactService.
func (c *Conn) ServiceClassModel(ctx context.Context, req ModelFromCodeRequest) (ServiceClassModelResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out ServiceClassModelResponse
	err := c.call(ctx, MethodServiceClassModel, req, &out)
	return out, err
}

// AddClassField implements ArtifactService.
func (c *Conn) AddClassField(ctx context.Context, req AddFieldRequest) (SourceEditResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out SourceEditResponse
	err := c.call(ctx, MethodAddClassField, req, &out)
	return out, err
}

// UpdateClassField implements ArtifactService.
func (c *Conn) UpdateClassField(ctx context.Context, req ClassFieldModifierRequest) (SourceEditResponse, error) {
	req.FilePath = NormalizePath(req.FilePath)
	var out SourceEditResponse
	err := c.call(ctx, MethodUpdateClassField, req, &out)
	return out, err
}

// RenameIdentifier implements ArtifactService. The service applies the rename
// without replying.
func (c *Conn) RenameIdentifier(ctx context.Context, req RenameIdentifierRequest) error {
	req.FileName = NormalizePath(req.FileName)
	return c.notify(ctx, MethodRenameIdentifier, req)
}

func normalizeCompletions(req CompletionsRequest) CompletionsRequest {
	req.FilePath = NormalizePath(req.FilePath)
	return req
}
