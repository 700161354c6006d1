// Package artifact applies form submissions to source artifacts through the
// language service: service functions, resources and class fields.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/goliatone/go-biforms/pkg/lsclient"
)

// ErrNoModel is returned when the service answers a model request without a
// model and without an error message.
var ErrNoModel = errors.New("artifact: service returned no model")

// ServiceError carries the error message a service response reported.
type ServiceError struct {
	Op         string
	Message    string
	Stacktrace string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("artifact: %s: %s", e.Op, e.Message)
}

// Edits maps file paths to the text edits the service applied.
type Edits map[string][]protocol.TextEdit

// Editor wraps the artifact calls of the language service. Saving reports
// whether a write is in flight.
type Editor struct {
	svc    lsclient.ArtifactService
	logger *zap.Logger
	saving atomic.Int32
}

// Option customises an Editor.
type Option func(*Editor)

// WithLogger sets the logger used for failed writes.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEditor returns an editor backed by svc.
func NewEditor(svc lsclient.ArtifactService, opts ...Option) *Editor {
	e := &Editor{svc: svc, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Saving reports whether a write is running.
func (e *Editor) Saving() bool {
	return e.saving.Load() > 0
}

// AddFunction adds fn to the service at target.
func (e *Editor) AddFunction(ctx context.Context, filePath string, target lsclient.LineRangeCodedata, fn lsclient.Function) (Edits, error) {
	return e.write(ctx, "add function", func(ctx context.Context) (lsclient.SourceEditResponse, error) {
		return e.svc.AddFunctionSourceCode(ctx, lsclient.FunctionSourceCodeRequest{
			FilePath: filePath,
			Function: fn,
			Codedata: target,
		})
	})
}

// UpdateResource replaces the resource at target with fn.
func (e *Editor) UpdateResource(ctx context.Context, filePath string, target lsclient.LineRangeCodedata, fn lsclient.Function) (Edits, error) {
	return e.write(ctx, "update resource", func(ctx context.Context) (lsclient.SourceEditResponse, error) {
		return e.svc.UpdateResourceSourceCode(ctx, lsclient.FunctionSourceCodeRequest{
			FilePath: filePath,
			Function: fn,
			Codedata: target,
		})
	})
}

// AddField adds field to the class at target.
func (e *Editor) AddField(ctx context.Context, filePath string, target lsclient.LineRangeCodedata, field lsclient.ClassField) (Edits, error) {
	return e.write(ctx, "add field", func(ctx context.Context) (lsclient.SourceEditResponse, error) {
		return e.svc.AddClassField(ctx, lsclient.AddFieldRequest{
			FilePath: filePath,
			Field:    field,
			Codedata: target,
		})
	})
}

// UpdateField updates an existing class field. The field's codedata locates
// it.
func (e *Editor) UpdateField(ctx context.Context, filePath string, field lsclient.ClassField) (Edits, error) {
	return e.write(ctx, "update field", func(ctx context.Context) (lsclient.SourceEditResponse, error) {
		return e.svc.UpdateClassField(ctx, lsclient.ClassFieldModifierRequest{
			FilePath: filePath,
			Field:    field,
		})
	})
}

// ServiceClass loads the class model at target.
func (e *Editor) ServiceClass(ctx context.Context, filePath string, target lsclient.LineRangeCodedata) (*lsclient.ServiceClass, error) {
	resp, err := e.svc.ServiceClassModel(ctx, lsclient.ModelFromCodeRequest{
		FilePath: filePath,
		Codedata: target,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: service class: %w", err)
	}
	if resp.ErrorMsg != "" {
		return nil, &ServiceError{Op: "service class", Message: resp.ErrorMsg, Stacktrace: resp.Stacktrace}
	}
	if resp.Model == nil {
		return nil, ErrNoModel
	}
	return resp.Model, nil
}

// Rename renames the identifier at pos. The service applies the edit on its
// own; nothing is returned.
func (e *Editor) Rename(ctx context.Context, filePath string, pos protocol.Position, newName string) error {
	if newName == "" {
		return errors.New("artifact: rename: new name is required")
	}
	err := e.svc.RenameIdentifier(ctx, lsclient.RenameIdentifierRequest{
		FileName: filePath,
		Position: pos,
		NewName:  newName,
	})
	if err != nil {
		return fmt.Errorf("artifact: rename: %w", err)
	}
	return nil
}

func (e *Editor) write(ctx context.Context, op string, call func(context.Context) (lsclient.SourceEditResponse, error)) (Edits, error) {
	e.saving.Add(1)
	defer e.saving.Add(-1)

	resp, err := call(ctx)
	if err != nil {
		e.logger.Error("artifact write failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("artifact: %s: %w", op, err)
	}
	if resp.ErrorMsg != "" {
		e.logger.Error("artifact write rejected",
			zap.String("op", op),
			zap.String("message", resp.ErrorMsg),
		)
		return nil, &ServiceError{Op: op, Message: resp.ErrorMsg, Stacktrace: resp.Stacktrace}
	}
	return Edits(resp.TextEdits), nil
}
