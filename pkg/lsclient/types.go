package lsclient

import (
	"go.lsp.dev/protocol"

	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/model"
)

// ExpressionContext locates an expression being edited inside a node.
type ExpressionContext struct {
	Expression string                   `json:"expression"`
	StartLine  *expression.LinePosition `json:"startLine,omitempty"`
	LineOffset int                      `json:"lineOffset"`
	Offset     int                      `json:"offset"`
	Codedata   *model.Codedata          `json:"codedata,omitempty"`
	Property   *model.Property          `json:"property,omitempty"`
}

// CompletionsRequest asks for completions at the cursor of an expression.
type CompletionsRequest struct {
	FilePath          string                     `json:"filePath"`
	Context           ExpressionContext          `json:"context"`
	CompletionContext protocol.CompletionContext `json:"completionContext"`
}

// SignatureHelpContext mirrors the LSP signature help trigger metadata.
type SignatureHelpContext struct {
	IsRetrigger      bool   `json:"isRetrigger"`
	TriggerCharacter string `json:"triggerCharacter,omitempty"`
	TriggerKind      int    `json:"triggerKind"`
}

// SignatureHelpRequest asks for the signature of the call under the cursor.
type SignatureHelpRequest struct {
	FilePath             string               `json:"filePath"`
	Context              ExpressionContext    `json:"context"`
	SignatureHelpContext SignatureHelpContext `json:"signatureHelpContext"`
}

// ParameterInfo labels a parameter by its [start, end) offsets inside the
// signature label.
type ParameterInfo struct {
	Label         []int                  `json:"label"`
	Documentation protocol.MarkupContent `json:"documentation"`
}

// SignatureInfo describes one callable signature.
type SignatureInfo struct {
	Label         string                 `json:"label"`
	Documentation protocol.MarkupContent `json:"documentation"`
	Parameters    []ParameterInfo        `json:"parameters"`
}

// SignatureHelpResponse lists candidate signatures.
type SignatureHelpResponse struct {
	Signatures      []SignatureInfo `json:"signatures"`
	ActiveSignature int             `json:"activeSignature"`
	ActiveParameter int             `json:"activeParameter"`
}

// VisibleTypesRequest asks for the types visible at a position.
type VisibleTypesRequest struct {
	FilePath       string                  `json:"filePath"`
	Position       expression.LinePosition `json:"position"`
	TypeConstraint string                  `json:"typeConstraint,omitempty"`
}

// LabelDetails carries the secondary text of a visible type.
type LabelDetails struct {
	Description string `json:"description"`
	Detail      string `json:"detail"`
}

// VisibleTypeItem is a type offered by the type helper.
type VisibleTypeItem struct {
	InsertText   string                      `json:"insertText"`
	Kind         protocol.CompletionItemKind `json:"kind"`
	Label        string                      `json:"label"`
	LabelDetails LabelDetails                `json:"labelDetails"`
}

// DiagnosticsRequest asks for diagnostics of a single expression.
type DiagnosticsRequest struct {
	FilePath string            `json:"filePath"`
	Context  ExpressionContext `json:"context"`
}

// DiagnosticsResponse carries the diagnostics of an expression.
type DiagnosticsResponse struct {
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

// UpdateImportsRequest inserts an import statement into a file.
type UpdateImportsRequest struct {
	FilePath        string `json:"filePath"`
	ImportStatement string `json:"importStatement"`
}

// UpdateImportsResponse reports the import that was added and how many lines
// the insertion moved the rest of the file.
type UpdateImportsResponse struct {
	Prefix                string `json:"prefix"`
	ModuleID              string `json:"moduleId"`
	ImportStatementOffset int    `json:"importStatementOffset"`
}

// EndOfFileRequest asks for the position after the last line of a file.
type EndOfFileRequest struct {
	FilePath string `json:"filePath"`
}

// FormDidOpenParams notifies the service that a form was opened on a file.
type FormDidOpenParams struct {
	FilePath string `json:"filePath"`
}

// FormDidCloseParams notifies the service that a form was closed.
type FormDidCloseParams struct {
	FilePath string `json:"filePath"`
}

// LineRangeCodedata wraps the line range of the node an edit targets.
type LineRangeCodedata struct {
	LineRange expression.LineRange `json:"lineRange"`
}

// SourceEditResponse carries the text edits produced by an artifact change,
// keyed by file path.
type SourceEditResponse struct {
	TextEdits  map[string][]protocol.TextEdit `json:"textEdits,omitempty"`
	ErrorMsg   string                         `json:"errorMsg,omitempty"`
	Stacktrace string                         `json:"stacktrace,omitempty"`
}

// Parameter is one parameter of a function model.
type Parameter struct {
	Kind         string          `json:"kind,omitempty"`
	Name         model.Property  `json:"name"`
	Type         model.Property  `json:"type"`
	DefaultValue *model.Property `json:"defaultValue,omitempty"`
	Enabled      bool            `json:"enabled"`
	Editable     bool            `json:"editable"`
}

// Function is a service function or resource model.
type Function struct {
	Kind       string                    `json:"kind"`
	Accessor   *model.Property           `json:"accessor,omitempty"`
	Name       model.Property            `json:"name"`
	Parameters []Parameter               `json:"parameters,omitempty"`
	ReturnType model.Property            `json:"returnType"`
	Properties map[string]model.Property `json:"properties,omitempty"`
	Codedata   *model.Codedata           `json:"codedata,omitempty"`
	Enabled    bool                      `json:"enabled"`
	Editable   bool                      `json:"editable"`
}

// FunctionSourceCodeRequest adds or updates a function inside a service.
type FunctionSourceCodeRequest struct {
	FilePath string            `json:"filePath"`
	Function Function          `json:"function"`
	Codedata LineRangeCodedata `json:"codedata"`
	Service  string            `json:"service,omitempty"`
}

// ClassField is a field of a service class.
type ClassField struct {
	Name         model.Property  `json:"name"`
	Type         model.Property  `json:"type"`
	DefaultValue *model.Property `json:"defaultValue,omitempty"`
	IsPrivate    bool            `json:"isPrivate"`
	IsFinal      bool            `json:"isFinal"`
	Enabled      bool            `json:"enabled"`
	Editable     bool            `json:"editable"`
	Codedata     *model.Codedata `json:"codedata,omitempty"`
}

// ServiceClass is the model of a service class.
type ServiceClass struct {
	Name       string                    `json:"name"`
	Properties map[string]model.Property `json:"properties,omitempty"`
	Fields     []ClassField              `json:"fields,omitempty"`
	Functions  []Function                `json:"functions,omitempty"`
	Codedata   *model.Codedata           `json:"codedata,omitempty"`
}

// ModelFromCodeRequest asks for the model of the node at a line range.
type ModelFromCodeRequest struct {
	FilePath string            `json:"filePath"`
	Codedata LineRangeCodedata `json:"codedata"`
	Context  string            `json:"context,omitempty"`
}

// ServiceClassModelResponse carries a service class model.
type ServiceClassModelResponse struct {
	Model      *ServiceClass `json:"model,omitempty"`
	ErrorMsg   string        `json:"errorMsg,omitempty"`
	Stacktrace string        `json:"stacktrace,omitempty"`
}

// AddFieldRequest adds a field to the class at a line range.
type AddFieldRequest struct {
	FilePath string            `json:"filePath"`
	Field    ClassField        `json:"field"`
	Codedata LineRangeCodedata `json:"codedata"`
}

// ClassFieldModifierRequest updates an existing class field.
type ClassFieldModifierRequest struct {
	FilePath string     `json:"filePath"`
	Field    ClassField `json:"field"`
}

// RenameIdentifierRequest renames the symbol at a position.
type RenameIdentifierRequest struct {
	FileName string            `json:"fileName"`
	Position protocol.Position `json:"position"`
	NewName  string            `json:"newName"`
}

// ThemeKind is the host color theme.
type ThemeKind int

const (
	ThemeLight        ThemeKind = 1
	ThemeDark         ThemeKind = 2
	ThemeHighContrast ThemeKind = 3
)

// String returns the variant name used by renderers.
func (k ThemeKind) String() string {
	switch k {
	case ThemeDark:
		return "dark"
	case ThemeHighContrast:
		return "high-contrast"
	default:
		return "light"
	}
}
