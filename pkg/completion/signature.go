package completion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-biforms/pkg/expression"
	"github.com/goliatone/go-biforms/pkg/lsclient"
	"github.com/goliatone/go-biforms/pkg/model"
)

// SignatureService is the subset of the language service used for
// signature help.
type SignatureService interface {
	SignatureHelp(ctx context.Context, req lsclient.SignatureHelpRequest) (lsclient.SignatureHelpResponse, error)
}

// SignatureDoc holds markdown documentation for a function and its
// arguments.
type SignatureDoc struct {
	Function string   `json:"fn"`
	Args     []string `json:"args,omitempty"`
}

// Signature is the call the cursor sits in.
type Signature struct {
	Label         string        `json:"label"`
	Args          []string      `json:"args"`
	CurrentArg    int           `json:"currentArgIndex"`
	Documentation *SignatureDoc `json:"documentation,omitempty"`
}

var paramDocPrefix = regexp.MustCompile(`^\*\*Parameter\*\*\s*(.*)`)

// ConvertSignature picks the first signature of resp. It returns nil when
// there is none or its label is not a call.
func ConvertSignature(resp lsclient.SignatureHelpResponse) *Signature {
	if len(resp.Signatures) == 0 {
		return nil
	}
	current := resp.Signatures[0]
	label, args, ok := parseCall(current.Label)
	if !ok {
		return nil
	}

	sig := &Signature{
		Label:      label,
		Args:       []string{},
		CurrentArg: resp.ActiveParameter,
	}
	if args != "" {
		for _, arg := range strings.Split(args, ",") {
			sig.Args = append(sig.Args, strings.TrimSpace(arg))
		}
	}
	if current.Documentation.Value != "" {
		doc := &SignatureDoc{Function: current.Documentation.Value}
		for _, p := range current.Parameters {
			text := p.Documentation.Value
			if m := paramDocPrefix.FindStringSubmatch(text); m != nil {
				text = m[1]
			}
			doc.Args = append(doc.Args, "- "+text)
		}
		sig.Documentation = doc
	}
	return sig
}

// SignatureQuery locates the call to describe.
type SignatureQuery struct {
	FilePath string
	Anchor   *expression.Anchor
	Text     string
	Cursor   int
	Property *model.Property
	Codedata *model.Codedata
}

// FetchSignature asks svc for signature help at the cursor and converts the
// answer. A nil signature with a nil error means there is nothing to show.
func FetchSignature(ctx context.Context, svc SignatureService, q SignatureQuery) (*Signature, error) {
	anchor := q.Anchor
	if anchor == nil {
		anchor = expression.NewAnchor(nil)
	}
	lineOffset, charOffset := expression.Offsets(q.Text, q.Cursor)
	resp, err := svc.SignatureHelp(ctx, lsclient.SignatureHelpRequest{
		FilePath: q.FilePath,
		Context: lsclient.ExpressionContext{
			Expression: q.Text,
			StartLine:  anchor.StartLine(),
			LineOffset: lineOffset,
			Offset:     charOffset,
			Codedata:   q.Codedata,
			Property:   q.Property,
		},
		SignatureHelpContext: lsclient.SignatureHelpContext{
			IsRetrigger: false,
			TriggerKind: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion: signature help: %w", err)
	}
	return ConvertSignature(resp), nil
}
