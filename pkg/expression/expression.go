// Package expression holds the pure text helpers shared by the completion,
// signature and diagnostics clients: splitting an expression at the cursor,
// translating absolute offsets into line/column pairs and shifting a target
// line range after imports are inserted above it.
package expression

import (
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// extractionPattern splits the text before the cursor into the part that
// selects a completion context (parent) and the identifier being typed
// (current). Quoted identifiers start with a single quote.
var extractionPattern = regexp.MustCompile(`(?s)^(?P<parent>.*?)(?P<current>'?[\p{L}\p{N}_]*)$`)

// TriggerCharacters lists the characters that open a new completion context.
var TriggerCharacters = []string{":", ".", ">", "@", "/", "\\", "?"}

// Prefix returns the text before the byte offset. Offsets outside the text
// are clamped and an offset inside a multi-byte rune moves back to the start
// of that rune.
func Prefix(text string, offset int) string {
	return text[:clamp(text, offset)]
}

// Split returns the parent and current segments of the text before the byte
// offset.
func Split(text string, offset int) (parent, current string) {
	prefix := Prefix(text, offset)
	match := extractionPattern.FindStringSubmatch(prefix)
	if match == nil {
		return prefix, ""
	}
	return match[1], match[2]
}

// Offsets converts a byte cursor offset into the number of newlines before
// the cursor and the column within the cursor's line. The column counts
// UTF-16 code units, the unit the language service positions use.
func Offsets(text string, cursor int) (lineOffset, charOffset int) {
	prefix := Prefix(text, cursor)
	lineOffset = strings.Count(prefix, "\n")
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		prefix = prefix[idx+1:]
	}
	return lineOffset, utf16Len(prefix)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if size := utf16.RuneLen(r); size > 0 {
			n += size
			continue
		}
		n++
	}
	return n
}

// IsTrigger reports whether ch opens a new completion context.
func IsTrigger(ch string) bool {
	if ch == "" {
		return false
	}
	for _, candidate := range TriggerCharacters {
		if candidate == ch {
			return true
		}
	}
	return false
}

// TriggerKind maps an optional trigger character to the LSP trigger kind sent
// with completion requests.
func TriggerKind(trigger string) protocol.CompletionTriggerKind {
	if trigger != "" {
		return protocol.CompletionTriggerKindTriggerCharacter
	}
	return protocol.CompletionTriggerKindInvoked
}

// LinePosition is a zero-based line and character offset as used by the
// language service.
type LinePosition struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// LineRange locates a node inside a source file.
type LineRange struct {
	FileName  string       `json:"fileName,omitempty"`
	StartLine LinePosition `json:"startLine"`
	EndLine   LinePosition `json:"endLine"`
}

// Adjust accounts for text inserted at the top of the file, such as import
// statements, when the target node is itself anchored at the start of the
// file (all positions zero). Ranges anchored elsewhere are returned as is.
func (r LineRange) Adjust(offset int) LineRange {
	if offset == 0 || !r.atOrigin() {
		return r
	}
	r.StartLine.Offset += offset
	r.EndLine.Offset += offset
	return r
}

func (r LineRange) atOrigin() bool {
	return r.StartLine == (LinePosition{}) && r.EndLine == (LinePosition{})
}

// AdjustedStart returns the adjusted start line of target, or nil when no
// target range is known.
func AdjustedStart(target *LineRange, offset int) *LinePosition {
	if target == nil {
		return nil
	}
	start := target.Adjust(offset).StartLine
	return &start
}

func clamp(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(text) {
		return len(text)
	}
	for offset > 0 && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}
