package internal

import (
	"fmt"
	"strings"
)

// TokenKind represents the kind of a lexical token
type TokenKind int

// Token kind constants
const (
	TokenKindText TokenKind = iota
	TokenKindInline
)

// Token kind names for debugging
const (
	TokenKindNameText   = "Text"
	TokenKindNameInline = "Inline"
)

// String returns the string representation of the token kind
func (k TokenKind) String() string {
	switch k {
	case TokenKindInline:
		return TokenKindNameInline
	default:
		return TokenKindNameText
	}
}

// Token is one literal-text span or one inline span of the source.
// Contents of an inline token exclude the delimiters and surrounding
// whitespace; Raw always holds the exact source slice.
type Token struct {
	Kind     TokenKind
	Contents string
	Raw      string
	Line     int // 1-indexed line where the token starts
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	return fmt.Sprintf("<%s token: %q...>", t.Kind, strings.ReplaceAll(t.Contents, StrNewline, StringEmpty))
}

// IsText returns true if this is a text token
func (t Token) IsText() bool {
	return t.Kind == TokenKindText
}

// IsInline returns true if this is an inline token
func (t Token) IsInline() bool {
	return t.Kind == TokenKindInline
}

// NewTextToken creates a text token
func NewTextToken(raw string, line int) Token {
	return Token{
		Kind:     TokenKindText,
		Contents: raw,
		Raw:      raw,
		Line:     line,
	}
}

// NewInlineToken creates an inline token with trimmed contents
func NewInlineToken(raw, contents string, line int) Token {
	return Token{
		Kind:     TokenKindInline,
		Contents: strings.TrimSpace(contents),
		Raw:      raw,
		Line:     line,
	}
}
