package internal

import (
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Kwarg is one keyword argument of an inline call, in source order
type Kwarg struct {
	Name  string
	Value string
}

// Call is the structured form of one inline token:
// OPEN name[:variant] [pos...] [key=val...] CLOSE
type Call struct {
	Name     string
	Variant  string // Empty when no variant was given
	Args     []string
	Kwargs   []Kwarg
	Contents string
	Line     int
}

// HasVariant reports whether the call requested a rendering variant
func (c *Call) HasVariant() bool {
	return c.Variant != StringEmpty
}

// KwargMap returns the keyword arguments as a map
func (c *Call) KwargMap() map[string]string {
	m := make(map[string]string, len(c.Kwargs))
	for _, kw := range c.Kwargs {
		m[kw.Name] = kw.Value
	}
	return m
}

// CallError is a syntax error found while parsing an inline call.
// Message may contain `{param}` placeholders resolved from Params.
type CallError struct {
	Message string
	Params  map[string]string
	Line    int
}

// Error implements the error interface
func (e *CallError) Error() string {
	return e.Message
}

// CallParser turns inline tokens into calls
type CallParser struct {
	logger *zap.Logger
}

// NewCallParser creates a call parser
func NewCallParser(logger *zap.Logger) *CallParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallParser{logger: logger}
}

// Parse parses an inline token. The first bit is name[:variant]; positional
// bits must precede keyword bits.
func (p *CallParser) Parse(token Token) (*Call, error) {
	bits := SplitContents(token.Contents)
	if len(bits) == 0 {
		p.logger.Debug(LogMsgCallRejected,
			zap.Int(LogFieldLine, token.Line),
			zap.String(LogFieldErrorMsg, ErrMsgEmptyInline),
		)
		return nil, &CallError{Message: ErrMsgEmptyInline, Line: token.Line}
	}

	call := &Call{
		Contents: token.Contents,
		Line:     token.Line,
	}
	call.Name, call.Variant = splitNameVariant(bits[0])

	inKwargs := false
	kwIndex := make(map[string]int)

	for _, bit := range bits[1:] {
		key, value, isKwarg := splitKwarg(bit)
		value = unquote(value)

		if !isKwarg {
			if inKwargs {
				p.logger.Debug(LogMsgCallRejected,
					zap.Int(LogFieldLine, token.Line),
					zap.String(LogFieldInline, call.Name),
					zap.String(LogFieldErrorMsg, ErrMsgArgAfterKeyword),
				)
				return nil, &CallError{
					Message: ErrMsgArgAfterKeyword,
					Params:  map[string]string{ErrParamInlineContent: token.Contents},
					Line:    token.Line,
				}
			}
			call.Args = append(call.Args, value)
			continue
		}

		inKwargs = true
		if i, seen := kwIndex[key]; seen {
			call.Kwargs[i].Value = value
			continue
		}
		kwIndex[key] = len(call.Kwargs)
		call.Kwargs = append(call.Kwargs, Kwarg{Name: key, Value: value})
	}

	p.logger.Debug(LogMsgCallParsed,
		zap.Int(LogFieldLine, token.Line),
		zap.String(LogFieldInline, call.Name),
		zap.String(LogFieldVariant, call.Variant),
		zap.Int(LogFieldArgs, len(call.Args)),
		zap.Int(LogFieldKwargs, len(call.Kwargs)),
	)
	return call, nil
}

// splitNameVariant splits "name:variant". Anything other than exactly one
// separator yields the first segment as name and no variant.
func splitNameVariant(bit string) (string, string) {
	var parts []string
	start := 0
	for i := 0; i < len(bit); i++ {
		if bit[i] == CharColon {
			parts = append(parts, bit[start:i])
			start = i + 1
		}
	}
	parts = append(parts, bit[start:])

	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], StringEmpty
}

// splitKwarg classifies a bit as key=value when it starts with one or more
// word characters followed by '=' and at least one more character.
func splitKwarg(bit string) (string, string, bool) {
	i := 0
	for i < len(bit) {
		r, size := utf8.DecodeRuneInString(bit[i:])
		if !isWordRune(r) {
			break
		}
		i += size
	}
	if i == 0 || i >= len(bit)-1 || bit[i] != CharEquals {
		return StringEmpty, bit, false
	}
	return bit[:i], bit[i+1:], true
}

func isWordRune(r rune) bool {
	return r == CharUnderscore || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// unquote strips one pair of matching surrounding quotes. The value is
// otherwise taken literally.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q == CharDoubleQuote || q == CharSingleQuote) && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}

// SplitContents splits inline contents on whitespace, keeping quoted
// sections (with backslash escapes) together with any adjacent non-space
// characters. A bit with an unbalanced quote falls back to a plain
// non-whitespace run.
func SplitContents(s string) []string {
	var bits []string
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		end := scanQuotedBit(s, i)
		if end < 0 {
			end = scanPlainBit(s, i)
		}
		bits = append(bits, s[i:end])
		i = end
	}
	return bits
}

// scanQuotedBit matches ([^\s'"]* (quoted [^\s'"]*)+) at start and returns
// its end, or -1 when no complete quoted section follows.
func scanQuotedBit(s string, start int) int {
	pos := skipBare(s, start)
	quoted := 0
	for pos < len(s) && isQuote(s[pos]) {
		end := scanQuoted(s, pos)
		if end < 0 {
			break
		}
		quoted++
		pos = skipBare(s, end)
	}
	if quoted == 0 {
		return -1
	}
	return pos
}

// scanQuoted returns the index just past the closing quote of the quoted
// section starting at pos, or -1 if it is unterminated.
func scanQuoted(s string, pos int) int {
	q := s[pos]
	for i := pos + 1; i < len(s); i++ {
		switch s[i] {
		case CharBackslash:
			i++
		case q:
			return i + 1
		}
	}
	return -1
}

func skipBare(s string, pos int) int {
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if unicode.IsSpace(r) || isQuote(s[pos]) {
			break
		}
		pos += size
	}
	return pos
}

func scanPlainBit(s string, pos int) int {
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

func isQuote(b byte) bool {
	return b == CharDoubleQuote || b == CharSingleQuote
}
