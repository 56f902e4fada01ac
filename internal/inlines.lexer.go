package internal

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	OpenDelim  string // Opening delimiter (default: "{{")
	CloseDelim string // Closing delimiter (default: "}}")
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		OpenDelim:  StrOpenDelim,
		CloseDelim: StrCloseDelim,
	}
}

// Validate checks that the delimiters can split a source unambiguously
func (c LexerConfig) Validate() error {
	if c.OpenDelim == StringEmpty || c.CloseDelim == StringEmpty {
		return errors.New(ErrMsgEmptyDelimiter)
	}
	if c.OpenDelim == c.CloseDelim {
		return errors.New(ErrMsgSameDelimiters)
	}
	return nil
}

// Lexer splits source text into alternating text and inline tokens.
// An inline never spans a line break: the close delimiter must appear on
// the same line as its open delimiter.
type Lexer struct {
	source string
	config LexerConfig
	line   int // Current line (1-indexed)
	logger *zap.Logger
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated,
		zap.Int(LogFieldSource, len(source)),
		zap.String(LogFieldOpenDelim, config.OpenDelim),
	)
	return &Lexer{
		source: source,
		config: config,
		line:   1,
		logger: logger,
	}
}

// Tokenize processes the source and returns the token stream.
// Empty bits are dropped but still toggle the inside/outside state.
func (l *Lexer) Tokenize() []Token {
	l.logger.Debug(LogMsgTokenizerStart)

	var tokens []Token
	inInline := false

	for _, bit := range l.split() {
		if bit != StringEmpty {
			tokens = append(tokens, l.createToken(bit, inInline))
		}
		inInline = !inInline
	}

	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens
}

// createToken builds a token at the current line and then advances the
// line counter by the newlines the token consumed.
func (l *Lexer) createToken(bit string, inInline bool) Token {
	var token Token
	if inInline {
		inner := bit[len(l.config.OpenDelim) : len(bit)-len(l.config.CloseDelim)]
		token = NewInlineToken(bit, inner, l.line)
	} else {
		token = NewTextToken(bit, l.line)
	}
	l.line += strings.Count(bit, StrNewline)
	return token
}

// split returns the source cut into alternating text/inline bits, always
// starting (and ending) with a possibly empty text bit.
func (l *Lexer) split() []string {
	open, closeDelim := l.config.OpenDelim, l.config.CloseDelim
	src := l.source

	var bits []string
	textStart := 0
	pos := 0

	for pos < len(src) {
		idx := strings.Index(src[pos:], open)
		if idx < 0 {
			break
		}
		start := pos + idx
		inner := start + len(open)

		limit := len(src)
		if nl := strings.IndexByte(src[inner:], CharNewline); nl >= 0 {
			limit = inner + nl
		}

		closeIdx := strings.Index(src[inner:limit], closeDelim)
		if closeIdx < 0 {
			pos = start + 1
			continue
		}

		end := inner + closeIdx + len(closeDelim)
		bits = append(bits, src[textStart:start], src[start:end])
		textStart = end
		pos = end
	}

	return append(bits, src[textStart:])
}
