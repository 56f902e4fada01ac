package internal

// Default delimiters
const (
	StrOpenDelim  = "{{"
	StrCloseDelim = "}}"
)

// Character constants
const (
	CharEquals      = '='
	CharColon       = ':'
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharNewline     = '\n'
	CharUnderscore  = '_'
)

// String constants
const (
	StrNewline    = "\n"
	StringEmpty   = ""
	StrVariantSep = ":"
)

// Log message constants
const (
	LogMsgLexerCreated   = "lexer created"
	LogMsgTokenizerStart = "starting tokenization"
	LogMsgTokenizerEnd   = "tokenization complete"
	LogMsgCallParsed     = "inline call parsed"
	LogMsgCallRejected   = "inline call rejected"
)

// Log field names
const (
	LogFieldSource    = "source_length"
	LogFieldTokens    = "token_count"
	LogFieldLine      = "line"
	LogFieldInline    = "inline"
	LogFieldVariant   = "variant"
	LogFieldArgs      = "arg_count"
	LogFieldKwargs    = "kwarg_count"
	LogFieldErrorMsg  = "error_message"
	LogFieldOpenDelim = "open_delim"
)

// Error message constants for call parsing. The `{...}` placeholders are
// substituted by the root package's message formatter.
const (
	ErrMsgEmptyInline     = "Empty inline found."
	ErrMsgArgAfterKeyword = "Inline `{inline_content}`, non-keyword argument found after keyword argument."
	ErrMsgEmptyDelimiter  = "delimiters cannot be empty"
	ErrMsgSameDelimiters  = "open and close delimiters must differ"
	ErrParamInlineContent = "inline_content"
)

// Suggestion constants
const (
	SuggestMinDistance = 2
	SuggestPrefix      = "Did you mean "
	SuggestSep         = ", "
	SuggestLastSep     = " or "
)
