package inlines

import "time"

// Delimiter constants
const (
	DefaultOpenDelim  = "{{"
	DefaultCloseDelim = "}}"
)

// Whole-unit key: errors not attributable to one argument
const NonFieldErrors = ""

// Template lookup constants
const (
	DefaultTemplateDir       = "inlines"
	DefaultTemplateExtension = "html"
	TemplateVariantSep       = "__"
	TemplateContextInline    = "inline"
	TemplateContextObject    = "object"
	TemplateFuncUpper        = "upper"
	TemplateFuncLower        = "lower"
	TemplateFuncTitle        = "title"
)

// SuggestionLimit caps "did you mean" suggestions per unknown inline.
const SuggestionLimit = 3

// Environment variables
const (
	EnvDebug = "INLINES_DEBUG"
)

// Tracing
const (
	TracerName             = "github.com/itsatony/go-inlines"
	SpanNameRender         = "inlines.Render"
	SpanAttrMedia          = "inlines.media"
	SpanAttrLength         = "inlines.source_length"
	SpanAttrNodes          = "inlines.node_count"
	SpanAttrErrors         = "inlines.error_count"
	SpanAttrRenderID       = "inlines.render_id"
	SpanStatusInlineErrors = "inline errors"
)

// Postgres object store defaults
const (
	PostgresDriverName            = "postgres"
	PostgresDefaultMaxOpenConns   = 10
	PostgresDefaultMaxIdleConns   = 2
	PostgresDefaultConnMaxLife    = 5 * time.Minute
	PostgresDefaultQueryTimeout   = 10 * time.Second
	PostgresMaxRowsForSingleFetch = 2
)

// Error code constants for categorization
const (
	ErrCodeRegistry   = "INLINES_REGISTRY"
	ErrCodeDefinition = "INLINES_DEFINITION"
	ErrCodeRender     = "INLINES_RENDER"
	ErrCodeTemplate   = "INLINES_TEMPLATE"
	ErrCodeObject     = "INLINES_OBJECT"
	ErrCodeConfig     = "INLINES_CONFIG"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyInline   = "inline"
	MetaKeyVariant  = "variant"
	MetaKeyMedia    = "media"
	MetaKeyArgument = "argument"
	MetaKeyLine     = "line"
	MetaKeyPath     = "path"
	MetaKeyField    = "field"
	MetaKeyTable    = "table"
	MetaKeyRule     = "rule"
	MetaKeyKind     = "kind"
)

// Validation error codes, used to key message overrides
const (
	CodeInvalid          = "invalid"
	CodeInvalidChoice    = "invalid_choice"
	CodeMinValue         = "min_value"
	CodeMaxValue         = "max_value"
	CodeMinLength        = "min_length"
	CodeMaxLength        = "max_length"
	CodeMaxDigits        = "max_digits"
	CodeMaxDecimalPlaces = "max_decimal_places"
	CodeMaxWholeDigits   = "max_whole_digits"
	CodeRequired         = "required"
)

// Message parameter names
const (
	ParamValue         = "value"
	ParamLimitValue    = "limit_value"
	ParamShowValue     = "show_value"
	ParamMax           = "max"
	ParamInlineName    = "inline_name"
	ParamVariant       = "variant"
	ParamContents      = "contents"
	ParamArgumentName  = "argument_name"
	ParamArgumentPos   = "argument_position"
	ParamMessage       = "message"
	ParamLineNo        = "lineno"
	ParamArgName       = "arg_name"
	ParamInlineArgsLen = "inline_args_len"
	ParamRawArgsLen    = "raw_args_len"
)

// Default argument messages
const (
	MsgInvalidChoice    = "`{value}` is not a valid choice."
	MsgInvalidInteger   = "Enter a whole number."
	MsgInvalidNumber    = "Enter a number."
	MsgInvalidEmail     = "Enter a valid email address."
	MsgInvalidURL       = "Enter a valid URL."
	MsgInvalidSlug      = "Enter a valid 'slug' consisting of letters, numbers, underscores or hyphens."
	MsgInvalidValue     = "Enter a valid value."
	MsgMinValue         = "Ensure this value is greater than or equal to {limit_value}."
	MsgMaxValue         = "Ensure this value is less than or equal to {limit_value}."
	MsgMinLengthOne     = "Ensure this value has at least {limit_value} character (it has {show_value})."
	MsgMinLengthOther   = "Ensure this value has at least {limit_value} characters (it has {show_value})."
	MsgMaxLengthOne     = "Ensure this value has at most {limit_value} character (it has {show_value})."
	MsgMaxLengthOther   = "Ensure this value has at most {limit_value} characters (it has {show_value})."
	MsgMaxDigitsOne     = "Ensure that there are no more than {max} digit in total."
	MsgMaxDigitsOther   = "Ensure that there are no more than {max} digits in total."
	MsgMaxDecimalsOne   = "Ensure that there are no more than {max} decimal place."
	MsgMaxDecimalsOther = "Ensure that there are no more than {max} decimal places."
	MsgMaxWholeOne      = "Ensure that there are no more than {max} digit before the decimal point."
	MsgMaxWholeOther    = "Ensure that there are no more than {max} digits before the decimal point."
)

// Instance processing messages
const (
	MsgTooFewArgsOne    = "Takes at least {inline_args_len} non-keyword argument ({raw_args_len} given)."
	MsgTooFewArgsOther  = "Takes at least {inline_args_len} non-keyword arguments ({raw_args_len} given)."
	MsgTooManyArgsOne   = "Takes only {inline_args_len} non-keyword argument ({raw_args_len} given)."
	MsgTooManyArgsOther = "Takes only {inline_args_len} non-keyword arguments ({raw_args_len} given)."
	MsgUnexpectedKwarg  = "Got an unexpected keyword argument `{arg_name}`"
	MsgObjectNotFound   = "Object does not exist"
	MsgMultipleObjects  = "Multiple objects returned"
)

// Parser and renderer messages
const (
	MsgNotRegistered    = "Inline `{inline_name}` is not registered."
	MsgInvalidVariant   = "`{variant}` is not a valid variant for inline `{inline_name}`"
	MsgArgumentError    = "Inline `{contents}`, argument `{argument_name}`{argument_position}: {message}"
	MsgInlineError      = "Inline `{contents}`:  {message}"
	MsgArgumentPosition = " (pos {argument_position})"
	MsgSyntaxVerbose    = "Syntax error on line {lineno}. {message}"
	MsgInlineVerbose    = "Inline error on line {lineno}. {message}"
	MsgFieldRequired    = "This field is required."
)

// Error message constants for programming and infrastructure errors
const (
	ErrMsgAlreadyRegistered   = "inline is already registered"
	ErrMsgNotRegistered       = "inline is not registered"
	ErrMsgInvalidVariant      = "unknown variant"
	ErrMsgNilDefinition       = "definition cannot be nil"
	ErrMsgEmptyInlineName     = "inline name cannot be empty"
	ErrMsgAbstractRegistered  = "abstract definitions cannot be registered"
	ErrMsgEmptyDefinitionName = "definition name cannot be empty"
	ErrMsgUnknownOrdering     = "ordering references an unknown argument"
	ErrMsgKeywordOrdering     = "ordering may not include keyword arguments"
	ErrMsgNilArgument         = "argument cannot be nil"
	ErrMsgUnknownCleaner      = "field cleaner references an unknown argument"
	ErrMsgAbstractInstance    = "abstract definitions cannot be instantiated"
	ErrMsgNoObjectStore       = "non-abstract object inline has no object store"
	ErrMsgRenderNotDefined    = "inline has no renderer"
	ErrMsgTemplateNotFound    = "no template found"
	ErrMsgTemplateFailed      = "template execution failed"
	ErrMsgNoTemplateRenderer  = "no template renderer configured"
	ErrMsgObjectLookupFailed  = "object lookup failed"
	ErrMsgInvalidQueryField   = "invalid query field"
	ErrMsgPostgresEmptyDSN    = "postgres connection string cannot be empty"
	ErrMsgPostgresEmptyTable  = "postgres table cannot be empty"
	ErrMsgPostgresConnect     = "postgres connection failed"
	ErrMsgConfigRead          = "failed to read config file"
	ErrMsgConfigDecode        = "failed to decode config file"
	ErrMsgConfigFormat        = "unsupported config file extension"
	ErrMsgConfigEnv           = "invalid environment override"
	ErrMsgUnknownArgumentKind = "unknown argument kind"
	ErrMsgRuleCompile         = "failed to compile rule"
	ErrMsgRuleEval            = "failed to evaluate rule"
	ErrMsgOutputTemplate      = "failed to parse output template"
	ErrMsgInvalidRegex        = "invalid regular expression"
	ErrMsgUnknownExtends      = "definition extends an unknown inline"
)

// Log message constants
const (
	LogMsgRegistryCreated      = "registry created"
	LogMsgInlineRegistered     = "inline registered"
	LogMsgInlineUnregistered   = "inline unregistered"
	LogMsgRegistryCleared      = "registry cleared"
	LogMsgRegistryCollision    = "inline registration collision"
	LogMsgRendererCreated      = "renderer created"
	LogMsgRenderStart          = "starting render"
	LogMsgRenderEnd            = "render complete"
	LogMsgParseEnd             = "parse complete"
	LogMsgRenderFailed         = "render aborted by unexpected error"
	LogMsgInlineError          = "inline error"
	LogMsgTemplateFallback     = "no template found, falling back to default renderer"
	LogMsgDefinitionsLoaded    = "inline definitions loaded"
	LogMsgObjectStoreConnected = "object store connected"
	LogMsgTemplateRendered     = "template rendered"
	LogMsgUnexpectedError      = "unexpected error while rendering inline"
)

// Log field names
const (
	LogFieldRenderID   = "render_id"
	LogFieldInline     = "inline"
	LogFieldNames      = "names"
	LogFieldMedia      = "media"
	LogFieldVariant    = "variant"
	LogFieldLine       = "line"
	LogFieldNodes      = "node_count"
	LogFieldErrors     = "error_count"
	LogFieldSource     = "source_length"
	LogFieldDuration   = "duration"
	LogFieldCount      = "count"
	LogFieldTable      = "table"
	LogFieldTemplate   = "template"
	LogFieldDefinition = "definition"
	LogFieldError      = "error"
	LogFieldMessages   = "messages"
	LogFieldMessage    = "message"
	LogFieldDelimiters = "delimiters"
	LogFieldPath       = "path"
)

// String constants
const (
	StringEmpty         = ""
	StrNewline          = "\n"
	StrSpace            = " "
	StrNone             = "None"
	StrPlaceholderOpen  = "{"
	StrPlaceholderClose = "}"
	StrMessageSep       = "; "
	StrListSep          = ", "
	StrPathSep          = "/"
	StrExtSep           = "."
	StrTrue             = "true"
	StrFalse            = "false"
	StrOne              = "1"
	StrZero             = "0"
	HostLocalhost       = "localhost"
)

// Error category names
const (
	CategoryNameSyntax     = "syntax"
	CategoryNameValidation = "validation"
	CategoryNameUnknown    = "unknown"
)
