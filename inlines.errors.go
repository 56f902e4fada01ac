package inlines

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/itsatony/go-cuserr"
)

// Sentinel errors. Registry, template and object errors wrap these so
// callers can use errors.Is.
var (
	ErrAlreadyRegistered = errors.New(ErrMsgAlreadyRegistered)
	ErrNotRegistered     = errors.New(ErrMsgNotRegistered)
	ErrInvalidVariant    = errors.New(ErrMsgInvalidVariant)
	ErrAbstractInline    = errors.New(ErrMsgAbstractInstance)
	ErrTemplateNotFound  = errors.New(ErrMsgTemplateNotFound)
	ErrRenderNotDefined  = errors.New(ErrMsgRenderNotDefined)
	ErrObjectNotFound    = errors.New(MsgObjectNotFound)
	ErrMultipleObjects   = errors.New(MsgMultipleObjects)
	ErrNoObjectStore     = errors.New(ErrMsgNoObjectStore)
)

// ErrorCategory classifies a line error.
type ErrorCategory int

const (
	// CategorySyntax covers malformed inlines, unknown names and variants.
	CategorySyntax ErrorCategory = iota
	// CategoryValidation covers argument and whole-unit validation.
	CategoryValidation
)

// String returns the category name.
func (c ErrorCategory) String() string {
	switch c {
	case CategorySyntax:
		return CategoryNameSyntax
	case CategoryValidation:
		return CategoryNameValidation
	default:
		return CategoryNameUnknown
	}
}

// LineError is one user-facing error tied to a source line.
// Suggestions holds similar registered names for unknown inlines.
type LineError struct {
	Line        int
	Category    ErrorCategory
	Message     string
	Suggestions []string
}

// Verbose returns the message with its line and category prefix.
func (e *LineError) Verbose() string {
	tpl := MsgInlineVerbose
	if e.Category == CategorySyntax {
		tpl = MsgSyntaxVerbose
	}
	return FormatMessage(tpl, map[string]any{
		ParamLineNo:  e.Line,
		ParamMessage: e.Message,
	})
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return e.Verbose()
}

// RenderError is the ordered aggregate of every error found in one render.
type RenderError struct {
	errs    []*LineError
	verbose bool
}

// newRenderError sorts errs by line. Ties keep their collection order.
func newRenderError(errs []*LineError, verbose bool) *RenderError {
	sorted := make([]*LineError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Line < sorted[j].Line
	})
	return &RenderError{errs: sorted, verbose: verbose}
}

// Errors returns the line errors in line order.
func (e *RenderError) Errors() []*LineError {
	return e.errs
}

// Verbose reports whether messages carry the line prefix.
func (e *RenderError) Verbose() bool {
	return e.verbose
}

// Messages returns the formatted messages in line order.
func (e *RenderError) Messages() []string {
	msgs := make([]string, 0, len(e.errs))
	for _, le := range e.errs {
		if e.verbose {
			msgs = append(msgs, le.Verbose())
		} else {
			msgs = append(msgs, le.Message)
		}
	}
	return msgs
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return strings.Join(e.Messages(), StrNewline)
}

// IsRenderError reports whether err carries an aggregate render error.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// NewAlreadyRegisteredError creates a registry collision error
func NewAlreadyRegisteredError(name string) error {
	return cuserr.WrapStdError(ErrAlreadyRegistered, ErrCodeRegistry, ErrMsgAlreadyRegistered).
		WithMetadata(MetaKeyInline, name)
}

// NewNotRegisteredError creates an unknown inline error
func NewNotRegisteredError(name string) error {
	return cuserr.WrapStdError(ErrNotRegistered, ErrCodeRegistry, ErrMsgNotRegistered).
		WithMetadata(MetaKeyInline, name)
}

// NewInvalidVariantError creates an unsupported variant error
func NewInvalidVariantError(name, variant, media string) error {
	return cuserr.WrapStdError(ErrInvalidVariant, ErrCodeRegistry, ErrMsgInvalidVariant).
		WithMetadata(MetaKeyInline, name).
		WithMetadata(MetaKeyVariant, variant).
		WithMetadata(MetaKeyMedia, media)
}

// NewDefinitionError creates a definition build error
func NewDefinitionError(msg, definition string) error {
	return cuserr.NewValidationError(ErrCodeDefinition, msg).
		WithMetadata(MetaKeyInline, definition)
}

// NewArgumentDefinitionError creates a definition build error naming an argument
func NewArgumentDefinitionError(msg, definition, argument string) error {
	return cuserr.NewValidationError(ErrCodeDefinition, msg).
		WithMetadata(MetaKeyInline, definition).
		WithMetadata(MetaKeyArgument, argument)
}

// NewAbstractInstanceError creates an abstract instantiation error
func NewAbstractInstanceError(name string) error {
	return cuserr.WrapStdError(ErrAbstractInline, ErrCodeDefinition, ErrMsgAbstractInstance).
		WithMetadata(MetaKeyInline, name)
}

// NewNoObjectStoreError creates a missing object store error
func NewNoObjectStoreError(name string) error {
	return cuserr.WrapStdError(ErrNoObjectStore, ErrCodeObject, ErrMsgNoObjectStore).
		WithMetadata(MetaKeyInline, name)
}

// NewRenderNotDefinedError creates an error for inlines without output
func NewRenderNotDefinedError(name, variant string) error {
	return cuserr.WrapStdError(ErrRenderNotDefined, ErrCodeRender, ErrMsgRenderNotDefined).
		WithMetadata(MetaKeyInline, name).
		WithMetadata(MetaKeyVariant, variant)
}

// NewTemplateNotFoundError creates a template lookup error
func NewTemplateNotFoundError(candidates []string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeTemplate, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyPath, strings.Join(candidates, StrListSep))
}

// NewTemplateError creates a template execution error
func NewTemplateError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeTemplate, ErrMsgTemplateFailed).
		WithMetadata(MetaKeyPath, path)
}

// NewObjectLookupError wraps an object store failure
func NewObjectLookupError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeObject, ErrMsgObjectLookupFailed).
		WithMetadata(MetaKeyInline, name)
}

// NewConfigError wraps a configuration failure
func NewConfigError(msg, path string, cause error) error {
	if cause == nil {
		return cuserr.NewValidationError(ErrCodeConfig, msg).
			WithMetadata(MetaKeyPath, path)
	}
	return cuserr.WrapStdError(cause, ErrCodeConfig, msg).
		WithMetadata(MetaKeyPath, path)
}

// NewRuleError creates an error for a declarative rule
func NewRuleError(msg, inline string, rule int, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeDefinition, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeDefinition, msg)
	}
	return err.
		WithMetadata(MetaKeyInline, inline).
		WithMetadata(MetaKeyRule, strconv.Itoa(rule))
}

// NewUnknownReferenceError creates an error for a definition naming an
// undeclared base or media override
func NewUnknownReferenceError(definition, reference string) error {
	return cuserr.NewValidationError(ErrCodeDefinition, ErrMsgUnknownExtends).
		WithMetadata(MetaKeyInline, definition).
		WithMetadata(MetaKeyField, reference)
}

// NewOutputTemplateError wraps a declarative output template parse failure
func NewOutputTemplateError(definition, variant string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeDefinition, ErrMsgOutputTemplate).
		WithMetadata(MetaKeyInline, definition).
		WithMetadata(MetaKeyVariant, variant)
}
