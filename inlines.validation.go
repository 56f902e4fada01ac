package inlines

import (
	"errors"
	"strings"
)

// ValidationError is a user-facing validation failure. It is either a
// single message (template, code and params) or a flattened list of
// single messages.
type ValidationError struct {
	Code     string
	Template MessageTemplate
	Params   map[string]any

	list []*ValidationError
}

// NewValidationError creates a single-message validation error.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Template: Message(message)}
}

// NewValidationErrorFromTemplate creates a validation error from a
// possibly pluralized template.
func NewValidationErrorFromTemplate(tpl MessageTemplate) *ValidationError {
	return &ValidationError{Template: tpl}
}

// JoinValidationErrors flattens errs into one error. Nil entries are
// skipped; nil is returned when nothing remains.
func JoinValidationErrors(errs ...*ValidationError) *ValidationError {
	var list []*ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		list = append(list, err.List()...)
	}
	if len(list) == 0 {
		return nil
	}
	if len(list) == 1 {
		return list[0]
	}
	return &ValidationError{list: list}
}

// WithCode sets the code used to look up message overrides.
func (e *ValidationError) WithCode(code string) *ValidationError {
	e.Code = code
	return e
}

// WithParams sets the placeholder params.
func (e *ValidationError) WithParams(params map[string]any) *ValidationError {
	e.Params = params
	return e
}

// WithParam sets one placeholder param.
func (e *ValidationError) WithParam(key string, value any) *ValidationError {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

// List returns the single messages this error holds, in order.
func (e *ValidationError) List() []*ValidationError {
	if e == nil {
		return nil
	}
	if e.list == nil {
		return []*ValidationError{e}
	}
	return e.list
}

// Message formats a single-message error.
func (e *ValidationError) Message() string {
	return e.Template.Format(e.Params)
}

// Messages returns every formatted message.
func (e *ValidationError) Messages() []string {
	list := e.List()
	msgs := make([]string, 0, len(list))
	for _, item := range list {
		msgs = append(msgs, item.Message())
	}
	return msgs
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages(), StrMessageSep)
}

// applyOverrides swaps the template of each coded message found in
// overrides.
func (e *ValidationError) applyOverrides(overrides map[string]MessageTemplate) *ValidationError {
	if e == nil || len(overrides) == 0 {
		return e
	}
	for _, item := range e.List() {
		if item.Code == StringEmpty {
			continue
		}
		if tpl, ok := overrides[item.Code]; ok {
			item.Template = tpl
		}
	}
	return e
}

// AsValidationError converts err into a validation error when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve, true
}
