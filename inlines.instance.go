package inlines

import (
	"context"
	"errors"
	"sync"
)

// KeywordArg is one raw keyword argument, in source order.
type KeywordArg struct {
	Name  string
	Value string
}

// ErrorMap holds validation messages keyed by argument name, in the
// order keys were first recorded. NonFieldErrors keys whole-unit errors.
type ErrorMap struct {
	keys []string
	errs map[string][]*ValidationError
}

func newErrorMap() *ErrorMap {
	return &ErrorMap{errs: make(map[string][]*ValidationError)}
}

// Add records every message of err under key.
func (m *ErrorMap) Add(key string, err *ValidationError) {
	if err == nil {
		return
	}
	if _, ok := m.errs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.errs[key] = append(m.errs[key], err.List()...)
}

// Keys returns the keys with errors, in first-recorded order.
func (m *ErrorMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Messages returns the formatted messages recorded under key.
func (m *ErrorMap) Messages(key string) []string {
	msgs := make([]string, 0, len(m.errs[key]))
	for _, err := range m.errs[key] {
		msgs = append(msgs, err.Message())
	}
	return msgs
}

// Len returns the number of keys with errors.
func (m *ErrorMap) Len() int {
	return len(m.keys)
}

// InstanceOption configures an instance.
type InstanceOption func(*Instance)

// WithInstanceObjectStore sets the store used when the definition has
// none of its own.
func WithInstanceObjectStore(store ObjectStore) InstanceOption {
	return func(i *Instance) {
		i.fallbackStore = store
	}
}

// WithInstanceTemplates sets the template renderer.
func WithInstanceTemplates(templates TemplateRenderer) InstanceOption {
	return func(i *Instance) {
		i.templates = templates
	}
}

// Instance is one occurrence of an inline being processed. Processing
// runs once; its results are kept for the instance's lifetime.
type Instance struct {
	def       *Definition
	name      string
	rawArgs   []string
	rawKwargs []KeywordArg

	fallbackStore ObjectStore
	templates     TemplateRenderer

	once       sync.Once
	processErr error
	data       map[string]any
	errs       *ErrorMap
	object     any
}

// NewInstance creates an unprocessed instance of d invoked as name.
func (d *Definition) NewInstance(name string, args []string, kwargs []KeywordArg, opts ...InstanceOption) (*Instance, error) {
	if d.abstract {
		return nil, NewAbstractInstanceError(name)
	}

	inst := &Instance{
		def:       d,
		name:      name,
		rawArgs:   args,
		rawKwargs: kwargs,
		data:      make(map[string]any),
	}
	for _, opt := range opts {
		opt(inst)
	}

	if d.object != nil && inst.objectStore() == nil {
		return nil, NewNoObjectStoreError(name)
	}
	return inst, nil
}

// Name returns the name the inline was invoked as.
func (i *Instance) Name() string { return i.name }

// Definition returns the instance's definition.
func (i *Instance) Definition() *Definition { return i.def }

// Args returns the raw positional arguments.
func (i *Instance) Args() []string { return i.rawArgs }

// Kwargs returns the raw keyword arguments.
func (i *Instance) Kwargs() []KeywordArg { return i.rawKwargs }

// Data returns the typed data. It is complete only after processing.
func (i *Instance) Data() map[string]any { return i.data }

// Get returns one typed value.
func (i *Instance) Get(name string) any { return i.data[name] }

// Object returns the looked up object of an object-backed instance.
func (i *Instance) Object() any { return i.object }

// Process coerces and validates the raw arguments once. Validation
// failures are recorded in Errors; only unexpected failures, such as an
// object store outage, are returned.
func (i *Instance) Process(ctx context.Context) error {
	i.once.Do(func() {
		i.errs = newErrorMap()
		i.processErr = i.process(ctx)
	})
	return i.processErr
}

// Errors processes the instance if needed and returns its errors.
func (i *Instance) Errors() *ErrorMap {
	_ = i.Process(context.Background())
	return i.errs
}

// IsValid processes the instance if needed and reports whether it has
// no errors.
func (i *Instance) IsValid() bool {
	return i.Errors().Len() == 0
}

// AddError records a validation error. An empty key records a
// whole-unit error.
func (i *Instance) AddError(key string, err *ValidationError) {
	i.errs.Add(key, err)
}

// hasErrors is safe to call while processing.
func (i *Instance) hasErrors() bool {
	return i.errs != nil && i.errs.Len() > 0
}

func (i *Instance) process(ctx context.Context) error {
	def := i.def
	given, required := len(i.rawArgs), def.RequiredArgs()

	if given != required {
		tpl := PluralMessage(MsgTooFewArgsOne, MsgTooFewArgsOther, ParamInlineArgsLen)
		if given > required {
			tpl = PluralMessage(MsgTooManyArgsOne, MsgTooManyArgsOther, ParamInlineArgsLen)
		}
		i.AddError(NonFieldErrors, NewValidationErrorFromTemplate(tpl).WithParams(map[string]any{
			ParamInlineArgsLen: required,
			ParamRawArgsLen:    given,
		}))
		return nil
	}

	positional := make(map[string]bool, required)
	for pos, name := range def.ordering {
		positional[name] = true
		arg, _ := def.Argument(name)
		i.processArg(name, arg, i.rawArgs[pos])
	}

	kwargs := make(map[string]string, len(i.rawKwargs))
	for _, kw := range i.rawKwargs {
		kwargs[kw.Name] = kw.Value
	}
	consumed := make(map[string]bool, len(kwargs))

	for _, na := range def.args {
		if positional[na.Name] {
			continue
		}
		var raw any = na.Argument.def
		if v, ok := kwargs[na.Name]; ok {
			raw = v
			consumed[na.Name] = true
		}
		i.processArg(na.Name, na.Argument, raw)
	}

	for _, kw := range i.rawKwargs {
		if consumed[kw.Name] {
			continue
		}
		consumed[kw.Name] = true
		i.AddError(NonFieldErrors, NewValidationError(MsgUnexpectedKwarg).WithParam(ParamArgName, kw.Name))
	}

	if err := i.cleanFields(); err != nil {
		return err
	}
	if err := i.cleanInline(); err != nil {
		return err
	}

	if def.object != nil && !i.hasErrors() {
		return i.lookupObject(ctx)
	}
	return nil
}

func (i *Instance) processArg(name string, arg *Argument, raw any) {
	value, err := arg.process(raw)
	if err != nil {
		i.AddError(name, err)
		return
	}
	i.data[name] = value
}

func (i *Instance) cleanFields() error {
	for _, na := range i.def.args {
		fn, ok := i.def.cleaners[na.Name]
		if !ok || fn == nil {
			continue
		}
		value, ok := i.data[na.Name]
		if !ok {
			continue
		}
		cleaned, err := fn(i, value)
		if err != nil {
			if ve, ok := AsValidationError(err); ok {
				i.AddError(na.Name, ve)
				continue
			}
			return err
		}
		i.data[na.Name] = cleaned
	}
	return nil
}

func (i *Instance) cleanInline() error {
	if i.def.clean == nil {
		return nil
	}
	data, err := i.def.clean(i, i.data)
	if err != nil {
		if ve, ok := AsValidationError(err); ok {
			i.AddError(NonFieldErrors, ve)
			return nil
		}
		return err
	}
	if data != nil {
		i.data = data
	}
	return nil
}

// Render produces the output of a processed, valid instance for variant
// and media. A variant renderer wins; template-backed definitions then
// try their templates before the default renderer.
func (i *Instance) Render(ctx context.Context, variant, media string) (string, error) {
	if err := i.Process(ctx); err != nil {
		return StringEmpty, err
	}

	def := i.def
	if variant != StringEmpty {
		if fn, ok := def.renderer(variant); ok {
			return fn(i)
		}
	}

	if def.template == nil {
		if fn, ok := def.renderer(StringEmpty); ok {
			return fn(i)
		}
		return StringEmpty, NewRenderNotDefinedError(i.name, variant)
	}

	out, err := i.renderTemplate(ctx, variant, media)
	if err == nil || !errors.Is(err, ErrTemplateNotFound) {
		return out, err
	}
	if fn, ok := def.renderer(StringEmpty); ok {
		return fn(i)
	}
	return StringEmpty, err
}
