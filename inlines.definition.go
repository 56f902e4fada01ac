package inlines

import (
	"sort"
	"strings"
)

// RenderFunc produces the output of a valid instance.
type RenderFunc func(inst *Instance) (string, error)

// FieldCleanFunc runs after argument processing for one argument that
// has a typed value. The returned value replaces the typed value; a
// *ValidationError is recorded against the argument.
type FieldCleanFunc func(inst *Instance, value any) (any, error)

// CleanFunc runs last with the full typed data. A non-nil map replaces
// the data; a *ValidationError is recorded as a whole-unit error.
type CleanFunc func(inst *Instance, data map[string]any) (map[string]any, error)

// ContextFunc contributes template context for a valid instance.
type ContextFunc func(inst *Instance) map[string]any

// NamedArgument pairs an argument with the name it is declared under.
type NamedArgument struct {
	Name     string
	Argument *Argument
}

// Definition is the immutable schema of an inline kind: its arguments,
// positional ordering, variants and output hooks.
type Definition struct {
	name      string
	appLabel  string
	abstract  bool
	args      []NamedArgument
	argIndex  map[string]int
	ordering  []string
	variants  []string
	renderers map[string]RenderFunc
	cleaners  map[string]FieldCleanFunc
	clean     CleanFunc
	template  *templateCapability
	object    *objectCapability
	base      *Definition
}

// DefinitionOption configures a definition under construction.
type DefinitionOption func(*definitionBuilder)

type definitionBuilder struct {
	base        *Definition
	appLabel    *string
	abstract    bool
	declared    []NamedArgument
	ordering    []string
	hasOrdering bool
	variants    []string
	hasVariants bool
	renderers   map[string]RenderFunc
	cleaners    map[string]FieldCleanFunc
	clean       CleanFunc
	template    *templateCapability
	object      *objectCapability
}

// Extends derives the definition from base. Arguments, ordering,
// variants, hooks and capabilities are inherited unless redeclared.
func Extends(base *Definition) DefinitionOption {
	return func(b *definitionBuilder) {
		b.base = base
	}
}

// Arg declares an argument. Redeclaring an inherited name replaces it in
// its inherited position.
func Arg(name string, arg *Argument) DefinitionOption {
	return func(b *definitionBuilder) {
		b.declared = append(b.declared, NamedArgument{Name: name, Argument: arg})
	}
}

// Args declares several arguments at once, in creation order.
func Args(args map[string]*Argument) DefinitionOption {
	return func(b *definitionBuilder) {
		named := make([]NamedArgument, 0, len(args))
		for name, arg := range args {
			named = append(named, NamedArgument{Name: name, Argument: arg})
		}
		sort.SliceStable(named, func(i, j int) bool {
			return orderOf(named[i].Argument) < orderOf(named[j].Argument)
		})
		b.declared = append(b.declared, named...)
	}
}

func orderOf(a *Argument) uint64 {
	if a == nil {
		return 0
	}
	return a.order
}

// Ordering sets the positional argument order. Duplicates are dropped.
func Ordering(names ...string) DefinitionOption {
	return func(b *definitionBuilder) {
		b.ordering = names
		b.hasOrdering = len(names) > 0
	}
}

// Variants sets the supported rendering variants.
func Variants(names ...string) DefinitionOption {
	return func(b *definitionBuilder) {
		b.variants = names
		b.hasVariants = len(names) > 0
	}
}

// AppLabel sets the label used to namespace template candidates.
func AppLabel(label string) DefinitionOption {
	return func(b *definitionBuilder) {
		b.appLabel = &label
	}
}

// Abstract marks the definition as a base that cannot be instantiated.
func Abstract() DefinitionOption {
	return func(b *definitionBuilder) {
		b.abstract = true
	}
}

// RenderWith sets the default renderer.
func RenderWith(fn RenderFunc) DefinitionOption {
	return RenderVariant(StringEmpty, fn)
}

// RenderVariant sets the renderer of one variant.
func RenderVariant(variant string, fn RenderFunc) DefinitionOption {
	return func(b *definitionBuilder) {
		if b.renderers == nil {
			b.renderers = make(map[string]RenderFunc)
		}
		b.renderers[variant] = fn
	}
}

// CleanField sets the custom validation hook of one argument.
func CleanField(name string, fn FieldCleanFunc) DefinitionOption {
	return func(b *definitionBuilder) {
		if b.cleaners == nil {
			b.cleaners = make(map[string]FieldCleanFunc)
		}
		b.cleaners[name] = fn
	}
}

// Clean sets the whole-unit validation hook.
func Clean(fn CleanFunc) DefinitionOption {
	return func(b *definitionBuilder) {
		b.clean = fn
	}
}

// NewDefinition builds a definition. Configuration mistakes such as an
// ordering naming a keyword argument are returned as errors.
func NewDefinition(name string, opts ...DefinitionOption) (*Definition, error) {
	if name == StringEmpty {
		return nil, NewDefinitionError(ErrMsgEmptyDefinitionName, name)
	}

	b := &definitionBuilder{}
	for _, opt := range opts {
		opt(b)
	}

	d := &Definition{
		name:      name,
		abstract:  b.abstract,
		base:      b.base,
		argIndex:  make(map[string]int),
		renderers: make(map[string]RenderFunc),
		cleaners:  make(map[string]FieldCleanFunc),
	}

	if base := b.base; base != nil {
		d.appLabel = base.appLabel
		d.args = append(d.args, base.args...)
		for k, v := range base.argIndex {
			d.argIndex[k] = v
		}
		for k, v := range base.renderers {
			d.renderers[k] = v
		}
		for k, v := range base.cleaners {
			d.cleaners[k] = v
		}
		d.clean = base.clean
		d.template = base.template
		d.object = base.object
	}
	if b.appLabel != nil {
		d.appLabel = *b.appLabel
	}

	for _, na := range b.declared {
		if na.Argument == nil {
			return nil, NewArgumentDefinitionError(ErrMsgNilArgument, name, na.Name)
		}
		if i, ok := d.argIndex[na.Name]; ok {
			d.args[i] = na
			continue
		}
		d.argIndex[na.Name] = len(d.args)
		d.args = append(d.args, na)
	}
	for _, na := range d.args {
		na.Argument.name = na.Name
	}

	switch {
	case b.hasOrdering:
		d.ordering = dedupe(b.ordering)
	case b.base != nil && len(b.base.ordering) > 0:
		d.ordering = append([]string(nil), b.base.ordering...)
	default:
		for _, na := range d.args {
			if !na.Argument.keyword {
				d.ordering = append(d.ordering, na.Name)
			}
		}
	}
	for _, argName := range d.ordering {
		i, ok := d.argIndex[argName]
		if !ok {
			return nil, NewArgumentDefinitionError(ErrMsgUnknownOrdering, name, argName)
		}
		if d.args[i].Argument.keyword {
			return nil, NewArgumentDefinitionError(ErrMsgKeywordOrdering, name, argName)
		}
	}

	switch {
	case b.hasVariants:
		d.variants = dedupe(b.variants)
	case b.base != nil:
		d.variants = append([]string(nil), b.base.variants...)
	}

	for k, v := range b.renderers {
		d.renderers[k] = v
	}
	for k, v := range b.cleaners {
		if _, ok := d.argIndex[k]; !ok {
			return nil, NewArgumentDefinitionError(ErrMsgUnknownCleaner, name, k)
		}
		d.cleaners[k] = v
	}
	if b.clean != nil {
		d.clean = b.clean
	}
	if b.template != nil {
		d.template = b.template
	}
	if b.object != nil {
		d.object = b.object.inherit(d.object)
	}

	return d, nil
}

// MustDefinition is like NewDefinition but panics on error.
func MustDefinition(name string, opts ...DefinitionOption) *Definition {
	d, err := NewDefinition(name, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// ClassName returns the lower-cased definition name used in template
// candidates.
func (d *Definition) ClassName() string { return strings.ToLower(d.name) }

// AppLabel returns the template namespace label.
func (d *Definition) AppLabel() string { return d.appLabel }

// IsAbstract reports whether the definition is a base only.
func (d *Definition) IsAbstract() bool { return d.abstract }

// Base returns the extended definition, if any.
func (d *Definition) Base() *Definition { return d.base }

// Arguments returns the arguments in declaration order.
func (d *Definition) Arguments() []NamedArgument {
	return append([]NamedArgument(nil), d.args...)
}

// Argument returns the named argument.
func (d *Definition) Argument(name string) (*Argument, bool) {
	i, ok := d.argIndex[name]
	if !ok {
		return nil, false
	}
	return d.args[i].Argument, true
}

// Ordering returns the positional argument names.
func (d *Definition) Ordering() []string {
	return append([]string(nil), d.ordering...)
}

// RequiredArgs returns the exact number of positional arguments.
func (d *Definition) RequiredArgs() int { return len(d.ordering) }

// Variants returns the supported variants.
func (d *Definition) Variants() []string {
	return append([]string(nil), d.variants...)
}

// SupportsVariant reports whether variant may be requested. The empty
// variant is always supported.
func (d *Definition) SupportsVariant(variant string) bool {
	if variant == StringEmpty {
		return true
	}
	for _, v := range d.variants {
		if v == variant {
			return true
		}
	}
	return false
}

// ArgumentIndex returns the 1-based position of a positional argument,
// or -1.
func (d *Definition) ArgumentIndex(name string) int {
	for i, n := range d.ordering {
		if n == name {
			return i + 1
		}
	}
	return -1
}

// IsTemplateBacked reports whether output may come from templates.
func (d *Definition) IsTemplateBacked() bool { return d.template != nil }

// IsObjectBacked reports whether instances look up an object.
func (d *Definition) IsObjectBacked() bool { return d.object != nil }

func (d *Definition) renderer(variant string) (RenderFunc, bool) {
	fn, ok := d.renderers[variant]
	return fn, ok && fn != nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
