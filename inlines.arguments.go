package inlines

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/itsatony/go-cuserr"
	"github.com/shopspring/decimal"
)

// ArgumentKind names the coercion and validation strategy of an argument.
type ArgumentKind string

// Argument kinds
const (
	KindArgument    ArgumentKind = "argument"
	KindBoolean     ArgumentKind = "boolean"
	KindNullBoolean ArgumentKind = "null_boolean"
	KindChar        ArgumentKind = "char"
	KindEmail       ArgumentKind = "email"
	KindURL         ArgumentKind = "url"
	KindSlug        ArgumentKind = "slug"
	KindRegex       ArgumentKind = "regex"
	KindInteger     ArgumentKind = "integer"
	KindFloat       ArgumentKind = "float"
	KindDecimal     ArgumentKind = "decimal"
)

// kindSpec describes one argument kind. Messages and default validators
// of the parent kind are collected first.
type kindSpec struct {
	parent     ArgumentKind
	messages   map[string]MessageTemplate
	validators func() []Validator
	coerce     func(a *Argument, value any) (any, *ValidationError)
	finish     func(a *Argument, value any) *ValidationError
}

var argumentKinds = map[ArgumentKind]kindSpec{
	KindArgument: {
		messages: map[string]MessageTemplate{
			CodeInvalidChoice: Message(MsgInvalidChoice),
		},
		coerce: coerceIdentity,
	},
	KindBoolean:     {parent: KindArgument, coerce: coerceBoolean},
	KindNullBoolean: {parent: KindBoolean, coerce: coerceNullBoolean},
	KindChar:        {parent: KindArgument, coerce: coerceString},
	KindEmail: {
		parent:     KindChar,
		validators: func() []Validator { return []Validator{EmailValidator()} },
	},
	KindURL: {
		parent:     KindChar,
		messages:   map[string]MessageTemplate{CodeInvalid: Message(MsgInvalidURL)},
		validators: func() []Validator { return []Validator{URLValidator()} },
	},
	KindSlug: {
		parent:     KindChar,
		validators: func() []Validator { return []Validator{SlugValidator()} },
	},
	KindRegex: {parent: KindChar},
	KindInteger: {
		parent:   KindArgument,
		messages: map[string]MessageTemplate{CodeInvalid: Message(MsgInvalidInteger)},
		coerce:   coerceInteger,
	},
	KindFloat: {
		parent:   KindInteger,
		messages: map[string]MessageTemplate{CodeInvalid: Message(MsgInvalidNumber)},
		coerce:   coerceFloat,
		finish:   finishFloat,
	},
	KindDecimal: {
		parent: KindInteger,
		messages: map[string]MessageTemplate{
			CodeInvalid:          Message(MsgInvalidNumber),
			CodeMaxDigits:        PluralMessage(MsgMaxDigitsOne, MsgMaxDigitsOther, ParamMax),
			CodeMaxDecimalPlaces: PluralMessage(MsgMaxDecimalsOne, MsgMaxDecimalsOther, ParamMax),
			CodeMaxWholeDigits:   PluralMessage(MsgMaxWholeOne, MsgMaxWholeOther, ParamMax),
		},
		coerce: coerceDecimal,
		finish: finishDecimal,
	},
}

// ArgumentKinds returns every known kind name.
func ArgumentKinds() []ArgumentKind {
	return []ArgumentKind{
		KindArgument, KindBoolean, KindNullBoolean, KindChar, KindEmail, KindURL,
		KindSlug, KindRegex, KindInteger, KindFloat, KindDecimal,
	}
}

// chain returns the kind lineage, most-base first.
func (k ArgumentKind) chain() []kindSpec {
	var specs []kindSpec
	for kind := k; kind != StringEmpty; {
		spec, ok := argumentKinds[kind]
		if !ok {
			break
		}
		specs = append([]kindSpec{spec}, specs...)
		kind = spec.parent
	}
	return specs
}

// isText reports whether the kind coerces to a string.
func (k ArgumentKind) isText() bool {
	for kind := k; kind != StringEmpty; kind = argumentKinds[kind].parent {
		if kind == KindChar {
			return true
		}
	}
	return false
}

// isNumeric reports whether the kind accepts value bounds.
func (k ArgumentKind) isNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindDecimal
}

// Choice is one allowed value of a choice-constrained argument.
type Choice struct {
	Value any
	Label string
}

var creationCounter atomic.Uint64

// Argument describes one inline parameter: how a raw value is coerced
// and which rules it must satisfy.
type Argument struct {
	name       string
	kind       ArgumentKind
	keyword    bool
	def        any
	choices    []Choice
	validators []Validator
	messages   map[string]MessageTemplate
	helpText   string
	query      bool
	queryField string
	order      uint64

	userValidators []Validator
	userMessages   map[string]MessageTemplate

	minValue      *decimal.Decimal
	maxValue      *decimal.Decimal
	minLength     *int
	maxLength     *int
	maxDigits     *int
	decimalPlaces *int

	pattern      *regexp.Regexp
	patternIndex int
}

// ArgumentOption configures an argument at construction.
type ArgumentOption func(*Argument)

// Keyword marks the argument as keyword-only.
func Keyword() ArgumentOption {
	return func(a *Argument) {
		a.keyword = true
	}
}

// Default sets the value used when a keyword argument is not supplied.
func Default(value any) ArgumentOption {
	return func(a *Argument) {
		a.def = value
	}
}

// WithChoices restricts the argument to the given values.
func WithChoices(choices ...Choice) ArgumentOption {
	return func(a *Argument) {
		a.choices = append(a.choices, choices...)
	}
}

// WithValidators appends validators after the kind's defaults.
func WithValidators(validators ...Validator) ArgumentOption {
	return func(a *Argument) {
		a.userValidators = append(a.userValidators, validators...)
	}
}

// WithErrorMessages overrides messages by error code.
func WithErrorMessages(messages map[string]string) ArgumentOption {
	return func(a *Argument) {
		for code, msg := range messages {
			a.setUserMessage(code, Message(msg))
		}
	}
}

// WithErrorMessageTemplates overrides messages by error code, allowing
// plural forms.
func WithErrorMessageTemplates(messages map[string]MessageTemplate) ArgumentOption {
	return func(a *Argument) {
		for code, tpl := range messages {
			a.setUserMessage(code, tpl)
		}
	}
}

// HelpText documents the argument.
func HelpText(text string) ArgumentOption {
	return func(a *Argument) {
		a.helpText = text
	}
}

// Query marks the argument as an object lookup constraint on field.
// An empty field uses the argument name.
func Query(field string) ArgumentOption {
	return func(a *Argument) {
		a.query = true
		a.queryField = field
	}
}

// MinValue sets the lower bound of a numeric argument.
func MinValue(v float64) ArgumentOption {
	return func(a *Argument) {
		d := decimal.NewFromFloat(v)
		a.minValue = &d
	}
}

// MaxValue sets the upper bound of a numeric argument.
func MaxValue(v float64) ArgumentOption {
	return func(a *Argument) {
		d := decimal.NewFromFloat(v)
		a.maxValue = &d
	}
}

// MinLength sets the minimum length of a text argument.
func MinLength(n int) ArgumentOption {
	return func(a *Argument) {
		a.minLength = &n
	}
}

// MaxLength sets the maximum length of a text argument.
func MaxLength(n int) ArgumentOption {
	return func(a *Argument) {
		a.maxLength = &n
	}
}

// MaxDigits limits the total digits of a decimal argument.
func MaxDigits(n int) ArgumentOption {
	return func(a *Argument) {
		a.maxDigits = &n
	}
}

// DecimalPlaces limits the fractional digits of a decimal argument.
func DecimalPlaces(n int) ArgumentOption {
	return func(a *Argument) {
		a.decimalPlaces = &n
	}
}

// Pattern sets the pattern of a regex argument.
func Pattern(re *regexp.Regexp) ArgumentOption {
	return func(a *Argument) {
		a.pattern = re
	}
}

// NewArgument creates an argument that keeps raw values as given.
func NewArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindArgument, opts)
}

// NewBooleanArgument creates an argument where "false", "0" and empty
// mean false.
func NewBooleanArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindBoolean, opts)
}

// NewNullBooleanArgument creates a three-state boolean argument.
func NewNullBooleanArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindNullBoolean, opts)
}

// NewCharArgument creates a string argument.
func NewCharArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindChar, opts)
}

// NewEmailArgument creates an email address argument.
func NewEmailArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindEmail, opts)
}

// NewURLArgument creates a URL argument.
func NewURLArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindURL, opts)
}

// NewSlugArgument creates a slug argument.
func NewSlugArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindSlug, opts)
}

// NewRegexArgument creates a string argument that must match pattern.
func NewRegexArgument(pattern *regexp.Regexp, opts ...ArgumentOption) *Argument {
	return newArgument(KindRegex, append([]ArgumentOption{Pattern(pattern)}, opts...))
}

// NewIntegerArgument creates a whole number argument.
func NewIntegerArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindInteger, opts)
}

// NewFloatArgument creates a floating point argument.
func NewFloatArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindFloat, opts)
}

// NewDecimalArgument creates a fixed point argument.
func NewDecimalArgument(opts ...ArgumentOption) *Argument {
	return newArgument(KindDecimal, opts)
}

// NewArgumentOfKind creates an argument by kind name.
func NewArgumentOfKind(kind ArgumentKind, opts ...ArgumentOption) (*Argument, error) {
	if _, ok := argumentKinds[kind]; !ok {
		return nil, cuserr.NewValidationError(ErrCodeDefinition, ErrMsgUnknownArgumentKind).
			WithMetadata(MetaKeyKind, string(kind))
	}
	arg := newArgument(kind, opts)
	if kind == KindRegex && arg.pattern == nil {
		return nil, cuserr.NewValidationError(ErrCodeDefinition, ErrMsgInvalidRegex).
			WithMetadata(MetaKeyKind, string(kind))
	}
	return arg, nil
}

func newArgument(kind ArgumentKind, opts []ArgumentOption) *Argument {
	a := &Argument{
		kind:         kind,
		order:        creationCounter.Add(1),
		patternIndex: -1,
	}
	for _, opt := range opts {
		opt(a)
	}

	chain := kind.chain()

	a.messages = make(map[string]MessageTemplate)
	for _, spec := range chain {
		for code, tpl := range spec.messages {
			a.messages[code] = tpl
		}
	}
	for code, tpl := range a.userMessages {
		a.messages[code] = tpl
	}

	for _, spec := range chain {
		if spec.validators != nil {
			a.validators = append(a.validators, spec.validators()...)
		}
	}
	a.validators = append(a.validators, a.userValidators...)

	if kind.isText() {
		if a.minLength != nil {
			a.validators = append(a.validators, MinLengthValidator(*a.minLength))
		}
		if a.maxLength != nil {
			a.validators = append(a.validators, MaxLengthValidator(*a.maxLength))
		}
	}
	if kind.isNumeric() {
		if a.maxValue != nil {
			a.validators = append(a.validators, MaxValueValidator(*a.maxValue))
		}
		if a.minValue != nil {
			a.validators = append(a.validators, MinValueValidator(*a.minValue))
		}
	}
	if kind == KindRegex && a.pattern != nil {
		a.SetPattern(a.pattern)
	}

	return a
}

func (a *Argument) setUserMessage(code string, tpl MessageTemplate) {
	if a.userMessages == nil {
		a.userMessages = make(map[string]MessageTemplate)
	}
	a.userMessages[code] = tpl
}

// SetPattern installs a new pattern for a regex argument, replacing the
// previous pattern validator in place. It must not be called while the
// argument is processing values.
func (a *Argument) SetPattern(re *regexp.Regexp) {
	a.pattern = re
	v := RegexValidator(re, StringEmpty)
	if a.patternIndex >= 0 {
		a.validators[a.patternIndex] = v
		return
	}
	a.patternIndex = len(a.validators)
	a.validators = append(a.validators, v)
}

// Name returns the name the argument was bound to by its definition.
func (a *Argument) Name() string { return a.name }

// Kind returns the argument kind.
func (a *Argument) Kind() ArgumentKind { return a.kind }

// IsKeyword reports whether the argument is keyword-only.
func (a *Argument) IsKeyword() bool { return a.keyword }

// DefaultValue returns the keyword default, nil when unset.
func (a *Argument) DefaultValue() any { return a.def }

// Choices returns the allowed values.
func (a *Argument) Choices() []Choice { return a.choices }

// HelpText returns the argument documentation.
func (a *Argument) HelpText() string { return a.helpText }

// Pattern returns the pattern of a regex argument.
func (a *Argument) Pattern() *regexp.Regexp { return a.pattern }

// IsQuery reports whether the argument constrains object lookup.
func (a *Argument) IsQuery() bool { return a.query }

// QueryField returns the lookup field, defaulting to the argument name.
func (a *Argument) QueryField() string {
	if a.queryField != StringEmpty {
		return a.queryField
	}
	return a.name
}

// ErrorMessage returns the resolved template for code.
func (a *Argument) ErrorMessage(code string) (MessageTemplate, bool) {
	tpl, ok := a.messages[code]
	return tpl, ok
}

// Coerce converts a raw value to the argument's typed value.
// A nil result means no value.
func (a *Argument) Coerce(value any) (any, error) {
	v, verr := a.coerce(value)
	if verr != nil {
		return nil, verr
	}
	return v, nil
}

func (a *Argument) coerce(value any) (any, *ValidationError) {
	chain := a.kind.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].coerce != nil {
			v, err := chain[i].coerce(a, value)
			return v, err.applyOverrides(a.messages)
		}
	}
	return value, nil
}

// Validate checks a coerced value and returns every failure at once.
func (a *Argument) Validate(value any) error {
	if verr := a.validate(value); verr != nil {
		return verr
	}
	return nil
}

func (a *Argument) validate(value any) *ValidationError {
	var errs []*ValidationError

	if value != nil && !a.isValidChoice(value) {
		errs = append(errs, a.newError(CodeInvalidChoice).WithParam(ParamValue, value))
	}

	if value != nil {
		for _, v := range a.validators {
			if err := v.Validate(value); err != nil {
				errs = append(errs, err.applyOverrides(a.messages))
			}
		}
	}

	if value != nil {
		if spec := a.finisher(); spec != nil {
			errs = append(errs, spec(a, value))
		}
	}

	return JoinValidationErrors(errs...)
}

func (a *Argument) finisher() func(*Argument, any) *ValidationError {
	chain := a.kind.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].finish != nil {
			return chain[i].finish
		}
	}
	return nil
}

// Process coerces and validates a raw value. Coercion failures stop
// processing; validation failures are all collected.
func (a *Argument) Process(value any) (any, error) {
	v, verr := a.process(value)
	if verr != nil {
		return nil, verr
	}
	return v, nil
}

func (a *Argument) process(value any) (any, *ValidationError) {
	v, err := a.coerce(value)
	if err != nil {
		return nil, err
	}
	if err := a.validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (a *Argument) newError(code string) *ValidationError {
	return NewValidationErrorFromTemplate(a.messages[code]).WithCode(code)
}

func (a *Argument) isValidChoice(value any) bool {
	if a.choices == nil {
		return true
	}
	text := textOf(value)
	for _, c := range a.choices {
		if text == textOf(c.Value) {
			return true
		}
		if d, ok := toDecimal(value); ok {
			if k, ok := toDecimal(c.Value); ok && d.Equal(k) {
				return true
			}
		}
	}
	return false
}

// textOf renders a value the way it appears in messages and comparisons.
func textOf(value any) string {
	return formatParam(value)
}

func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == StringEmpty
	}
	return false
}

func coerceIdentity(_ *Argument, value any) (any, *ValidationError) {
	return value, nil
}

func coerceBoolean(_ *Argument, value any) (any, *ValidationError) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		lower := strings.ToLower(v)
		return !(lower == StringEmpty || lower == StrFalse || lower == StrZero), nil
	default:
		if d, ok := toDecimal(v); ok {
			return !d.IsZero(), nil
		}
		return true, nil
	}
}

func coerceNullBoolean(_ *Argument, value any) (any, *ValidationError) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case StrTrue, StrOne:
			return true, nil
		case StrFalse, StrZero:
			return false, nil
		}
	}
	return nil, nil
}

func coerceString(_ *Argument, value any) (any, *ValidationError) {
	if isEmptyValue(value) {
		return StringEmpty, nil
	}
	return textOf(value), nil
}

func coerceInteger(a *Argument, value any) (any, *ValidationError) {
	if isEmptyValue(value) {
		return nil, nil
	}
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil {
			return n, nil
		}
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return int64(v), nil
		}
	case decimal.Decimal:
		if v.IsInteger() {
			return v.IntPart(), nil
		}
	}
	return nil, a.newError(CodeInvalid)
}

func coerceFloat(a *Argument, value any) (any, *ValidationError) {
	if isEmptyValue(value) {
		return nil, nil
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f, nil
		}
	}
	return nil, a.newError(CodeInvalid)
}

func coerceDecimal(a *Argument, value any) (any, *ValidationError) {
	if isEmptyValue(value) {
		return nil, nil
	}
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		if d, ok := toDecimal(v); ok {
			return d, nil
		}
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err == nil {
			return d, nil
		}
	}
	return nil, a.newError(CodeInvalid)
}

func finishFloat(a *Argument, value any) *ValidationError {
	if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return a.newError(CodeInvalid)
	}
	return nil
}

// finishDecimal enforces digit limits. Every violated limit is reported.
func finishDecimal(a *Argument, value any) *ValidationError {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil
	}

	digits, decimals := decimalDigits(d)
	whole := digits - decimals

	var errs []*ValidationError
	if a.maxDigits != nil && digits > *a.maxDigits {
		errs = append(errs, a.newError(CodeMaxDigits).WithParam(ParamMax, *a.maxDigits))
	}
	if a.decimalPlaces != nil && decimals > *a.decimalPlaces {
		errs = append(errs, a.newError(CodeMaxDecimalPlaces).WithParam(ParamMax, *a.decimalPlaces))
	}
	if a.maxDigits != nil && a.decimalPlaces != nil && whole > *a.maxDigits-*a.decimalPlaces {
		errs = append(errs, a.newError(CodeMaxWholeDigits).WithParam(ParamMax, *a.maxDigits-*a.decimalPlaces))
	}
	return JoinValidationErrors(errs...)
}

// decimalDigits counts total and fractional digits of d as written,
// so "1.0" has two digits and one decimal place.
func decimalDigits(d decimal.Decimal) (int, int) {
	coefficient := d.Coefficient()
	n := len(coefficient.Abs(coefficient).String())
	exp := int(d.Exponent())

	if exp >= 0 {
		return n + exp, 0
	}
	decimals := -exp
	if decimals > n {
		n = decimals
	}
	return n, decimals
}
