package inlines

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefinitionsFile is the file form of a set of inline definitions.
type DefinitionsFile struct {
	Inlines []InlineSpec `yaml:"inlines" toml:"inlines"`
}

// InlineSpec declares one definition. Names lists the inline names it
// is registered under; a spec without names is only usable as a base or
// media override. Extends and Media refer to other specs by Definition,
// and a base must be declared before the specs extending it.
type InlineSpec struct {
	Definition        string            `yaml:"definition" toml:"definition"`
	Names             []string          `yaml:"names" toml:"names"`
	Extends           string            `yaml:"extends" toml:"extends"`
	Abstract          bool              `yaml:"abstract" toml:"abstract"`
	AppLabel          string            `yaml:"app_label" toml:"app_label"`
	Variants          []string          `yaml:"variants" toml:"variants"`
	Ordering          []string          `yaml:"ordering" toml:"ordering"`
	Arguments         []ArgumentSpec    `yaml:"arguments" toml:"arguments"`
	Rules             []RuleSpec        `yaml:"rules" toml:"rules"`
	Output            string            `yaml:"output" toml:"output"`
	VariantsOutput    map[string]string `yaml:"variants_output" toml:"variants_output"`
	Template          bool              `yaml:"template" toml:"template"`
	TemplateExtension string            `yaml:"template_extension" toml:"template_extension"`
	ObjectSource      string            `yaml:"object_source" toml:"object_source"`
	Media             map[string]string `yaml:"media" toml:"media"`
}

// ArgumentSpec declares one argument.
type ArgumentSpec struct {
	Name          string            `yaml:"name" toml:"name"`
	Kind          ArgumentKind      `yaml:"kind" toml:"kind"`
	Keyword       bool              `yaml:"keyword" toml:"keyword"`
	Default       any               `yaml:"default" toml:"default"`
	Choices       []ChoiceSpec      `yaml:"choices" toml:"choices"`
	HelpText      string            `yaml:"help_text" toml:"help_text"`
	Query         bool              `yaml:"query" toml:"query"`
	QueryField    string            `yaml:"query_field" toml:"query_field"`
	MinValue      *float64          `yaml:"min_value" toml:"min_value"`
	MaxValue      *float64          `yaml:"max_value" toml:"max_value"`
	MinLength     *int              `yaml:"min_length" toml:"min_length"`
	MaxLength     *int              `yaml:"max_length" toml:"max_length"`
	MaxDigits     *int              `yaml:"max_digits" toml:"max_digits"`
	DecimalPlaces *int              `yaml:"decimal_places" toml:"decimal_places"`
	Pattern       string            `yaml:"pattern" toml:"pattern"`
	ErrorMessages map[string]string `yaml:"error_messages" toml:"error_messages"`
}

// ChoiceSpec declares one allowed value.
type ChoiceSpec struct {
	Value any    `yaml:"value" toml:"value"`
	Label string `yaml:"label" toml:"label"`
}

// RuleSpec is a whole-unit check. Expr is an expr-lang boolean over the
// typed data; when it is false Message is recorded. Message may use
// `{name}` placeholders of the typed data.
type RuleSpec struct {
	Expr    string `yaml:"expr" toml:"expr"`
	Message string `yaml:"message" toml:"message"`
}

// DefinitionSet holds the definitions built from a DefinitionsFile.
type DefinitionSet struct {
	defs  map[string]*Definition
	specs []InlineSpec
}

// LoadDefinitions reads a .yaml, .yml or .toml definitions file.
func LoadDefinitions(path string, logger *zap.Logger) (*DefinitionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	set, err := ParseDefinitions(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug(LogMsgDefinitionsLoaded,
			zap.String(LogFieldPath, path),
			zap.Int(LogFieldCount, len(set.specs)),
		)
	}
	return set, nil
}

// ParseDefinitions decodes definitions in the format named by ext and
// builds them.
func ParseDefinitions(data []byte, ext string) (*DefinitionSet, error) {
	var file DefinitionsFile
	switch strings.ToLower(ext) {
	case ConfigExtYAML, ConfigExtYML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, NewConfigError(ErrMsgConfigDecode, ext, err)
		}
	case ConfigExtTOML:
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, NewConfigError(ErrMsgConfigDecode, ext, err)
		}
	default:
		return nil, NewConfigError(ErrMsgConfigFormat, ext, nil)
	}
	return BuildDefinitions(file)
}

// BuildDefinitions builds every spec of file.
func BuildDefinitions(file DefinitionsFile) (*DefinitionSet, error) {
	set := &DefinitionSet{
		defs:  make(map[string]*Definition, len(file.Inlines)),
		specs: file.Inlines,
	}
	for _, spec := range file.Inlines {
		def, err := set.build(spec)
		if err != nil {
			return nil, err
		}
		set.defs[spec.Definition] = def
	}
	for _, spec := range file.Inlines {
		for _, target := range spec.Media {
			if _, ok := set.defs[target]; !ok {
				return nil, NewUnknownReferenceError(spec.Definition, target)
			}
		}
	}
	return set, nil
}

// Definition returns a built definition by its definition name.
func (s *DefinitionSet) Definition(name string) (*Definition, bool) {
	d, ok := s.defs[name]
	return d, ok
}

// Names returns the definition names in sorted order.
func (s *DefinitionSet) Names() []string {
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register registers every spec that lists names, with its media
// overrides. It stops at the first failure.
func (s *DefinitionSet) Register(r *Registry) error {
	for _, spec := range s.specs {
		if len(spec.Names) == 0 {
			continue
		}
		var media map[string]*Definition
		if len(spec.Media) > 0 {
			media = make(map[string]*Definition, len(spec.Media))
			for key, target := range spec.Media {
				media[key] = s.defs[target]
			}
		}
		if err := r.Register(spec.Names, s.defs[spec.Definition], media); err != nil {
			return err
		}
	}
	return nil
}

func (s *DefinitionSet) build(spec InlineSpec) (*Definition, error) {
	if spec.Definition == StringEmpty {
		return nil, NewDefinitionError(ErrMsgEmptyDefinitionName, spec.Definition)
	}

	var opts []DefinitionOption
	if spec.Extends != StringEmpty {
		base, ok := s.defs[spec.Extends]
		if !ok {
			return nil, NewUnknownReferenceError(spec.Definition, spec.Extends)
		}
		opts = append(opts, Extends(base))
	}
	if spec.Abstract {
		opts = append(opts, Abstract())
	}
	if spec.AppLabel != StringEmpty {
		opts = append(opts, AppLabel(spec.AppLabel))
	}
	if spec.Variants != nil {
		opts = append(opts, Variants(spec.Variants...))
	}
	if spec.Ordering != nil {
		opts = append(opts, Ordering(spec.Ordering...))
	}

	for _, as := range spec.Arguments {
		arg, err := buildArgument(spec.Definition, as)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Arg(as.Name, arg))
	}

	if len(spec.Rules) > 0 {
		clean, err := compileRules(spec.Definition, spec.Rules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Clean(clean))
	}

	if spec.Output != StringEmpty {
		fn, err := compileOutput(spec.Definition, StringEmpty, spec.Output)
		if err != nil {
			return nil, err
		}
		opts = append(opts, RenderWith(fn))
	}
	for variant, out := range spec.VariantsOutput {
		fn, err := compileOutput(spec.Definition, variant, out)
		if err != nil {
			return nil, err
		}
		opts = append(opts, RenderVariant(variant, fn))
	}

	if spec.Template {
		var topts []TemplateOption
		if spec.TemplateExtension != StringEmpty {
			topts = append(topts, TemplateExtension(spec.TemplateExtension))
		}
		opts = append(opts, TemplateBacked(topts...))
	}
	if spec.ObjectSource != StringEmpty {
		opts = append(opts, ObjectBacked(spec.ObjectSource, nil))
	}

	return NewDefinition(spec.Definition, opts...)
}

func buildArgument(definition string, as ArgumentSpec) (*Argument, error) {
	kind := as.Kind
	if kind == StringEmpty {
		kind = KindArgument
	}

	var opts []ArgumentOption
	if as.Keyword {
		opts = append(opts, Keyword())
	}
	if as.Default != nil {
		opts = append(opts, Default(as.Default))
	}
	for _, c := range as.Choices {
		opts = append(opts, WithChoices(Choice{Value: c.Value, Label: c.Label}))
	}
	if as.HelpText != StringEmpty {
		opts = append(opts, HelpText(as.HelpText))
	}
	if as.Query {
		opts = append(opts, Query(as.QueryField))
	}
	if as.MinValue != nil {
		opts = append(opts, MinValue(*as.MinValue))
	}
	if as.MaxValue != nil {
		opts = append(opts, MaxValue(*as.MaxValue))
	}
	if as.MinLength != nil {
		opts = append(opts, MinLength(*as.MinLength))
	}
	if as.MaxLength != nil {
		opts = append(opts, MaxLength(*as.MaxLength))
	}
	if as.MaxDigits != nil {
		opts = append(opts, MaxDigits(*as.MaxDigits))
	}
	if as.DecimalPlaces != nil {
		opts = append(opts, DecimalPlaces(*as.DecimalPlaces))
	}
	if as.Pattern != StringEmpty {
		re, err := regexp.Compile(as.Pattern)
		if err != nil {
			return nil, NewArgumentDefinitionError(ErrMsgInvalidRegex+StrMessageSep+err.Error(), definition, as.Name)
		}
		opts = append(opts, Pattern(re))
	}
	if len(as.ErrorMessages) > 0 {
		opts = append(opts, WithErrorMessages(as.ErrorMessages))
	}

	return NewArgumentOfKind(kind, opts...)
}

type compiledRule struct {
	program *vm.Program
	message string
}

// compileRules compiles rules into a whole-unit clean hook. Rules are
// skipped for instances that already have errors, since their data is
// incomplete.
func compileRules(definition string, rules []RuleSpec) (CleanFunc, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		program, err := expr.Compile(rule.Expr, expr.AsBool(), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, NewRuleError(ErrMsgRuleCompile, definition, i, err)
		}
		compiled = append(compiled, compiledRule{program: program, message: rule.Message})
	}

	return func(inst *Instance, data map[string]any) (map[string]any, error) {
		if inst.hasErrors() {
			return data, nil
		}
		env := ruleEnv(data)

		var failed []*ValidationError
		for i, rule := range compiled {
			out, err := expr.Run(rule.program, env)
			if err != nil {
				return nil, NewRuleError(ErrMsgRuleEval, definition, i, err)
			}
			if ok, _ := out.(bool); !ok {
				failed = append(failed, NewValidationError(rule.message).WithParams(data))
			}
		}
		if ve := JoinValidationErrors(failed...); ve != nil {
			return nil, ve
		}
		return data, nil
	}, nil
}

// ruleEnv exposes decimals as float64 so rules can compare them.
func ruleEnv(data map[string]any) map[string]any {
	env := make(map[string]any, len(data))
	for k, v := range data {
		if d, ok := v.(decimal.Decimal); ok {
			env[k] = d.InexactFloat64()
			continue
		}
		env[k] = v
	}
	return env
}

// compileOutput parses a text/template rendered with the instance's
// template data.
func compileOutput(definition, variant, source string) (RenderFunc, error) {
	tmpl, err := template.New(definition + TemplateVariantSep + variant).
		Funcs(defaultTemplateFuncs()).
		Parse(source)
	if err != nil {
		return nil, NewOutputTemplateError(definition, variant, err)
	}
	return func(inst *Instance) (string, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, inst.TemplateData()); err != nil {
			return StringEmpty, NewTemplateError(tmpl.Name(), err)
		}
		return buf.String(), nil
	}, nil
}
