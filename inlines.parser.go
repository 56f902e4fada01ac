package inlines

import (
	"errors"

	"github.com/itsatony/go-inlines/internal"
	"go.uber.org/zap"
)

// parser turns source text into nodes. Problems with individual inlines
// are recorded as syntax errors and the offending inline is skipped.
type parser struct {
	registry *Registry
	lexer    internal.LexerConfig
	calls    *internal.CallParser
	instance []InstanceOption
	logger   *zap.Logger
}

func newParser(registry *Registry, lexer internal.LexerConfig, instance []InstanceOption, logger *zap.Logger) *parser {
	return &parser{
		registry: registry,
		lexer:    lexer,
		calls:    internal.NewCallParser(logger),
		instance: instance,
		logger:   logger,
	}
}

// parse tokenizes source and resolves every inline against the registry
// for media.
func (p *parser) parse(source, media string) ([]Node, []*LineError) {
	tokens := internal.NewLexerWithConfig(source, p.lexer, p.logger).Tokenize()

	nodes := make([]Node, 0, len(tokens))
	var errs []*LineError

	for _, tok := range tokens {
		if !tok.IsInline() {
			nodes = append(nodes, &TextNode{text: tok.Contents, line: tok.Line})
			continue
		}

		node, err := p.parseInline(tok, media)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, errs
}

func (p *parser) parseInline(tok internal.Token, media string) (*InlineNode, *LineError) {
	call, err := p.calls.Parse(tok)
	if err != nil {
		return nil, syntaxError(tok.Line, callErrorMessage(err))
	}

	def, err := p.registry.Lookup(call.Name, call.Variant, media)
	switch {
	case errors.Is(err, ErrNotRegistered):
		le := syntaxError(tok.Line, FormatMessage(MsgNotRegistered, map[string]any{
			ParamInlineName: call.Name,
		}))
		le.Suggestions = p.registry.Suggest(call.Name)
		return nil, le
	case errors.Is(err, ErrInvalidVariant):
		return nil, syntaxError(tok.Line, FormatMessage(MsgInvalidVariant, map[string]any{
			ParamVariant:    call.Variant,
			ParamInlineName: call.Name,
		}))
	case err != nil:
		return nil, syntaxError(tok.Line, err.Error())
	}

	kwargs := make([]KeywordArg, len(call.Kwargs))
	for i, kw := range call.Kwargs {
		kwargs[i] = KeywordArg{Name: kw.Name, Value: kw.Value}
	}
	name, args := call.Name, call.Args
	opts := p.instance

	return &InlineNode{
		name:     name,
		variant:  call.Variant,
		contents: call.Contents,
		line:     tok.Line,
		def:      def,
		factory: func() (*Instance, error) {
			return def.NewInstance(name, args, kwargs, opts...)
		},
	}, nil
}

func syntaxError(line int, message string) *LineError {
	return &LineError{Line: line, Category: CategorySyntax, Message: message}
}

func callErrorMessage(err error) string {
	var ce *internal.CallError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	params := make(map[string]any, len(ce.Params))
	for k, v := range ce.Params {
		params[k] = v
	}
	return FormatMessage(ce.Message, params)
}
