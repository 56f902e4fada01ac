package inlines

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Fixture definitions shared by the rendering, parsing and form tests.

const (
	choiceHope   = "hope"
	choiceArg2   = "arg2"
	choiceKwarg2 = "kwarg2"
)

var fixtureChoices = []Choice{
	{Value: choiceHope, Label: "Hope"},
	{Value: choiceArg2, Label: "Argument 2"},
	{Value: choiceKwarg2, Label: "Keyword Argument 2"},
}

var notARebel = ValidatorFunc(func(value any) *ValidationError {
	if value == "rebel" {
		return NewValidationError("Is a part of the Rebel Alliance and a traitor!")
	}
	return nil
})

func mixCase(s string, mod int) string {
	var b strings.Builder
	for i, ch := range []rune(s) {
		if i%mod == 0 {
			b.WriteString(strings.ToUpper(string(ch)))
		} else {
			b.WriteString(strings.ToLower(string(ch)))
		}
	}
	return b.String()
}

func echoText(inst *Instance) string {
	return FormatMessage("{arg1} {arg2} {kwarg1} {kwarg2}", inst.Data())
}

func newEchoParent(t *testing.T) *Definition {
	t.Helper()
	def, err := NewDefinition("BasicInlineParent",
		Arg("arg2", NewArgument()),
		Arg("arg1", NewArgument()),
	)
	require.NoError(t, err)
	return def
}

func newEcho(t *testing.T) *Definition {
	t.Helper()
	def, err := NewDefinition("BasicInline",
		Extends(newEchoParent(t)),
		Arg("arg2", NewArgument(WithChoices(fixtureChoices...))),
		Arg("arg1", NewArgument()),
		Arg("kwarg1", NewArgument(Keyword())),
		Arg("kwarg2", NewArgument(Keyword(), Default(choiceKwarg2), WithChoices(fixtureChoices...))),
		Arg("kwarg3", NewArgument(Keyword(), Default("x@x.com"), WithValidators(EmailValidator(), notARebel))),
		AppLabel("test_label"),
		Variants("upper", "mix"),
		Ordering("arg1", "arg2"),
		CleanField("arg1", func(inst *Instance, value any) (any, error) {
			if value == choiceHope {
				return nil, JoinValidationErrors(
					NewValidationError("Validation Error 1").WithCode("hope"),
					NewValidationError("Validation Error 2"),
				)
			}
			return value, nil
		}),
		Clean(func(inst *Instance, data map[string]any) (map[string]any, error) {
			if data["arg1"] == "a new" && data["arg2"] == choiceHope {
				return nil, NewValidationError("You are a part of the Rebel Alliance and a traitor!")
			}
			return data, nil
		}),
		RenderWith(func(inst *Instance) (string, error) {
			return echoText(inst), nil
		}),
		RenderVariant("upper", func(inst *Instance) (string, error) {
			return strings.ToUpper(echoText(inst)), nil
		}),
		RenderVariant("mix", func(inst *Instance) (string, error) {
			return mixCase(echoText(inst), 2), nil
		}),
	)
	require.NoError(t, err)
	return def
}

func newEchoMix(t *testing.T, base *Definition) *Definition {
	t.Helper()
	def, err := NewDefinition("BasicMixInline",
		Extends(base),
		RenderVariant("mix", func(inst *Instance) (string, error) {
			return mixCase(echoText(inst), 4), nil
		}),
	)
	require.NoError(t, err)
	return def
}

// newFixtureRenderer returns a renderer over a fresh registry with echo
// registered.
func newFixtureRenderer(t *testing.T, opts ...Option) (*Renderer, *Registry) {
	t.Helper()
	registry := NewRegistry(nil)
	require.NoError(t, registry.RegisterOne("echo", newEcho(t)))

	r, err := New(append([]Option{WithRegistry(registry)}, opts...)...)
	require.NoError(t, err)
	return r, registry
}

// renderErrorMessages returns the messages of a *RenderError.
func renderErrorMessages(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr), "expected *RenderError, got %T", err)
	return renderErr.Messages()
}
