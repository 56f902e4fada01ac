package inlines

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := New()
		require.NoError(t, err)
		assert.Same(t, DefaultRegistry(), r.Registry())
	})

	t.Run("custom registry", func(t *testing.T) {
		registry := NewRegistry(nil)
		r, err := New(WithRegistry(registry), WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Same(t, registry, r.Registry())
	})

	t.Run("identical delimiters rejected", func(t *testing.T) {
		_, err := New(WithDelimiters("%%", "%%"))
		assert.Error(t, err)
	})

	t.Run("must new panics on bad config", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(WithDelimiters("|", "|")) })
	})
}

func TestRenderer_PassThrough(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	ctx := context.Background()

	inputs := []string{
		"",
		"No inlines",
		"multi\nline\ntext\n",
		"a lone {{ without close",
		"}} reversed {{",
		"{{ split\nacross lines }}",
	}
	for _, in := range inputs {
		out, err := r.Render(ctx, in, WithRaiseErrors(true))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestRenderer_Render(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "default renderer",
			source: "{{ echo arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}",
			want:   "arg1 arg2 kwarg1 kwarg2",
		},
		{
			name:   "keyword default",
			source: "{{ echo arg1 arg2 kwarg1=x }}",
			want:   "arg1 arg2 x kwarg2",
		},
		{
			name:   "missing keyword renders None",
			source: "{{ echo arg1 hope }}",
			want:   "arg1 hope None kwarg2",
		},
		{
			name:   "upper variant",
			source: "{{ echo:upper arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}",
			want:   "ARG1 ARG2 KWARG1 KWARG2",
		},
		{
			name:   "mix variant",
			source: "{{ echo:mix arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}",
			want:   "ArG1 aRg2 KwArG1 kWaRg2",
		},
		{
			name:   "quoted arguments",
			source: `{{ echo 'a new' "arg2" kwarg1="x y" }}`,
			want:   "a new arg2 x y kwarg2",
		},
		{
			name:   "surrounding text kept",
			source: "before {{ echo a arg2 }} middle\n{{ echo b hope }} after",
			want:   "before a arg2 None kwarg2 middle\nb hope None kwarg2 after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(ctx, tt.source, WithRaiseErrors(true))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderer_ValidationErrors(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "empty inline and field cleaner errors",
			source: "{{ }}{{ echo hope arg2 kwarg2=kwarg2 }}",
			want: []string{
				"Empty inline found.",
				"Inline `echo hope arg2 kwarg2=kwarg2`, argument `arg1` (pos 1): Validation Error 1",
				"Inline `echo hope arg2 kwarg2=kwarg2`, argument `arg1` (pos 1): Validation Error 2",
			},
		},
		{
			name:   "whole-unit clean error",
			source: `{{ echo 'a new' "hope" }}`,
			want: []string{
				"Inline `echo 'a new' \"hope\"`:  You are a part of the Rebel Alliance and a traitor!",
			},
		},
		{
			name:   "too few arguments",
			source: "{{ }}\n{{ echo 1 }}\n{{ }}",
			want: []string{
				"Empty inline found.",
				"Inline `echo 1`:  Takes at least 2 non-keyword arguments (1 given).",
				"Empty inline found.",
			},
		},
		{
			name:   "too many arguments",
			source: "{{ echo a new hope }}",
			want: []string{
				"Inline `echo a new hope`:  Takes only 2 non-keyword arguments (3 given).",
			},
		},
		{
			name:   "positional after keyword",
			source: `{{ echo kw=1 'a new' "hope" }}`,
			want: []string{
				"Inline `echo kw=1 'a new' \"hope\"`, non-keyword argument found after keyword argument.",
			},
		},
		{
			name:   "keyword argument validators",
			source: "{{ echo arg1 arg2 kwarg3=rebel }}",
			want: []string{
				"Inline `echo arg1 arg2 kwarg3=rebel`, argument `kwarg3`: Enter a valid email address.",
				"Inline `echo arg1 arg2 kwarg3=rebel`, argument `kwarg3`: Is a part of the Rebel Alliance and a traitor!",
			},
		},
		{
			name:   "unexpected keyword",
			source: "{{ echo arg1 arg2 nope=1 }}",
			want: []string{
				"Inline `echo arg1 arg2 nope=1`:  Got an unexpected keyword argument `nope`",
			},
		},
		{
			name:   "invalid variant",
			source: "{{ echo:shout arg1 arg2 }}",
			want: []string{
				"`shout` is not a valid variant for inline `echo`",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(ctx, tt.source, WithRaiseErrors(true), WithVerboseErrors(false))
			assert.Empty(t, out)
			assert.Equal(t, tt.want, renderErrorMessages(t, err))
		})
	}
}

func TestRenderer_VerboseErrors(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	source := "\n" +
		"            {{ }}\n" +
		"\n" +
		"            Text Token\n" +
		"\n" +
		"            {{ echo2 }}\n" +
		"            {{ echo arg1 arg3 kwarg1=kwarg1 kwarg2=kwarg2 }}\n" +
		"            {{ echo arg1=arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}\n" +
		"        "

	_, err := r.Render(context.Background(), source, WithRaiseErrors(true))
	assert.Equal(t, []string{
		"Syntax error on line 2. Empty inline found.",
		"Syntax error on line 6. Inline `echo2` is not registered.",
		"Inline error on line 7. Inline `echo arg1 arg3 kwarg1=kwarg1 kwarg2=kwarg2`, argument `arg2` (pos 2): `arg3` is not a valid choice.",
		"Syntax error on line 8. Inline `echo arg1=arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2`, non-keyword argument found after keyword argument.",
	}, renderErrorMessages(t, err))

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.True(t, renderErr.Verbose())
	require.Len(t, renderErr.Errors(), 4)
	assert.Equal(t, CategoryValidation, renderErr.Errors()[2].Category)
	assert.Equal(t, 7, renderErr.Errors()[2].Line)
}

func TestRenderer_Media(t *testing.T) {
	registry := NewRegistry(nil)
	echo := newEcho(t)
	require.NoError(t, registry.Register([]string{"echo"}, echo, map[string]*Definition{
		"mix_mod_4": newEchoMix(t, echo),
	}))
	r := MustNew(WithRegistry(registry))
	ctx := context.Background()
	source := "{{ echo:mix arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}"

	out, err := r.Render(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, "ArG1 aRg2 KwArG1 kWaRg2", out)

	out, err = r.Render(ctx, source, WithMedia("mix_mod_4"))
	require.NoError(t, err)
	assert.Equal(t, "Arg1 arg2 kwArg1 kwaRg2", out)
}

func TestRenderer_SwallowedErrors(t *testing.T) {
	r, registry := newFixtureRenderer(t, WithDebug(false))
	require.NoError(t, registry.RegisterOne("none", newEchoParent(t)))
	ctx := context.Background()

	out, err := r.Render(ctx, "text {{ echo }}")
	assert.NoError(t, err)
	assert.Empty(t, out)

	out, err = r.Render(ctx, "{{ none a b }}")
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderer_UnexpectedErrors(t *testing.T) {
	source := "{{ none a b }}"
	newRenderer := func(t *testing.T, opts ...Option) *Renderer {
		r, registry := newFixtureRenderer(t, opts...)
		require.NoError(t, registry.RegisterOne("none", newEchoParent(t)))
		return r
	}
	ctx := context.Background()

	t.Run("raised with raise errors", func(t *testing.T) {
		r := newRenderer(t, WithDebug(false))
		_, err := r.Render(ctx, source, WithRaiseErrors(true))
		assert.NoError(t, err, "debug off wins over raise errors")

		r = newRenderer(t)
		r.config.debug = nil
		_, err = r.Render(ctx, source, WithRaiseErrors(true))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRenderNotDefined))
		assert.False(t, IsRenderError(err))
	})

	t.Run("debug forces raising", func(t *testing.T) {
		r := newRenderer(t, WithDebug(true))
		_, err := r.Render(ctx, source)
		assert.True(t, errors.Is(err, ErrRenderNotDefined))
	})

	t.Run("debug from environment", func(t *testing.T) {
		t.Setenv(EnvDebug, "true")
		r := newRenderer(t)
		_, err := r.Render(ctx, source)
		assert.True(t, errors.Is(err, ErrRenderNotDefined))
	})

	t.Run("cancelled context", func(t *testing.T) {
		r := newRenderer(t, WithDebug(true))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Render(cctx, "{{ echo a arg2 }}")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRenderer_LogErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r, registry := newFixtureRenderer(t, WithLogger(zap.New(core)), WithDebug(false))
	require.NoError(t, registry.RegisterOne("none", newEchoParent(t)))
	ctx := context.Background()

	out, err := r.Render(ctx, "{{ echo:no-such-variant }}", WithLogErrors(true))
	assert.NoError(t, err)
	assert.Empty(t, out)
	require.Equal(t, 1, logs.FilterMessage(LogMsgInlineError).Len())
	entry := logs.FilterMessage(LogMsgInlineError).All()[0]
	assert.Equal(t,
		"Syntax error on line 1. `no-such-variant` is not a valid variant for inline `echo`",
		entry.ContextMap()[LogFieldMessage])

	_, err = r.Render(ctx, "{{ none a b }}", WithLogErrors(true))
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(LogMsgRenderFailed).Len())

	_, err = r.Render(ctx, "{{ echo }}")
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage(LogMsgInlineError).Len())
}

func TestRenderer_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	r, _ := newFixtureRenderer(t, WithTracerProvider(tp))
	ctx := context.Background()

	_, err := r.Render(ctx, "{{ echo a arg2 }} and {{ }}", WithMedia("web"))
	assert.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, SpanNameRender, span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := make(map[string]any)
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "web", attrs[SpanAttrMedia])
	assert.Equal(t, int64(2), attrs[SpanAttrNodes])
	assert.Equal(t, int64(1), attrs[SpanAttrErrors])
	assert.NotEmpty(t, attrs[SpanAttrRenderID])
}

func TestRenderer_FreshInstancePerRender(t *testing.T) {
	registry := NewRegistry(nil)
	calls := 0
	def := MustDefinition("Counter",
		Arg("value", NewIntegerArgument()),
		Clean(func(inst *Instance, data map[string]any) (map[string]any, error) {
			calls++
			return data, nil
		}),
		RenderWith(func(inst *Instance) (string, error) {
			return FormatMessage("{value}", inst.Data()), nil
		}),
	)
	require.NoError(t, registry.RegisterOne("count", def))
	r := MustNew(WithRegistry(registry))

	nodes, errs := r.Parse("{{ count 7 }}", "")
	require.Empty(t, errs)
	require.Len(t, nodes, 1)

	for i := 0; i < 3; i++ {
		out, err := nodes[0].Render(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "7", out)
	}
	assert.Equal(t, 3, calls)
}

func TestRenderer_CustomDelimiters(t *testing.T) {
	registry := NewRegistry(nil)
	require.NoError(t, registry.RegisterOne("echo", newEcho(t)))
	r := MustNew(WithRegistry(registry), WithDelimiters("[[", "]]"))

	out, err := r.Render(context.Background(), "{{ echo }} [[ echo a arg2 ]]", WithRaiseErrors(true))
	require.NoError(t, err)
	assert.Equal(t, "{{ echo }} a arg2 None kwarg2", out)
}

func TestRenderer_RenderHTML(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	out, err := r.RenderHTML(context.Background(), "<b>{{ echo a arg2 }}</b>")
	require.NoError(t, err)
	assert.Equal(t, "<b>a arg2 None kwarg2</b>", string(out))
}

func TestRender_DefaultRegistry(t *testing.T) {
	name := "default_registry_echo"
	require.NoError(t, DefaultRegistry().RegisterOne(name, newEcho(t)))
	t.Cleanup(func() { _ = DefaultRegistry().Unregister(name) })

	out, err := Render(context.Background(), "{{ "+name+" a arg2 }}")
	require.NoError(t, err)
	assert.Equal(t, "a arg2 None kwarg2", out)
}
