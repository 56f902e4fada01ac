package inlines

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBasicTemplate(t *testing.T) *Definition {
	t.Helper()
	def, err := NewDefinition("BasicTemplateInline",
		Arg("arg1", NewArgument()),
		Variants("downer"),
		AppLabel("test_app"),
		RenderVariant("downer", func(inst *Instance) (string, error) {
			return strings.ToLower(textOf(inst.Get("arg1"))), nil
		}),
		TemplateBacked(TemplateContext(func(inst *Instance) map[string]any {
			return inst.Data()
		})),
	)
	require.NoError(t, err)
	return def
}

func newMarkdownTemplate(t *testing.T, base *Definition) *Definition {
	t.Helper()
	def, err := NewDefinition("MarkdownTemplateInline",
		Extends(base),
		Variants("upper"),
		TemplateBacked(
			TemplateExtension("md"),
			TemplateContext(func(inst *Instance) map[string]any {
				return inst.Data()
			}),
		),
	)
	require.NoError(t, err)
	return def
}

var testTemplates = fstest.MapFS{
	"inlines/test_app/echo_markdown.md":        {Data: []byte("**{{ .arg1 }}**")},
	"inlines/test_app/echo_markdown__upper.md": {Data: []byte("**{{ upper .arg1 }}**")},
	"inlines/print/echo_markdown.md":           {Data: []byte("[{{ .inline.arg1 }}]")},
	"inlines/titled.html":                      {Data: []byte("{{ title .inline.arg1 }}")},
	"inlines/broken.html":                      {Data: []byte("{{ .inline.arg1 ")},
	"inlines/failing.html":                     {Data: []byte("{{ .inline.arg1.Missing }}")},
}

func TestInstance_TemplateCandidates(t *testing.T) {
	basic, err := newBasicTemplate(t).NewInstance("echo_template", []string{"arg1"}, nil)
	require.NoError(t, err)

	templates := []string{
		"inlines/test_app/echo_template.html",
		"inlines/echo_template.html",
		"inlines/test_app/basictemplateinline.html",
		"inlines/basictemplateinline.html",
	}
	mediaTemplates := append([]string{
		"inlines/media/test_app/echo_template.html",
		"inlines/media/echo_template.html",
		"inlines/media/test_app/basictemplateinline.html",
		"inlines/media/basictemplateinline.html",
	}, templates...)

	assert.Equal(t, templates, basic.TemplateCandidates("", ""))
	assert.Equal(t, mediaTemplates, basic.TemplateCandidates("", "media"))

	markdown, err := newMarkdownTemplate(t, newBasicTemplate(t)).NewInstance("echo_template", []string{"arg1"}, nil)
	require.NoError(t, err)

	mdTemplates := []string{
		"inlines/test_app/echo_template.md",
		"inlines/echo_template.md",
		"inlines/test_app/markdowntemplateinline.md",
		"inlines/markdowntemplateinline.md",
	}
	variantTemplates := append([]string{
		"inlines/test_app/echo_template__variant.md",
		"inlines/test_app/markdowntemplateinline__variant.md",
		"inlines/echo_template__variant.md",
		"inlines/markdowntemplateinline__variant.md",
	}, mdTemplates...)
	mediaVariantTemplates := append([]string{
		"inlines/media/test_app/echo_template__variant.md",
		"inlines/media/test_app/markdowntemplateinline__variant.md",
		"inlines/media/echo_template__variant.md",
		"inlines/media/markdowntemplateinline__variant.md",
		"inlines/media/test_app/echo_template.md",
		"inlines/media/echo_template.md",
		"inlines/media/test_app/markdowntemplateinline.md",
		"inlines/media/markdowntemplateinline.md",
	}, variantTemplates...)

	assert.Equal(t, variantTemplates, markdown.TemplateCandidates("variant", ""))
	assert.Equal(t, mediaVariantTemplates, markdown.TemplateCandidates("variant", "media"))
}

func TestTemplateExtensionFunc(t *testing.T) {
	def := MustDefinition("Ext",
		Arg("a", NewArgument()),
		TemplateBacked(TemplateExtensionFunc(func(variant, media string) string {
			if media == "email" {
				return "txt"
			}
			return "html"
		})),
	)
	inst, err := def.NewInstance("ext", []string{"x"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "inlines/email/ext.txt", inst.TemplateCandidates("", "email")[1])
	assert.Equal(t, "inlines/ext.html", inst.TemplateCandidates("", "")[1])
}

func newTemplateRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	registry := NewRegistry(nil)
	basic := newBasicTemplate(t)
	require.NoError(t, registry.RegisterOne("echo_template", basic))
	require.NoError(t, registry.RegisterOne("echo_markdown", newMarkdownTemplate(t, basic)))

	simple := func(name string) *Definition {
		return MustDefinition(name, Arg("arg1", NewArgument()), TemplateBacked())
	}
	require.NoError(t, registry.RegisterOne("titled", simple("Titled")))
	require.NoError(t, registry.RegisterOne("broken", simple("Broken")))
	require.NoError(t, registry.RegisterOne("failing", simple("Failing")))

	templates := NewFSTemplateRenderer(testTemplates, WithTemplateLogger(zap.NewNop()))
	r, err := New(append([]Option{WithRegistry(registry), WithTemplateRenderer(templates)}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestRenderer_Templates(t *testing.T) {
	r := newTemplateRenderer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		media  string
		want   string
	}{
		{name: "markdown", source: "{{ echo_markdown Hello }}", want: "**Hello**"},
		{name: "markdown variant", source: "{{ echo_markdown:upper Hello }}", want: "**HELLO**"},
		{name: "media template", source: "{{ echo_markdown Hello }}", media: "print", want: "[Hello]"},
		{name: "media falls back", source: "{{ echo_markdown Hello }}", media: "mobile", want: "**Hello**"},
		{name: "variant renderer wins", source: "{{ echo_template:downer ARG1 }}", want: "arg1"},
		{name: "title func", source: "{{ titled 'hello world' }}", want: "Hello World"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(ctx, tt.source, WithMedia(tt.media), WithRaiseErrors(true))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_MissingTemplate(t *testing.T) {
	ctx := context.Background()

	debug := newTemplateRenderer(t, WithDebug(true))
	_, err := debug.Render(ctx, "{{ echo_template arg1 }}", WithRaiseErrors(true))
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	quiet := newTemplateRenderer(t, WithDebug(false))
	got, err := quiet.Render(ctx, "{{ echo_template arg1 }}", WithRaiseErrors(true), WithLogErrors(false))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenderer_TemplateFailures(t *testing.T) {
	r := newTemplateRenderer(t, WithDebug(true))
	ctx := context.Background()

	for _, source := range []string{"{{ broken x }}", "{{ failing x }}"} {
		_, err := r.Render(ctx, source)
		require.Error(t, err, source)
		assert.Contains(t, err.Error(), ErrMsgTemplateFailed, source)
	}
}

func TestInstance_NoTemplateRenderer(t *testing.T) {
	inst, err := newBasicTemplate(t).NewInstance("echo_template", []string{"x"}, nil)
	require.NoError(t, err)

	_, err = inst.Render(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// A default renderer catches missing templates.
	withDefault := MustDefinition("WithDefault",
		Arg("a", NewArgument()),
		TemplateBacked(),
		RenderWith(func(inst *Instance) (string, error) { return "default", nil }),
	)
	inst, err = withDefault.NewInstance("with_default", []string{"x"}, nil)
	require.NoError(t, err)
	got, err := inst.Render(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "default", got)
}

func TestRenderer_ObjectTemplate(t *testing.T) {
	store := NewMemoryObjectStore()
	store.Add("tests", Record{"id": 7, "text": "Test"})

	def := MustDefinition("BasicModelTemplateInline",
		Arg("pk", NewIntegerArgument(Query("id"))),
		Variants("upper"),
		ObjectBacked("tests", nil),
		TemplateBacked(),
	)
	registry := NewRegistry(nil)
	require.NoError(t, registry.RegisterOne("model_template_inline", def))

	templates := NewFSTemplateRenderer(fstest.MapFS{
		"inlines/model_template_inline.html":        {Data: []byte("**{{ .object.text }}**")},
		"inlines/model_template_inline__upper.html": {Data: []byte("**{{ upper .object.text }}**")},
	})
	r, err := New(WithRegistry(registry), WithTemplateRenderer(templates), WithObjectStore(store))
	require.NoError(t, err)

	ctx := context.Background()
	got, err := r.Render(ctx, "{{ model_template_inline 7 }}", WithRaiseErrors(true))
	require.NoError(t, err)
	assert.Equal(t, "**Test**", got)

	got, err = r.Render(ctx, "{{ model_template_inline:upper 7 }}", WithRaiseErrors(true))
	require.NoError(t, err)
	assert.Equal(t, "**TEST**", got)

	_, err = r.Render(ctx, "{{ model_template_inline 8 }}", WithRaiseErrors(true), WithVerboseErrors(false))
	assert.Equal(t, []string{"Inline `model_template_inline 8`:  Object does not exist"}, renderErrorMessages(t, err))
}

func TestFSTemplateRenderer_Cache(t *testing.T) {
	fsys := fstest.MapFS{"inlines/a.html": {Data: []byte("{{ .v }}")}}
	r := NewFSTemplateRenderer(fsys, WithTemplateFuncs(map[string]any{"twice": func(s string) string { return s + s }}))
	ctx := context.Background()

	got, err := r.RenderTemplate(ctx, []string{"inlines/missing.html", "inlines/a.html"}, map[string]any{"v": "1"})
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	// Cached templates survive the file going away.
	delete(fsys, "inlines/a.html")
	got, err = r.RenderTemplate(ctx, []string{"inlines/a.html"}, map[string]any{"v": "2"})
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	_, err = r.RenderTemplate(ctx, []string{"inlines/none.html"}, nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.RenderTemplate(cancelled, []string{"inlines/a.html"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
