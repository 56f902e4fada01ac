package inlines

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateRenderer renders the first existing template of an ordered
// candidate list. It returns an error wrapping ErrTemplateNotFound when
// no candidate exists.
type TemplateRenderer interface {
	RenderTemplate(ctx context.Context, candidates []string, data map[string]any) (string, error)
}

// TemplateOption configures the template capability of a definition.
type TemplateOption func(*templateCapability)

type templateCapability struct {
	extension func(variant, media string) string
	context   ContextFunc
}

// TemplateBacked lets the definition render through templates resolved
// from its name, class name, variant and media.
func TemplateBacked(opts ...TemplateOption) DefinitionOption {
	return func(b *definitionBuilder) {
		tc := &templateCapability{}
		for _, opt := range opts {
			opt(tc)
		}
		b.template = tc
	}
}

// TemplateExtension sets a fixed template file extension.
func TemplateExtension(ext string) TemplateOption {
	return func(tc *templateCapability) {
		tc.extension = func(string, string) string { return ext }
	}
}

// TemplateExtensionFunc picks the extension per variant and media.
func TemplateExtensionFunc(fn func(variant, media string) string) TemplateOption {
	return func(tc *templateCapability) {
		tc.extension = fn
	}
}

// TemplateContext contributes extra template context.
func TemplateContext(fn ContextFunc) TemplateOption {
	return func(tc *templateCapability) {
		tc.context = fn
	}
}

func (tc *templateCapability) ext(variant, media string) string {
	if tc == nil || tc.extension == nil {
		return DefaultTemplateExtension
	}
	return tc.extension(variant, media)
}

// TemplateCandidates returns the template names to try, most specific
// first. Media candidates precede the generic ones.
func (i *Instance) TemplateCandidates(variant, media string) []string {
	def := i.def
	ext := StrExtSep + def.template.ext(variant, media)
	label, cls := def.appLabel, def.ClassName()

	var base []string
	if variant != StringEmpty {
		suffix := TemplateVariantSep + variant + ext
		base = append(base,
			path.Join(label, i.name+suffix),
			path.Join(label, cls+suffix),
			i.name+suffix,
			cls+suffix,
		)
	}
	base = append(base,
		path.Join(label, i.name+ext),
		i.name+ext,
		path.Join(label, cls+ext),
		cls+ext,
	)

	candidates := make([]string, 0, 2*len(base))
	if media != StringEmpty {
		for _, b := range base {
			candidates = append(candidates, path.Join(DefaultTemplateDir, media, b))
		}
	}
	for _, b := range base {
		candidates = append(candidates, path.Join(DefaultTemplateDir, b))
	}
	return candidates
}

// TemplateData returns the full template context: the typed data under
// "inline", the object under "object" when object-backed, then any
// contributed context.
func (i *Instance) TemplateData() map[string]any {
	data := map[string]any{TemplateContextInline: i.data}
	if i.def.object != nil {
		data[TemplateContextObject] = i.object
	}
	if tc := i.def.template; tc != nil && tc.context != nil {
		for k, v := range tc.context(i) {
			data[k] = v
		}
	}
	return data
}

func (i *Instance) renderTemplate(ctx context.Context, variant, media string) (string, error) {
	candidates := i.TemplateCandidates(variant, media)
	if i.templates == nil {
		return StringEmpty, NewTemplateNotFoundError(candidates)
	}
	return i.templates.RenderTemplate(ctx, candidates, i.TemplateData())
}

// FSTemplateRenderer renders text/template files from a file system.
// Parsed templates are cached by name.
type FSTemplateRenderer struct {
	fsys   fs.FS
	funcs  template.FuncMap
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// FSTemplateOption configures an FSTemplateRenderer.
type FSTemplateOption func(*FSTemplateRenderer)

// WithTemplateFuncs adds template functions.
func WithTemplateFuncs(funcs template.FuncMap) FSTemplateOption {
	return func(r *FSTemplateRenderer) {
		for k, v := range funcs {
			r.funcs[k] = v
		}
	}
}

// WithTemplateLogger sets the renderer logger.
func WithTemplateLogger(logger *zap.Logger) FSTemplateOption {
	return func(r *FSTemplateRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewFSTemplateRenderer creates a renderer over fsys with the upper,
// lower and title functions available.
func NewFSTemplateRenderer(fsys fs.FS, opts ...FSTemplateOption) *FSTemplateRenderer {
	r := &FSTemplateRenderer{
		fsys:   fsys,
		funcs:  defaultTemplateFuncs(),
		logger: zap.NewNop(),
		cache:  make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// defaultTemplateFuncs returns the functions every inline template can use.
func defaultTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		TemplateFuncUpper: strings.ToUpper,
		TemplateFuncLower: strings.ToLower,
		TemplateFuncTitle: titleCase,
	}
}

// titleCase builds a caser per call; casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// RenderTemplate executes the first candidate that exists.
func (r *FSTemplateRenderer) RenderTemplate(ctx context.Context, candidates []string, data map[string]any) (string, error) {
	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return StringEmpty, err
		}

		tmpl, err := r.load(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return StringEmpty, NewTemplateError(name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return StringEmpty, NewTemplateError(name, err)
		}
		r.logger.Debug(LogMsgTemplateRendered, zap.String(LogFieldTemplate, name))
		return buf.String(), nil
	}
	return StringEmpty, NewTemplateNotFoundError(candidates)
}

func (r *FSTemplateRenderer) load(name string) (*template.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Funcs(r.funcs).Parse(string(src))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}
