package inlines

import (
	"context"
	"html/template"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-inlines/internal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Renderer expands the inlines of a text. It is safe for concurrent use;
// each Render call owns its nodes and instances.
type Renderer struct {
	config   *rendererConfig
	registry *Registry
	parser   *parser
	tracer   trace.Tracer
	logger   *zap.Logger
}

// New creates a Renderer with the given options.
func New(opts ...Option) (*Renderer, error) {
	config := defaultRendererConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lexerConfig := internal.LexerConfig{
		OpenDelim:  config.openDelim,
		CloseDelim: config.closeDelim,
	}
	if err := lexerConfig.Validate(); err != nil {
		return nil, cuserr.NewValidationError(ErrCodeConfig, err.Error())
	}

	if config.debug == nil {
		if debug, ok := debugFromEnv(); ok {
			config.debug = &debug
		}
	}

	registry := config.registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	tp := config.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	var instanceOpts []InstanceOption
	if config.store != nil {
		instanceOpts = append(instanceOpts, WithInstanceObjectStore(config.store))
	}
	if config.templates != nil {
		instanceOpts = append(instanceOpts, WithInstanceTemplates(config.templates))
	}

	logger.Debug(LogMsgRendererCreated,
		zap.String(LogFieldDelimiters, config.openDelim+config.closeDelim),
	)

	return &Renderer{
		config:   config,
		registry: registry,
		parser:   newParser(registry, lexerConfig, instanceOpts, logger),
		tracer:   tp.Tracer(TracerName),
		logger:   logger,
	}, nil
}

// MustNew creates a Renderer and panics if there's an error.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Registry returns the registry the renderer resolves names against.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// Parse splits text into nodes and returns the syntax errors found.
func (r *Renderer) Parse(text, media string) ([]Node, []*LineError) {
	return r.parser.parse(text, media)
}

// Render expands every inline in text.
//
// Syntax and validation errors are collected across the whole text and
// ordered by line. When any exist the output is empty and, with
// WithRaiseErrors, a *RenderError is returned. Any other failure, such as
// a missing template or an object store outage, aborts the render; it is
// returned when debug is on, or when debug is unset and WithRaiseErrors
// is given.
func (r *Renderer) Render(ctx context.Context, text string, opts ...RenderOption) (string, error) {
	ro := defaultRenderOptions()
	for _, opt := range opts {
		opt(ro)
	}

	renderID := uuid.NewString()
	logger := r.logger.With(zap.String(LogFieldRenderID, renderID))

	ctx, span := r.tracer.Start(ctx, SpanNameRender,
		trace.WithAttributes(
			attribute.String(SpanAttrRenderID, renderID),
			attribute.String(SpanAttrMedia, ro.media),
			attribute.Int(SpanAttrLength, len(text)),
		),
	)
	defer span.End()

	start := time.Now()
	logger.Debug(LogMsgRenderStart,
		zap.Int(LogFieldSource, len(text)),
		zap.String(LogFieldMedia, ro.media),
	)

	nodes, syntaxErrs := r.parser.parse(text, ro.media)
	span.SetAttributes(attribute.Int(SpanAttrNodes, len(nodes)))
	logger.Debug(LogMsgParseEnd,
		zap.Int(LogFieldNodes, len(nodes)),
		zap.Int(LogFieldErrors, len(syntaxErrs)),
	)

	out, inlineErrs, err := r.renderNodes(ctx, nodes, ro.media)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ro.logErrors {
			logger.Error(LogMsgRenderFailed, zap.Error(err))
		}
		if r.raiseUnexpected(ro) {
			return StringEmpty, err
		}
		return StringEmpty, nil
	}

	errs := append(syntaxErrs, inlineErrs...)
	span.SetAttributes(attribute.Int(SpanAttrErrors, len(errs)))
	logger.Debug(LogMsgRenderEnd,
		zap.Int(LogFieldErrors, len(errs)),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)

	if len(errs) > 0 {
		renderErr := newRenderError(errs, ro.verboseErrors)
		span.SetStatus(codes.Error, SpanStatusInlineErrors)
		if ro.logErrors {
			for _, msg := range renderErr.Messages() {
				logger.Error(LogMsgInlineError, zap.String(LogFieldMessage, msg))
			}
		}
		if ro.raiseErrors {
			return StringEmpty, renderErr
		}
		return StringEmpty, nil
	}

	span.SetStatus(codes.Ok, StringEmpty)
	return out, nil
}

// RenderHTML is Render with the output marked as safe HTML.
func (r *Renderer) RenderHTML(ctx context.Context, text string, opts ...RenderOption) (template.HTML, error) {
	out, err := r.Render(ctx, text, opts...)
	return template.HTML(out), err
}

// renderNodes renders nodes in order. Invalid inlines contribute nothing
// to the output and one validation error per message.
func (r *Renderer) renderNodes(ctx context.Context, nodes []Node, media string) (string, []*LineError, error) {
	var b strings.Builder
	var errs []*LineError

	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return StringEmpty, nil, err
		}

		out, err := node.Render(ctx, media)
		if err == nil {
			b.WriteString(out)
			continue
		}

		ve, ok := AsValidationError(err)
		if !ok {
			return StringEmpty, nil, err
		}
		for _, msg := range ve.Messages() {
			errs = append(errs, &LineError{Line: node.Line(), Category: CategoryValidation, Message: msg})
		}
	}
	return b.String(), errs, nil
}

func (r *Renderer) raiseUnexpected(ro *renderOptions) bool {
	if r.config.debug != nil {
		return *r.config.debug
	}
	return ro.raiseErrors
}

func debugFromEnv() (bool, bool) {
	v, ok := os.LookupEnv(EnvDebug)
	if !ok {
		return false, false
	}
	debug, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return debug, true
}

var (
	defaultRenderer     *Renderer
	defaultRendererOnce sync.Once
)

// Render expands text with a renderer over DefaultRegistry.
func Render(ctx context.Context, text string, opts ...RenderOption) (string, error) {
	defaultRendererOnce.Do(func() {
		defaultRenderer = MustNew()
	})
	return defaultRenderer.Render(ctx, text, opts...)
}
