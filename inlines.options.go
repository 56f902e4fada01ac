package inlines

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option is a functional option for configuring a Renderer.
type Option func(*rendererConfig)

// rendererConfig holds the internal configuration for a Renderer.
type rendererConfig struct {
	openDelim      string
	closeDelim     string
	logger         *zap.Logger
	registry       *Registry
	debug          *bool
	tracerProvider trace.TracerProvider
	templates      TemplateRenderer
	store          ObjectStore
}

// defaultRendererConfig returns the default renderer configuration.
func defaultRendererConfig() *rendererConfig {
	return &rendererConfig{
		openDelim:  DefaultOpenDelim,
		closeDelim: DefaultCloseDelim,
	}
}

// WithDelimiters sets custom inline delimiters.
// Default: "{{" and "}}"
func WithDelimiters(open, close string) Option {
	return func(c *rendererConfig) {
		if open != "" {
			c.openDelim = open
		}
		if close != "" {
			c.closeDelim = close
		}
	}
}

// WithLogger sets the logger for the renderer.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *rendererConfig) {
		c.logger = logger
	}
}

// WithRegistry sets the registry inline names are resolved against.
// Default: DefaultRegistry()
func WithRegistry(registry *Registry) Option {
	return func(c *rendererConfig) {
		c.registry = registry
	}
}

// WithDebug forces unexpected render failures to be returned (true) or
// swallowed (false) regardless of WithRaiseErrors.
// Default: the INLINES_DEBUG environment variable when set, otherwise unset
func WithDebug(debug bool) Option {
	return func(c *rendererConfig) {
		c.debug = &debug
	}
}

// WithTracerProvider sets the provider render spans are created from.
// Default: the global otel provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *rendererConfig) {
		c.tracerProvider = tp
	}
}

// WithTemplateRenderer sets the renderer for template-backed inlines.
func WithTemplateRenderer(templates TemplateRenderer) Option {
	return func(c *rendererConfig) {
		c.templates = templates
	}
}

// WithObjectStore sets the store for object-backed inlines whose
// definition has none.
func WithObjectStore(store ObjectStore) Option {
	return func(c *rendererConfig) {
		c.store = store
	}
}

// RenderOption configures one Render call.
type RenderOption func(*renderOptions)

type renderOptions struct {
	media         string
	raiseErrors   bool
	logErrors     bool
	verboseErrors bool
}

func defaultRenderOptions() *renderOptions {
	return &renderOptions{verboseErrors: true}
}

// WithMedia selects media-specific inline overrides and templates.
func WithMedia(media string) RenderOption {
	return func(o *renderOptions) {
		o.media = media
	}
}

// WithRaiseErrors returns the aggregate *RenderError instead of
// swallowing it.
// Default: false
func WithRaiseErrors(raise bool) RenderOption {
	return func(o *renderOptions) {
		o.raiseErrors = raise
	}
}

// WithLogErrors logs every error message at error level.
// Default: false
func WithLogErrors(log bool) RenderOption {
	return func(o *renderOptions) {
		o.logErrors = log
	}
}

// WithVerboseErrors prefixes messages with their line and category.
// Default: true
func WithVerboseErrors(verbose bool) RenderOption {
	return func(o *renderOptions) {
		o.verboseErrors = verbose
	}
}
