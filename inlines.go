// Package inlines renders text containing embedded calls to registered
// components, in the style of django-inlines.
//
// An inline is written between {{ and }} delimiters:
//
//	See {{ youtube:small dQw4w9WgXcQ autoplay=1 }} for details.
//
// The first word names a registered inline, optionally followed by a
// variant after a colon. Positional arguments come next, then keyword
// arguments. Everything outside the delimiters is copied through.
//
// # Basic Usage
//
// Define an inline, register it, and render:
//
//	video := inlines.MustDefinition("Video",
//	    inlines.Arg("id", inlines.NewSlugArgument()),
//	    inlines.Arg("autoplay", inlines.NewBooleanArgument(inlines.Keyword())),
//	    inlines.Variants("small"),
//	    inlines.RenderWith(func(inst *inlines.Instance) (string, error) {
//	        return "<video src=\"" + inst.Get("id").(string) + "\"></video>", nil
//	    }),
//	)
//
//	registry := inlines.NewRegistry(logger)
//	registry.MustRegister([]string{"youtube"}, video, nil)
//
//	r := inlines.MustNew(inlines.WithRegistry(registry))
//	out, err := r.Render(ctx, text, inlines.WithRaiseErrors(true))
//
// # Errors
//
// Rendering never stops at the first problem. Syntax errors (malformed
// inlines, unknown names or variants) and validation errors (bad argument
// values, failed whole-inline checks) are collected for the entire text
// and returned as one *RenderError sorted by line, when raising is
// enabled. Otherwise invalid inlines render as empty text.
//
// Non-validation failures such as a missing template or an object store
// outage abort the render. They are returned when debug is on, or when
// debug is unset and raising is enabled. INLINES_DEBUG sets debug from
// the environment.
//
// # Capabilities
//
// Definitions may be template-backed (TemplateBacked), resolving output
// through an ordered list of template candidates, or object-backed
// (ObjectBacked), looking up a record through an ObjectStore before
// rendering. Media overrides swap in an alternate definition per output
// channel.
//
// # Declarative Definitions
//
// LoadDefinitions builds definitions from YAML or TOML, with expr-lang
// rules for whole-inline checks and text/template output:
//
//	inlines:
//	  - definition: Card
//	    names: [card]
//	    arguments:
//	      - name: size
//	        kind: integer
//	        keyword: true
//	        default: 1
//	    rules:
//	      - expr: size < 4
//	        message: "Size {size} is too large"
//	    output: "<div class=\"card-{{ .inline.size }}\"></div>"
package inlines
