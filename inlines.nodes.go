package inlines

import (
	"context"
)

// Node is one renderable piece of parsed source.
type Node interface {
	// Line returns the 1-indexed source line the node starts on.
	Line() int
	// Render produces the node output. A *ValidationError carries the
	// user-facing messages of an invalid inline; any other error is
	// unexpected.
	Render(ctx context.Context, media string) (string, error)
}

// TextNode renders literal text unchanged.
type TextNode struct {
	text string
	line int
}

// Line returns the node's start line.
func (n *TextNode) Line() int { return n.line }

// Text returns the literal text.
func (n *TextNode) Text() string { return n.text }

// Render returns the literal text.
func (n *TextNode) Render(context.Context, string) (string, error) {
	return n.text, nil
}

// instanceFactory builds a fresh, unprocessed instance.
type instanceFactory func() (*Instance, error)

// InlineNode renders one resolved inline. Every render builds a new
// instance, so no state is shared between renders.
type InlineNode struct {
	name     string
	variant  string
	contents string
	line     int
	def      *Definition
	factory  instanceFactory
}

// Line returns the node's start line.
func (n *InlineNode) Line() int { return n.line }

// Name returns the name the inline was invoked as.
func (n *InlineNode) Name() string { return n.name }

// Variant returns the requested variant, empty for none.
func (n *InlineNode) Variant() string { return n.variant }

// Contents returns the trimmed source between the delimiters.
func (n *InlineNode) Contents() string { return n.contents }

// Definition returns the resolved definition.
func (n *InlineNode) Definition() *Definition { return n.def }

// Render processes a fresh instance and renders it when valid.
func (n *InlineNode) Render(ctx context.Context, media string) (string, error) {
	inst, err := n.factory()
	if err != nil {
		return StringEmpty, err
	}
	if err := inst.Process(ctx); err != nil {
		return StringEmpty, err
	}
	if inst.IsValid() {
		return inst.Render(ctx, n.variant, media)
	}
	return StringEmpty, n.describe(inst)
}

// describe turns the instance errors into messages naming the inline
// source and, for argument errors, the argument and its position.
func (n *InlineNode) describe(inst *Instance) *ValidationError {
	errs := inst.Errors()

	var out []*ValidationError
	for _, key := range errs.Keys() {
		for _, msg := range errs.Messages(key) {
			if key == NonFieldErrors {
				out = append(out, NewValidationError(MsgInlineError).WithParams(map[string]any{
					ParamContents: n.contents,
					ParamMessage:  msg,
				}))
				continue
			}

			position := StringEmpty
			if idx := n.def.ArgumentIndex(key); idx != -1 {
				position = FormatMessage(MsgArgumentPosition, map[string]any{ParamArgumentPos: idx})
			}
			out = append(out, NewValidationError(MsgArgumentError).WithParams(map[string]any{
				ParamContents:     n.contents,
				ParamArgumentName: key,
				ParamArgumentPos:  position,
				ParamMessage:      msg,
			}))
		}
	}
	return JoinValidationErrors(out...)
}
