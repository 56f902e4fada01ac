package inlines

import (
	"context"
	"strings"
)

// TextField validates form input containing inlines. Cleaning renders the
// value with errors raised and verbose, so every problem is reported with
// its line.
type TextField struct {
	Renderer *Renderer
	Required bool
	Media    string
}

// NewTextField creates a required field over r.
func NewTextField(r *Renderer) *TextField {
	return &TextField{Renderer: r, Required: true}
}

// Clean returns value unchanged when it renders without errors. The
// render error is returned unmodified.
func (f *TextField) Clean(ctx context.Context, value string) (string, error) {
	if strings.TrimSpace(value) == StringEmpty {
		if f.Required {
			return StringEmpty, NewValidationError(MsgFieldRequired).WithCode(CodeRequired)
		}
		return value, nil
	}

	_, err := f.Renderer.Render(ctx, value,
		WithMedia(f.Media),
		WithRaiseErrors(true),
		WithVerboseErrors(true),
	)
	if err != nil {
		return StringEmpty, err
	}
	return value, nil
}
