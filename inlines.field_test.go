package inlines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextField_Clean(t *testing.T) {
	r, _ := newFixtureRenderer(t)
	field := NewTextField(r)
	ctx := context.Background()

	t.Run("valid content", func(t *testing.T) {
		value := "{{ echo arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}"
		got, err := field.Clean(ctx, value)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("syntax errors", func(t *testing.T) {
		content := "\n" +
			"            {{ }}\n" +
			"\n" +
			"            Text Token\n" +
			"\n" +
			"            {{ echo2 }}\n" +
			"\n" +
			"            {{ echo arg1=arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2 }}\n" +
			"        "

		_, err := field.Clean(ctx, content)
		assert.Equal(t, []string{
			"Syntax error on line 2. Empty inline found.",
			"Syntax error on line 6. Inline `echo2` is not registered.",
			"Syntax error on line 8. Inline `echo arg1=arg1 arg2 kwarg1=kwarg1 kwarg2=kwarg2`, non-keyword argument found after keyword argument.",
		}, renderErrorMessages(t, err))
	})

	t.Run("inline errors", func(t *testing.T) {
		_, err := field.Clean(ctx, "{{ echo arg1 arg3 kwarg1=kwarg1 kwarg2=kwarg2 }}\n        ")
		assert.Equal(t, []string{
			"Inline error on line 1. Inline `echo arg1 arg3 kwarg1=kwarg1 kwarg2=kwarg2`, argument `arg2` (pos 2): `arg3` is not a valid choice.",
		}, renderErrorMessages(t, err))
	})

	t.Run("required", func(t *testing.T) {
		_, err := field.Clean(ctx, "  ")
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, MsgFieldRequired, ve.Message())
	})

	t.Run("optional blank", func(t *testing.T) {
		optional := &TextField{Renderer: r}
		got, err := optional.Clean(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
