package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLexer_Tokenize_PlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:  "simple text",
			input: "No inlines",
			expected: []Token{
				{Kind: TokenKindText, Contents: "No inlines", Raw: "No inlines", Line: 1},
			},
		},
		{
			name:  "multiline text",
			input: "Line 1\nLine 2\nLine 3",
			expected: []Token{
				{Kind: TokenKindText, Contents: "Line 1\nLine 2\nLine 3", Raw: "Line 1\nLine 2\nLine 3", Line: 1},
			},
		},
		{
			name:  "unterminated open delimiter",
			input: "Hello {{ world",
			expected: []Token{
				{Kind: TokenKindText, Contents: "Hello {{ world", Raw: "Hello {{ world", Line: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := NewLexer(tt.input, zap.NewNop()).Tokenize()
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestLexer_Tokenize_Inlines(t *testing.T) {
	t.Run("inline contents are trimmed", func(t *testing.T) {
		tokens := NewLexer("{{ test }} {{ test arg kwarg=1 }}", nil).Tokenize()
		require.Len(t, tokens, 3)

		assert.True(t, tokens[0].IsInline())
		assert.Equal(t, "test", tokens[0].Contents)
		assert.Equal(t, "{{ test }}", tokens[0].Raw)

		assert.True(t, tokens[1].IsText())
		assert.Equal(t, " ", tokens[1].Contents)

		assert.True(t, tokens[2].IsInline())
		assert.Equal(t, "test arg kwarg=1", tokens[2].Contents)
	})

	t.Run("empty inline still produces a token", func(t *testing.T) {
		tokens := NewLexer("{{ }}{{ echo }}", nil).Tokenize()
		require.Len(t, tokens, 2)
		assert.Equal(t, "", tokens[0].Contents)
		assert.True(t, tokens[0].IsInline())
		assert.Equal(t, "echo", tokens[1].Contents)
	})

	t.Run("inline cannot span lines", func(t *testing.T) {
		tokens := NewLexer("{{ a\n}} {{ b }}", nil).Tokenize()
		require.Len(t, tokens, 2)
		assert.True(t, tokens[0].IsText())
		assert.Equal(t, "{{ a\n}} ", tokens[0].Contents)
		assert.True(t, tokens[1].IsInline())
		assert.Equal(t, "b", tokens[1].Contents)
		assert.Equal(t, 2, tokens[1].Line)
	})

	t.Run("first close delimiter wins", func(t *testing.T) {
		tokens := NewLexer("{{ a }}}", nil).Tokenize()
		require.Len(t, tokens, 2)
		assert.Equal(t, "a", tokens[0].Contents)
		assert.Equal(t, "}", tokens[1].Contents)
	})
}

func TestLexer_Tokenize_LineNumbers(t *testing.T) {
	tokens := NewLexer("{{ test }} space\n{{ test arg1 }}", nil).Tokenize()
	require.Len(t, tokens, 3)

	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[1].Line)
	assert.Equal(t, 2, tokens[2].Line)

	tokens = NewLexer("\n    {{ }}\n\n    Text\n\n    {{ echo2 }}\n", nil).Tokenize()
	require.Len(t, tokens, 5)
	assert.Equal(t, 2, tokens[1].Line)
	assert.Equal(t, 6, tokens[3].Line)
	assert.Equal(t, 6, tokens[4].Line)
}

func TestLexer_CustomDelimiters(t *testing.T) {
	config := LexerConfig{OpenDelim: "[[", CloseDelim: "]]"}
	require.NoError(t, config.Validate())

	tokens := NewLexerWithConfig("a [[ echo x ]] {{ b }}", config, nil).Tokenize()
	require.Len(t, tokens, 3)
	assert.Equal(t, "a ", tokens[0].Contents)
	assert.Equal(t, "echo x", tokens[1].Contents)
	assert.Equal(t, " {{ b }}", tokens[2].Contents)
}

func TestLexerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultLexerConfig().Validate())
	assert.EqualError(t, LexerConfig{OpenDelim: "", CloseDelim: "}}"}.Validate(), ErrMsgEmptyDelimiter)
	assert.EqualError(t, LexerConfig{OpenDelim: "%%", CloseDelim: "%%"}.Validate(), ErrMsgSameDelimiters)
}

func TestToken_String(t *testing.T) {
	token := NewInlineToken("{{ a\tb }}", " a\tb ", 3)
	assert.Equal(t, "a\tb", token.Contents)
	assert.Contains(t, token.String(), TokenKindNameInline)
	assert.Equal(t, TokenKindNameText, TokenKindText.String())
}
