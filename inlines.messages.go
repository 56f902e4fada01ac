package inlines

import (
	"fmt"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// messageLanguage drives plural form selection for default messages.
var messageLanguage = language.English

// MessageTemplate is a user-facing message with `{name}` placeholders.
// When CountParam is set, the param of that name selects One or Other.
type MessageTemplate struct {
	One        string
	Other      string
	CountParam string
}

// Message returns a template with a single form.
func Message(text string) MessageTemplate {
	return MessageTemplate{One: text, Other: text}
}

// PluralMessage returns a template whose form depends on the count param.
func PluralMessage(one, other, countParam string) MessageTemplate {
	return MessageTemplate{One: one, Other: other, CountParam: countParam}
}

// IsZero reports whether the template has no text.
func (m MessageTemplate) IsZero() bool {
	return m.One == StringEmpty && m.Other == StringEmpty
}

// Format selects the plural form and substitutes params.
func (m MessageTemplate) Format(params map[string]any) string {
	text := m.Other
	if m.CountParam != StringEmpty {
		if n, ok := toCount(params[m.CountParam]); ok && isPluralOne(n) {
			text = m.One
		}
	}
	return FormatMessage(text, params)
}

// FormatMessage replaces `{name}` placeholders with the matching param.
// Unknown placeholders are kept verbatim. Substituted values are not
// scanned again.
func FormatMessage(text string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(text, StrPlaceholderOpen) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for {
		open := strings.Index(text, StrPlaceholderOpen)
		if open < 0 {
			break
		}
		closing := strings.Index(text[open+1:], StrPlaceholderClose)
		if closing < 0 {
			break
		}
		closing += open + 1

		key := text[open+1 : closing]
		value, ok := params[key]
		if !ok {
			b.WriteString(text[:open+1])
			text = text[open+1:]
			continue
		}

		b.WriteString(text[:open])
		b.WriteString(formatParam(value))
		text = text[closing+1:]
	}

	b.WriteString(text)
	return b.String()
}

func formatParam(value any) string {
	switch v := value.(type) {
	case nil:
		return StrNone
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func isPluralOne(n int) bool {
	if n < 0 {
		n = -n
	}
	return plural.Cardinal.MatchPlural(messageLanguage, n, 0, 0, 0, 0) == plural.One
}

func toCount(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
