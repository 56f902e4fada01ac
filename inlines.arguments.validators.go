package inlines

import (
	"math"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validator checks a coerced argument value. A nil return means valid.
type Validator interface {
	Validate(value any) *ValidationError
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(value any) *ValidationError

// Validate calls f(value).
func (f ValidatorFunc) Validate(value any) *ValidationError {
	return f(value)
}

var (
	slugPattern        = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	emailUserPattern   = regexp.MustCompile("(?i)^[-!#$%&'*+/=?^_`{}|~0-9a-z]+(\\.[-!#$%&'*+/=?^_`{}|~0-9a-z]+)*$")
	emailQuotedPattern = regexp.MustCompile(`(?i)^"([\001-\010\013\014\016-\037!#-\[\]-\177]|\\[\001-\011\013\014\016-\177])*"$`)
	domainPattern      = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]\.?$`)
)

var urlSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ftps":  true,
}

// SlugValidator accepts letters, numbers, underscores and hyphens.
func SlugValidator() Validator {
	return RegexValidator(slugPattern, MsgInvalidSlug)
}

// RegexValidator accepts string values matching pattern. An empty
// message uses the generic invalid value message.
func RegexValidator(pattern *regexp.Regexp, message string) Validator {
	if message == StringEmpty {
		message = MsgInvalidValue
	}
	return ValidatorFunc(func(value any) *ValidationError {
		if !pattern.MatchString(textOf(value)) {
			return NewValidationError(message).WithCode(CodeInvalid)
		}
		return nil
	})
}

// EmailValidator accepts a local part and a domain separated by '@'.
func EmailValidator() Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		if !isEmail(textOf(value)) {
			return NewValidationError(MsgInvalidEmail).WithCode(CodeInvalid)
		}
		return nil
	})
}

// URLValidator accepts absolute http, https, ftp and ftps URLs.
func URLValidator() Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		if !isURL(textOf(value)) {
			return NewValidationError(MsgInvalidURL).WithCode(CodeInvalid)
		}
		return nil
	})
}

// MinLengthValidator requires at least limit characters.
func MinLengthValidator(limit int) Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		n := utf8.RuneCountInString(textOf(value))
		if n < limit {
			return NewValidationErrorFromTemplate(PluralMessage(MsgMinLengthOne, MsgMinLengthOther, ParamLimitValue)).
				WithCode(CodeMinLength).
				WithParams(map[string]any{ParamLimitValue: limit, ParamShowValue: n})
		}
		return nil
	})
}

// MaxLengthValidator allows at most limit characters.
func MaxLengthValidator(limit int) Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		n := utf8.RuneCountInString(textOf(value))
		if n > limit {
			return NewValidationErrorFromTemplate(PluralMessage(MsgMaxLengthOne, MsgMaxLengthOther, ParamLimitValue)).
				WithCode(CodeMaxLength).
				WithParams(map[string]any{ParamLimitValue: limit, ParamShowValue: n})
		}
		return nil
	})
}

// MinValueValidator requires a numeric value >= limit.
func MinValueValidator(limit decimal.Decimal) Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		d, ok := toDecimal(value)
		if ok && d.LessThan(limit) {
			return NewValidationError(MsgMinValue).
				WithCode(CodeMinValue).
				WithParam(ParamLimitValue, limit.String())
		}
		return nil
	})
}

// MaxValueValidator requires a numeric value <= limit.
func MaxValueValidator(limit decimal.Decimal) Validator {
	return ValidatorFunc(func(value any) *ValidationError {
		d, ok := toDecimal(value)
		if ok && d.GreaterThan(limit) {
			return NewValidationError(MsgMaxValue).
				WithCode(CodeMaxValue).
				WithParam(ParamLimitValue, limit.String())
		}
		return nil
	})
}

func isEmail(value string) bool {
	at := strings.LastIndexByte(value, '@')
	if at <= 0 || at == len(value)-1 {
		return false
	}
	user, domain := value[:at], value[at+1:]

	if !emailUserPattern.MatchString(user) && !emailQuotedPattern.MatchString(user) {
		return false
	}
	return isHostname(domain)
}

func isURL(value string) bool {
	if value == StringEmpty || strings.ContainsAny(value, " \t\r\n") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil || !urlSchemes[strings.ToLower(u.Scheme)] || u.Host == StringEmpty {
		return false
	}
	return isHostname(u.Hostname())
}

func isHostname(host string) bool {
	if strings.EqualFold(host, HostLocalhost) {
		return true
	}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return true
	}
	return domainPattern.MatchString(host)
}

// toDecimal converts numeric values for range comparison. Non-finite
// floats are not comparable.
func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case float32:
		return toDecimal(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Decimal{}, false
	}
}
