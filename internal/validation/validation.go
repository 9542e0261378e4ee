// Package validation configures the shared request validator and turns its
// errors into the user-facing messages shown by the portal forms.
package validation

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	mobilePattern  = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
)

// New returns a validator with the portal's custom tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return v
}

// Register installs the json tag name resolver and the custom tags on v:
// looseemail, mobile, pincode, isodate, year4 and jsnumber.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})

	patterns := map[string]*regexp.Regexp{
		"looseemail": emailPattern,
		"mobile":     mobilePattern,
		"pincode":    pincodePattern,
		"isodate":    datePattern,
		"year4":      yearPattern,
	}
	for tag, pattern := range patterns {
		pattern := pattern
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		})
	}

	_ = v.RegisterValidation("jsnumber", func(fl validator.FieldLevel) bool {
		return IsNumber(fl.Field().String())
	})
}

// IsLooseEmail reports whether value has the user@host.tld shape accepted by the portal forms.
func IsLooseEmail(value string) bool {
	return emailPattern.MatchString(value)
}

var (
	decimalNumberPattern = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`)
	radixNumberPatterns  = map[byte]*regexp.Regexp{
		'x': regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`),
		'o': regexp.MustCompile(`^0[oO][0-7]+$`),
		'b': regexp.MustCompile(`^0[bB][01]+$`),
	}
	radixBases = map[byte]int{'x': 16, 'o': 8, 'b': 2}
)

// ParseNumber reads value with the grammar of a browser Number() conversion:
// decimals with an optional exponent, unsigned 0x/0o/0b integers and a
// case-sensitive Infinity. Blank input is rejected. Overflow yields ±Inf.
func ParseNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if len(value) > 2 && value[0] == '0' {
		prefix := value[1] | 0x20
		if pattern, ok := radixNumberPatterns[prefix]; ok {
			if !pattern.MatchString(value) {
				return 0, false
			}
			n, ok := new(big.Int).SetString(value[2:], radixBases[prefix])
			if !ok {
				return 0, false
			}
			parsed, _ := new(big.Float).SetInt(n).Float64()
			return parsed, true
		}
	}

	if !decimalNumberPattern.MatchString(value) {
		return 0, false
	}
	switch strings.TrimLeft(value, "+-") {
	case "Infinity":
		if value[0] == '-' {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return parsed, true
}

// IsNumber reports whether value is a Number()-style literal with a finite value.
func IsNumber(value string) bool {
	parsed, ok := ParseNumber(value)
	return ok && !math.IsInf(parsed, 0) && !math.IsNaN(parsed)
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// Messages maps each failing field to a message. Lookups try "field.tag" first
// and then "field"; unknown fields fall back to a generic message.
func Messages(err error, table map[string]string) map[string]string {
	ordered := collect(err, table)
	if len(ordered) == 0 {
		return nil
	}
	result := make(map[string]string, len(ordered))
	for _, item := range ordered {
		result[item.field] = item.message
	}
	return result
}

// OrderedMessages returns one message per failing field in struct order.
func OrderedMessages(err error, table map[string]string) []string {
	ordered := collect(err, table)
	messages := make([]string, 0, len(ordered))
	for _, item := range ordered {
		messages = append(messages, item.message)
	}
	return messages
}

type fieldMessage struct {
	field   string
	message string
}

func collect(err error, table map[string]string) []fieldMessage {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	seen := make(map[string]struct{}, len(validationErrors))
	result := make([]fieldMessage, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		if idx := strings.Index(field, "["); idx > 0 {
			field = field[:idx]
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}

		message, ok := table[field+"."+fe.Tag()]
		if !ok {
			message, ok = table[field]
		}
		if !ok {
			message = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
		}
		result = append(result, fieldMessage{field: field, message: message})
	}
	return result
}
