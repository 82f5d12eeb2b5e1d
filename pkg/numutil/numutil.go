// Package numutil turns counters scraped as free-form text into integers.
//
// Parsing happens in two steps so that a missing value can travel through
// arithmetic before being persisted: Sanitize yields a missing Count for text
// without a number, and Neutralize maps missing counts to 0.
package numutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9+\-]`)
var leadingInteger = regexp.MustCompile(`^[+\-]?[0-9]+`)

// Count is an exact integer counter that may be missing. A missing operand
// makes every value derived from it missing too.
type Count struct {
	n     int64
	valid bool
}

// Missing is the zero Count.
func Missing() Count {
	return Count{}
}

func Of(n int64) Count {
	return Count{n: n, valid: true}
}

func (c Count) Value() (int64, bool) {
	return c.n, c.valid
}

func (c Count) Valid() bool {
	return c.valid
}

// Sub returns c - o, missing when either side is missing or the result
// overflows int64.
func (c Count) Sub(o Count) Count {
	if !c.valid || !o.valid {
		return Missing()
	}
	result := c.n - o.n
	// overflow iff the operands have different signs and the result's sign
	// differs from c
	if (c.n >= 0) != (o.n >= 0) && (result >= 0) != (c.n >= 0) {
		return Missing()
	}
	return Of(result)
}

// Sanitize strips everything but digits and signs from text, then parses the
// leading integer, "Total: 1,234,567" -> 1234567. The count is missing when no
// integer is left or it does not fit in an int64.
func Sanitize(text string) Count {
	stripped := nonNumeric.ReplaceAllString(text, "")
	match := leadingInteger.FindString(stripped)
	if match == "" {
		return Missing()
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return Missing()
	}
	return Of(n)
}

// Neutralize maps a missing count to 0, anything else passes through
// unchanged. Negative values are kept.
func Neutralize(c Count) int64 {
	n, ok := c.Value()
	if !ok {
		return 0
	}
	return n
}

// FromFloat truncates f toward zero. NaN, infinities and values outside the
// int64 range are missing.
func FromFloat(f float64) Count {
	// -2^63 is exactly representable, 2^63 is the first value past MaxInt64
	if math.IsNaN(f) || math.IsInf(f, 0) || f < math.MinInt64 || f >= math.MaxInt64 {
		return Missing()
	}
	return Of(int64(f))
}

// FromAny normalizes a decoded json/json5 value. Integers pass through,
// floats go through FromFloat and strings through Sanitize. Anything else is
// missing.
func FromAny(v any) Count {
	switch value := v.(type) {
	case int:
		return Of(int64(value))
	case int64:
		return Of(value)
	case float64:
		return FromFloat(value)
	case float32:
		return FromFloat(float64(value))
	case string:
		return Sanitize(strings.TrimSpace(value))
	case interface {
		Int64() (int64, error)
		Float64() (float64, error)
	}:
		n, err := value.Int64()
		if err == nil {
			return Of(n)
		}
		f, err := value.Float64()
		if err != nil {
			return Missing()
		}
		return FromFloat(f)
	default:
		return Missing()
	}
}
