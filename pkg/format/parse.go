package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a European-formatted amount ("1.234,56 €"). Every character
// other than digits, "." and "," is discarded first, so signs and symbols are
// ignored. Unparsable input returns 0.
func ParseAmount(raw string) float64 {
	clean := keepNumeric(raw)
	if clean == "" {
		return 0
	}
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	return toFloat(clean)
}

// ParseLooseNumber reads a number token whose separator convention is unknown,
// as found in free-text suggestions: "50,000", "50.000", "1.234,56", "7,5",
// "150k" and "2 mln" are all understood. The second return is false when no
// number could be read.
func ParseLooseNumber(token string) (float64, bool) {
	s := strings.ToLower(strings.TrimSpace(token))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "mln"), strings.HasSuffix(s, "mio"):
		s, multiplier = s[:len(s)-3], 1e6
	case strings.HasSuffix(s, "k"):
		s, multiplier = s[:len(s)-1], 1e3
	case strings.HasSuffix(s, "m"):
		s, multiplier = s[:len(s)-1], 1e6
	}

	s = strings.Trim(keepNumeric(s), ".,")
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Mul(decimal.NewFromFloat(multiplier)).Float64()
	return f, true
}

// normalizeSingleSeparator decides whether a lone separator kind groups
// thousands or marks decimals: repeated, or followed by exactly three digits,
// means grouping.
func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

func keepNumeric(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toFloat(clean string) float64 {
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
