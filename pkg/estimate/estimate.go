// Package estimate recovers numeric figures from free-text suggestions such as
// "€50,000 - €150,000" or "crescita del 10-15% annuo". Extraction never fails;
// when nothing can be recovered the value is zero.
package estimate

import (
	"regexp"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/format"
)

// Method names the heuristic that produced an estimate.
type Method string

const (
	MethodRange     Method = "range"
	MethodCurrency  Method = "currency"
	MethodLargest   Method = "largest"
	MethodQualifier Method = "qualifier"
	MethodPercent   Method = "percent"
	MethodDirect    Method = "direct"
	MethodNone      Method = "none"
)

const (
	number   = `\d(?:[\d.,]*\d)?(?:\s?(?:mln|mio|k|m)\b)?`
	currency = `(?:€|\$|\beur(?:o|os)?\b|\busd\b)`
	rangeSep = `(?:-|–|—|\bto\b|\band\b|\ba\b|\be\b|\bfino a\b)`
	percent  = `\d+(?:[.,]\d+)?`
)

var (
	rangeRe = regexp.MustCompile(`(?i)(` + currency + `)?\s*(` + number + `)\s*(` + currency + `)?\s*` + rangeSep +
		`\s*(` + currency + `)?\s*(` + number + `)(?:\s*(` + currency + `))?`)
	currencyBeforeRe = regexp.MustCompile(`(?i)` + currency + `\s*(` + number + `)`)
	currencyAfterRe  = regexp.MustCompile(`(?i)(` + number + `)\s*` + currency)
	numberRe         = regexp.MustCompile(`(?i)` + number)
	qualifierRe      = regexp.MustCompile(`(?i)(?:\bunder|\bover|\bbelow|\babove|\bsotto|\boltre|\bmeno di|\bpiù di|\bpiu di|\bfino a|\balmeno)\s*(?:i\s|gli\s)?\s*` +
		currency + `?\s*(` + number + `)`)

	percentRangeRe = regexp.MustCompile(`(?i)(` + percent + `)\s*%?\s*(?:` + rangeSep + `|\bal\b)\s*(` + percent + `)\s*(?:%|per\s?cento|percent)`)
	percentRe      = regexp.MustCompile(`(?i)(` + percent + `)\s*(?:%|per\s?cento|percent)`)
	plainPercentRe = regexp.MustCompile(percent)
	yearRe         = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// Revenue extracts a revenue figure from a free-text description.
func Revenue(text string) float64 {
	v, _ := RevenueDetail(text)
	return v
}

// RevenueDetail extracts a revenue figure and reports which heuristic matched.
// Heuristics are tried in order: a numeric range (mean of the bounds), the
// largest currency-tagged amount, the largest bare number above 1000, a
// number after an "under"/"over" style qualifier, and finally a direct parse
// of the whole text. A range counts only when one of its bounds carries a
// currency tag or both bounds are above 1000 and are not years, so
// "5 e 10 clienti" or "nel 2025 e 2026" never stand in for the amount.
func RevenueDetail(text string) (float64, Method) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, MethodNone
	}

	for _, m := range rangeRe.FindAllStringSubmatch(text, -1) {
		if v, ok := revenueRange(m); ok {
			return v, MethodRange
		}
	}

	if v, ok := largest(text, currencyBeforeRe, currencyAfterRe); ok {
		return v, MethodCurrency
	}

	best, found := 0.0, false
	for _, token := range numberRe.FindAllString(text, -1) {
		if v, ok := format.ParseLooseNumber(token); ok && v > constants.RevenueEstimateFloor && v > best {
			best, found = v, true
		}
	}
	if found {
		return best, MethodLargest
	}

	if m := qualifierRe.FindStringSubmatch(text); m != nil {
		if v, ok := format.ParseLooseNumber(m[1]); ok {
			return v, MethodQualifier
		}
	}

	if v := format.ParseAmount(text); v > 0 {
		return v, MethodDirect
	}
	return 0, MethodNone
}

// GrowthPercent extracts an annual growth percentage from a free-text
// projection: the mean of a percentage range, else the first percentage,
// else the last bare number that is not a year.
func GrowthPercent(text string) float64 {
	v, _ := GrowthPercentDetail(text)
	return v
}

// GrowthPercentDetail is GrowthPercent with the matching heuristic.
func GrowthPercentDetail(text string) (float64, Method) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, MethodNone
	}

	if m := percentRangeRe.FindStringSubmatch(text); m != nil {
		low, okLow := format.ParseLooseNumber(m[1])
		high, okHigh := format.ParseLooseNumber(m[2])
		if okLow && okHigh {
			return (low + high) / 2, MethodRange
		}
	}

	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, ok := format.ParseLooseNumber(m[1]); ok {
			return v, MethodPercent
		}
	}

	tokens := plainPercentRe.FindAllString(text, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		if yearRe.MatchString(tokens[i]) {
			continue
		}
		if v, ok := format.ParseLooseNumber(tokens[i]); ok {
			return v, MethodDirect
		}
	}
	return 0, MethodNone
}

// revenueRange reads a rangeRe match: currency tags in groups 1, 3, 4 and 6,
// bounds in groups 2 and 5.
func revenueRange(m []string) (float64, bool) {
	low, okLow := format.ParseLooseNumber(m[2])
	high, okHigh := format.ParseLooseNumber(m[5])
	if !okLow || !okHigh || high < low || high <= 0 {
		return 0, false
	}
	tagged := m[1] != "" || m[3] != "" || m[4] != "" || m[6] != ""
	if !tagged && (low <= constants.RevenueEstimateFloor || isYear(m[2]) || isYear(m[5])) {
		return 0, false
	}
	return (low + high) / 2, true
}

func isYear(token string) bool {
	return yearRe.MatchString(strings.TrimSpace(token))
}

func largest(text string, patterns ...*regexp.Regexp) (float64, bool) {
	best, found := 0.0, false
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := format.ParseLooseNumber(m[1]); ok && (!found || v > best) {
				best, found = v, true
			}
		}
	}
	return best, found
}
