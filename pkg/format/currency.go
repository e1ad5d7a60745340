// Package format parses and renders European-formatted monetary and percentage
// strings. Parsing never fails: anything unreadable is worth zero.
package format

import (
	"math"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/shopspring/decimal"
)

// Options controls how FormatAmount renders a value.
type Options struct {
	Decimals   int
	WithSymbol bool
}

// DefaultOptions renders two decimals without a currency symbol.
var DefaultOptions = Options{Decimals: constants.DisplayDecimals}

// FormatAmount renders value with "." thousands grouping and "," as the decimal
// separator (e.g., "-1.234,56"), optionally followed by the euro symbol.
// NaN and infinities render as zero.
func FormatAmount(value float64, opts Options) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	decimals := opts.Decimals
	if decimals < 0 {
		decimals = 0
	}

	fixed := decimal.NewFromFloat(value).StringFixed(int32(decimals))
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, decPart, _ := strings.Cut(fixed, ".")
	formatted := groupThousands(intPart)
	if decimals > 0 {
		formatted += constants.DecimalSeparator + decPart
	}
	if negative && strings.Trim(intPart+decPart, "0") != "" {
		formatted = "-" + formatted
	}
	if opts.WithSymbol {
		formatted += " " + constants.CurrencySymbol
	}
	return formatted
}

// Currency returns a two-decimal amount with the euro symbol (e.g., "1.234,56 €").
func Currency(amount float64) string {
	return FormatAmount(amount, Options{Decimals: constants.DisplayDecimals, WithSymbol: true})
}

// Number returns a two-decimal amount without a currency symbol (e.g., "1.234,56").
func Number(amount float64) string {
	return FormatAmount(amount, DefaultOptions)
}

// Percent returns a two-decimal percentage (e.g., "36,48%").
func Percent(value float64) string {
	return FormatAmount(value, DefaultOptions) + "%"
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteString(constants.ThousandsSeparator)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
