// Package revenue consolidates the Year-1 revenue streams into a single base
// figure, falling back to a free-text estimate when no table was entered.
package revenue

import (
	"github.com/iwvelando/proforma/pkg/estimate"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Source identifies where the revenue base came from.
type Source string

const (
	SourceStreams  Source = "streams"
	SourceEstimate Source = "estimate"
	SourceNone     Source = "none"
)

// Stream is one product or service revenue line for Year 1.
type Stream struct {
	ID          string     `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Name        string     `json:"name" yaml:"name" mapstructure:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Amount      format.Raw `json:"amount" yaml:"amount" mapstructure:"amount"`
}

// Line is a parsed stream with its share of the total.
type Line struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percentOfTotal"`
}

// Summary is the aggregated Year-1 revenue.
type Summary struct {
	Base           float64         `json:"revenueBase"`
	Source         Source          `json:"source"`
	EstimateMethod estimate.Method `json:"estimateMethod,omitempty"`
	Lines          []Line          `json:"lines,omitempty"`
}

// HasStructuredAmounts reports whether at least one stream carries an amount.
func HasStructuredAmounts(streams []Stream) bool {
	for _, s := range streams {
		if !s.Amount.IsBlank() {
			return true
		}
	}
	return false
}

// Aggregate sums the streams when any carries an amount; otherwise the base
// is estimated from the legacy free-text expectedRevenue.
func Aggregate(streams []Stream, expectedRevenue string) Summary {
	if !HasStructuredAmounts(streams) {
		v, method := estimate.RevenueDetail(expectedRevenue)
		if method == estimate.MethodNone {
			return Summary{Source: SourceNone}
		}
		return Summary{Base: v, Source: SourceEstimate, EstimateMethod: method}
	}

	total := decimal.Zero
	lines := make([]Line, 0, len(streams))
	for _, s := range streams {
		amount := s.Amount.Amount()
		total = total.Add(decimal.NewFromFloat(amount))
		lines = append(lines, Line{ID: s.ID, Name: s.Name, Amount: amount})
	}

	base := total.InexactFloat64()
	for i := range lines {
		lines[i].Percent = mathutil.CalculatePercentage(lines[i].Amount, base)
	}
	return Summary{Base: base, Source: SourceStreams, Lines: lines}
}
