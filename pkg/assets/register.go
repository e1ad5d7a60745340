package assets

import (
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/shopspring/decimal"
)

// Resolution records how a line's category and class were determined.
type Resolution string

const (
	ResolvedByKey     Resolution = "key"
	ResolvedByClass   Resolution = "class"
	ResolvedByLabel   Resolution = "label"
	ResolvedByDefault Resolution = "default"
)

// Entry is one user-entered fixed investment. Current records carry a
// CategoryKey; legacy records may only have a Label and possibly a Class.
type Entry struct {
	CategoryKey string     `json:"categoryKey,omitempty" yaml:"categoryKey,omitempty" mapstructure:"categoryKey"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Class       Class      `json:"class,omitempty" yaml:"class,omitempty" mapstructure:"class" validate:"omitempty,oneof=material immaterial"`
	Amount      format.Raw `json:"amount" yaml:"amount" mapstructure:"amount"`
}

// Item is an ad hoc investment outside the catalog. It counts towards the
// required investment but is never amortized.
type Item struct {
	ID          string     `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Description string     `json:"description" yaml:"description" mapstructure:"description"`
	Amount      format.Raw `json:"amount" yaml:"amount" mapstructure:"amount"`
}

// Line is the register's view of a single entry.
type Line struct {
	CategoryKey        string     `json:"categoryKey"`
	Label              string     `json:"label"`
	Class              Class      `json:"class"`
	Rate               float64    `json:"amortizationRate"`
	Amount             float64    `json:"amount"`
	AnnualAmortization float64    `json:"annualAmortization"`
	ResolvedBy         Resolution `json:"resolvedBy"`
}

// Register aggregates the fixed investments.
type Register struct {
	Lines                   []Line             `json:"lines"`
	MaterialTotal           float64            `json:"materialTotal"`
	ImmaterialTotal         float64            `json:"immaterialTotal"`
	FixedInvestmentTotal    float64            `json:"fixedInvestmentTotal"`
	TotalAnnualAmortization float64            `json:"totalAnnualAmortization"`
	AmortizationByCategory  map[string]float64 `json:"amortizationByCategory"`
}

// DefaultEntries returns one blank entry per catalog category.
func DefaultEntries() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for _, c := range catalog {
		entries = append(entries, Entry{CategoryKey: c.Key, Label: c.Label})
	}
	return entries
}

// Resolve determines category, rate and class for an entry: by catalog key
// first, then by an explicit class, then by label keywords. An entry nothing
// matches is material with no amortization.
func Resolve(entry Entry) Line {
	line := Line{CategoryKey: entry.CategoryKey, Label: entry.Label}

	if c, ok := Lookup(entry.CategoryKey); ok {
		line.CategoryKey, line.Rate, line.Class, line.ResolvedBy = c.Key, c.Rate, c.Class, ResolvedByKey
		if line.Label == "" {
			line.Label = c.Label
		}
		return line
	}

	matched, found := MatchLabel(entry.Label)
	if found {
		line.CategoryKey, line.Rate = matched.Key, matched.Rate
	}

	switch {
	case entry.Class.Valid():
		line.Class, line.ResolvedBy = entry.Class, ResolvedByClass
	case found:
		line.Class, line.ResolvedBy = matched.Class, ResolvedByLabel
	default:
		line.Class, line.ResolvedBy = Material, ResolvedByDefault
	}
	return line
}

// Compute applies the catalog to the entries. Blank or unreadable amounts
// count as zero.
func Compute(entries []Entry) Register {
	reg := Register{
		Lines:                  make([]Line, 0, len(entries)),
		AmortizationByCategory: make(map[string]float64),
	}

	material, immaterial := decimal.Zero, decimal.Zero
	for _, entry := range entries {
		line := Resolve(entry)
		line.Amount = entry.Amount.Amount()
		line.AnnualAmortization = line.Amount * line.Rate

		amount := decimal.NewFromFloat(line.Amount)
		if line.Class == Immaterial {
			immaterial = immaterial.Add(amount)
		} else {
			material = material.Add(amount)
		}
		reg.TotalAnnualAmortization += line.AnnualAmortization
		if line.CategoryKey != "" {
			reg.AmortizationByCategory[line.CategoryKey] += line.AnnualAmortization
		}
		reg.Lines = append(reg.Lines, line)
	}

	reg.MaterialTotal = material.InexactFloat64()
	reg.ImmaterialTotal = immaterial.InexactFloat64()
	reg.FixedInvestmentTotal = reg.MaterialTotal + reg.ImmaterialTotal
	return reg
}

// SumItems totals the ad hoc investment items.
func SumItems(items []Item) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount.Amount()))
	}
	return total.InexactFloat64()
}
