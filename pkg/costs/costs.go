// Package costs converts percentage-of-revenue operating cost lines into
// absolute amounts and derives the tax line in a second pass, so tax depends
// on every other line but never on itself.
package costs

import (
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Item is one operating cost line as entered in the plan. ComputedTotalCost
// is engine-written.
type Item struct {
	ID                string     `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Name              string     `json:"name" yaml:"name" mapstructure:"name"`
	Percentage        format.Raw `json:"percentage" yaml:"percentage" mapstructure:"percentage"`
	ComputedTotalCost float64    `json:"computedTotalCost" yaml:"computedTotalCost,omitempty" mapstructure:"computedTotalCost"`
}

// Overrides carries engine-known amounts that replace a line's percentage.
type Overrides struct {
	// FinancialCharges, when set, is the fixed cost of the financial charges
	// line, typically the year's bank loan interest.
	FinancialCharges *float64
}

// Line is the computed view of a single Item.
type Line struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Cost       float64 `json:"cost"`
	Fixed      bool    `json:"fixed"`
}

// Breakdown is the full cost and tax computation for one revenue base.
type Breakdown struct {
	RevenueBase          float64 `json:"revenueBase"`
	Lines                []Line  `json:"lines"`
	OperatingCosts       float64 `json:"operatingCosts"`
	Amortization         float64 `json:"amortization"`
	FinancialCharges     float64 `json:"financialCharges"`
	SubtotalExcludingTax float64 `json:"subtotalExcludingTax"`
	TaxableIncome        float64 `json:"taxableIncome"`
	Tax                  float64 `json:"tax"`
	TotalOperatingCost   float64 `json:"totalOperatingCost"`
	NetProfit            float64 `json:"netProfit"`
	NetProfitMargin      float64 `json:"netProfitMargin"`
	PercentageTotal      float64 `json:"percentageTotal"`
}

var (
	hundred = decimal.NewFromInt(100)
	taxRate = decimal.NewFromFloat(constants.CorporateTaxRate)
)

// Compute runs both passes over items. The amortization line takes the
// register's annual amortization; the tax line is computed from taxable
// income and is always included in the totals, whether or not items carries a
// tax row.
func Compute(items []Item, revenueBase, amortization float64, overrides Overrides) Breakdown {
	revenueBase = mathutil.Finite(revenueBase)
	amortization = mathutil.Finite(amortization)
	revenue := decimal.NewFromFloat(revenueBase)

	b := Breakdown{RevenueBase: revenueBase, Lines: make([]Line, 0, len(items))}

	// Pass 1: every line except tax.
	subtotal, operating, financial, percentages := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	amortizationSeen := false
	taxIndex := -1
	for _, item := range items {
		line := Line{ID: item.ID, Name: item.Name}
		switch {
		case item.ID == constants.CostItemTax:
			taxIndex = len(b.Lines)
			b.Lines = append(b.Lines, line)
			continue
		case item.ID == constants.CostItemAmortization:
			line.Fixed = true
			if amortizationSeen {
				// A duplicate row must not count the register twice.
				b.Lines = append(b.Lines, line)
				continue
			}
			amortizationSeen = true
			line.Cost = amortization
		case item.ID == constants.CostItemFinancialCharges && overrides.FinancialCharges != nil:
			line.Fixed = true
			line.Cost = mathutil.Finite(*overrides.FinancialCharges)
		default:
			line.Percentage = item.Percentage.Amount()
			pct := decimal.NewFromFloat(line.Percentage)
			percentages = percentages.Add(pct)
			line.Cost = pct.Mul(revenue).Div(hundred).InexactFloat64()
		}

		cost := decimal.NewFromFloat(line.Cost)
		subtotal = subtotal.Add(cost)
		switch item.ID {
		case constants.CostItemAmortization:
		case constants.CostItemFinancialCharges:
			financial = financial.Add(cost)
		default:
			operating = operating.Add(cost)
		}
		b.Lines = append(b.Lines, line)
	}

	// Pass 2: tax on the tax-exclusive subtotal.
	taxable := revenue.Sub(subtotal)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax := taxable.Mul(taxRate)
	total := subtotal.Add(tax)
	net := revenue.Sub(total)

	b.OperatingCosts = operating.InexactFloat64()
	if amortizationSeen {
		b.Amortization = amortization
	}
	b.FinancialCharges = financial.InexactFloat64()
	b.SubtotalExcludingTax = subtotal.InexactFloat64()
	b.TaxableIncome = taxable.InexactFloat64()
	b.Tax = tax.InexactFloat64()
	b.TotalOperatingCost = total.InexactFloat64()
	b.NetProfit = net.InexactFloat64()
	b.PercentageTotal = percentages.InexactFloat64()
	if revenue.IsPositive() {
		b.NetProfitMargin = net.Div(revenue).Mul(hundred).InexactFloat64()
	}
	if taxIndex >= 0 {
		b.Lines[taxIndex].Cost = b.Tax
		b.Lines[taxIndex].Fixed = true
	}
	return b
}

// Reconcile writes the computed costs back into the items. When every value
// is unchanged to the cent it returns items itself and false, so a caller
// that re-feeds its own output converges instead of recomputing forever.
func Reconcile(items []Item, b Breakdown) ([]Item, bool) {
	if len(items) != len(b.Lines) {
		return items, false
	}

	changed := false
	for i, item := range items {
		if item.ID != b.Lines[i].ID || !mathutil.SameCents(item.ComputedTotalCost, b.Lines[i].Cost) {
			changed = true
			break
		}
	}
	if !changed {
		return items, false
	}

	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].ComputedTotalCost = mathutil.Round(b.Lines[i].Cost)
	}
	return out, true
}

// Normalize makes sure the amortization and tax rows exist, amortization
// before tax and tax last. Items without an id are left for validation to
// report. The input slice is returned unchanged when both rows are present.
func Normalize(items []Item) []Item {
	hasAmortization, hasTax := false, false
	for _, item := range items {
		switch item.ID {
		case constants.CostItemAmortization:
			hasAmortization = true
		case constants.CostItemTax:
			hasTax = true
		}
	}
	if hasAmortization && hasTax {
		return items
	}

	out := make([]Item, 0, len(items)+2)
	var tax *Item
	for i := range items {
		if items[i].ID == constants.CostItemTax {
			tax = &items[i]
			continue
		}
		out = append(out, items[i])
	}
	if !hasAmortization {
		out = append(out, Item{ID: constants.CostItemAmortization, Name: "Ammortamenti"})
	}
	if tax != nil {
		out = append(out, *tax)
	} else {
		out = append(out, Item{ID: constants.CostItemTax, Name: "Imposte"})
	}
	return out
}

// WithFinancialCharges makes sure a financial charges row exists, inserting
// it before the amortization row when missing. The input slice is returned
// unchanged when the row is present.
func WithFinancialCharges(items []Item) []Item {
	for _, item := range items {
		if item.ID == constants.CostItemFinancialCharges {
			return items
		}
	}

	row := Item{ID: constants.CostItemFinancialCharges, Name: "Oneri finanziari"}
	out := make([]Item, 0, len(items)+1)
	inserted := false
	for _, item := range items {
		if !inserted && (item.ID == constants.CostItemAmortization || item.ID == constants.CostItemTax) {
			out = append(out, row)
			inserted = true
		}
		out = append(out, item)
	}
	if !inserted {
		out = append(out, row)
	}
	return out
}

// DefaultItems returns the standard operating cost lines offered to a new
// plan, percentages blank.
func DefaultItems() []Item {
	return []Item{
		{ID: "cogs", Name: "Costo del venduto"},
		{ID: "salaries", Name: "Personale"},
		{ID: "rent", Name: "Affitti e locazioni"},
		{ID: "utilities", Name: "Utenze"},
		{ID: "marketing", Name: "Marketing e pubblicità"},
		{ID: "consulting", Name: "Consulenze professionali"},
		{ID: "insurance", Name: "Assicurazioni"},
		{ID: constants.CostItemFinancialCharges, Name: "Oneri finanziari"},
		{ID: constants.CostItemAmortization, Name: "Ammortamenti"},
		{ID: constants.CostItemTax, Name: "Imposte"},
	}
}
