// Package preview recombines the register, cost breakdown and funding
// reconciliation into the income statement, cash flow and balance sheet
// figures shown to the user.
package preview

import (
	"fmt"

	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// Collection is the payment collection schedule. The buckets are entered
// independently and are not required to sum to 100.
type Collection struct {
	ImmediatePercent format.Raw `json:"immediateCollectionPercent" yaml:"immediateCollectionPercent" mapstructure:"immediateCollectionPercent"`
	Days60Percent    format.Raw `json:"collection60DaysPercent" yaml:"collection60DaysPercent" mapstructure:"collection60DaysPercent"`
	Days90Percent    format.Raw `json:"collection90DaysPercent" yaml:"collection90DaysPercent" mapstructure:"collection90DaysPercent"`
}

// PercentSum is the sum of the three buckets as entered. It is reported so
// the user can correct it and is never used to normalize.
func (c Collection) PercentSum() float64 {
	return c.ImmediatePercent.Amount() + c.Days60Percent.Amount() + c.Days90Percent.Amount()
}

// IncomeStatementPreview is the Year-1 income statement.
type IncomeStatementPreview struct {
	Ricavi          float64 `json:"ricavi"`
	CostiOperativi  float64 `json:"costiOperativi"`
	Ammortamenti    float64 `json:"ammortamenti"`
	OneriFinanziari float64 `json:"oneriFinanziari"`
	Imposte         float64 `json:"imposte"`
	Utile           float64 `json:"utile"`
}

// CashFlowPreview is the Year-1 cash flow.
type CashFlowPreview struct {
	Operating  float64 `json:"operating"`
	Investing  float64 `json:"investing"`
	Financing  float64 `json:"financing"`
	ARIncrease float64 `json:"arIncrease"`
	Delta      float64 `json:"delta"`
	PercentSum float64 `json:"percentSum"`
}

// BalanceSheetPreview is the historical balance sheet, when one was extracted.
type BalanceSheetPreview struct {
	TotaleAttivita  baseline.Field `json:"totaleAttivita"`
	TotalePassivita baseline.Field `json:"totalePassivita"`
	PatrimonioNetto baseline.Field `json:"patrimonioNetto"`
}

// IncomeStatement maps a cost breakdown onto the statement lines. The lines
// always reconcile: Ricavi less every cost line equals Utile.
func IncomeStatement(b costs.Breakdown) IncomeStatementPreview {
	return IncomeStatementPreview{
		Ricavi:          b.RevenueBase,
		CostiOperativi:  b.OperatingCosts,
		Ammortamenti:    b.Amortization,
		OneriFinanziari: b.FinancialCharges,
		Imposte:         b.Tax,
		Utile:           b.NetProfit,
	}
}

// CashFlow derives the Year-1 cash flow. Amortization is added back as a
// non-cash cost, and revenue in the 90-day bucket is treated as uncollected
// at year end.
func CashFlow(b costs.Breakdown, r funding.Reconciliation, c Collection) CashFlowPreview {
	days90 := mathutil.Clamp(c.Days90Percent.Amount(), 0, constants.FullCollectionPercent)
	cf := CashFlowPreview{
		ARIncrease: b.RevenueBase * days90 / constants.PercentageMultiplier,
		Investing:  -r.RequiredInvestment,
		Financing:  r.TotalSources,
		PercentSum: c.PercentSum(),
	}
	cf.Operating = b.NetProfit + b.Amortization - cf.ARIncrease
	cf.Delta = cf.Operating + cf.Investing + cf.Financing
	return cf
}

// BalanceYear0 returns the extracted balance sheet or nil.
func BalanceYear0(snap *baseline.Snapshot) *BalanceSheetPreview {
	if snap == nil || snap.Balance == nil {
		return nil
	}
	return &BalanceSheetPreview{
		TotaleAttivita:  snap.Balance.TotalAssets,
		TotalePassivita: snap.Balance.TotalLiabilities,
		PatrimonioNetto: snap.Balance.Equity,
	}
}

// Period is one column of the income statement series. Historical values
// may be absent; projected ones are always present.
type Period struct {
	Label           string         `json:"label"`
	Year            int            `json:"year"`
	Historical      bool           `json:"historical"`
	Ricavi          baseline.Field `json:"ricavi"`
	CostiOperativi  baseline.Field `json:"costiOperativi"`
	Ammortamenti    baseline.Field `json:"ammortamenti"`
	OneriFinanziari baseline.Field `json:"oneriFinanziari"`
	Imposte         baseline.Field `json:"imposte"`
	Utile           baseline.Field `json:"utile"`
}

// Series lays out the projected years, prepending Year 0 as its own period
// when a historical income statement exists. Year 0 is never combined with
// the projected figures.
func Series(year0 *baseline.Income, years []IncomeStatementPreview) []Period {
	periods := make([]Period, 0, len(years)+1)
	if year0 != nil {
		periods = append(periods, historicalPeriod(year0))
	}
	for i, y := range years {
		periods = append(periods, Period{
			Label:           periodLabel(i + 1),
			Year:            i + 1,
			Ricavi:          present(y.Ricavi),
			CostiOperativi:  present(y.CostiOperativi),
			Ammortamenti:    present(y.Ammortamenti),
			OneriFinanziari: present(y.OneriFinanziari),
			Imposte:         present(y.Imposte),
			Utile:           present(y.Utile),
		})
	}
	return periods
}

// ProjectYears re-runs the cost calculator for each forecast revenue.
// Percentage lines scale with revenue while amortization stays fixed. When
// financialCharges is non-nil, year i charges financialCharges[i] (zero once
// the slice runs out) in place of the financial charges percentage.
func ProjectYears(items []costs.Item, revenues []float64, amortization float64, financialCharges []float64) ([]IncomeStatementPreview, []costs.Breakdown) {
	statements := make([]IncomeStatementPreview, 0, len(revenues))
	breakdowns := make([]costs.Breakdown, 0, len(revenues))
	for i, rev := range revenues {
		var overrides costs.Overrides
		if financialCharges != nil {
			charge := 0.0
			if i < len(financialCharges) {
				charge = financialCharges[i]
			}
			overrides.FinancialCharges = &charge
		}
		b := costs.Compute(items, rev, amortization, overrides)
		breakdowns = append(breakdowns, b)
		statements = append(statements, IncomeStatement(b))
	}
	return statements, breakdowns
}

func historicalPeriod(in *baseline.Income) Period {
	p := Period{
		Label:        periodLabel(0),
		Historical:   true,
		Ricavi:       in.Revenue,
		Ammortamenti: in.Amortization,
		Utile:        in.NetIncome,
	}
	if in.COGS.Present || in.OperatingExpenses.Present {
		p.CostiOperativi = present(in.COGS.Or(0) + in.OperatingExpenses.Or(0))
	}
	return p
}

func present(v float64) baseline.Field {
	return baseline.Field{Value: v, Present: true}
}

func periodLabel(year int) string {
	return fmt.Sprintf("Anno %d", year)
}
