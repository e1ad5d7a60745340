// Package forecast defines the data structures related to a computed plan and
// includes functions for computing them.
package forecast

import (
	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/growth"
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/preview"
	"github.com/iwvelando/proforma/pkg/revenue"
	"go.uber.org/zap"
)

// Totals are the headline figures of the plan.
type Totals struct {
	MaterialTotal           float64 `json:"materialTotal"`
	ImmaterialTotal         float64 `json:"immaterialTotal"`
	FixedInvestmentTotal    float64 `json:"fixedInvestmentTotal"`
	TotalAnnualAmortization float64 `json:"totalAnnualAmortization"`
	RevenueBase             float64 `json:"revenueBase"`
	SubtotalExcludingTax    float64 `json:"subtotalExcludingTax"`
	TaxableIncome           float64 `json:"taxableIncome"`
	Tax                     float64 `json:"tax"`
	TotalOperatingCost      float64 `json:"totalOperatingCost"`
	NetProfit               float64 `json:"netProfit"`
	NetProfitMargin         float64 `json:"netProfitMargin"`
}

// Result holds everything derived from one plan snapshot.
type Result struct {
	Name               string                         `json:"name,omitempty"`
	Totals             Totals                         `json:"totals"`
	Register           assets.Register                `json:"register"`
	Revenue            revenue.Summary                `json:"revenue"`
	Costs              costs.Breakdown                `json:"costs"`
	OperatingCostItems []costs.Item                   `json:"operatingCostItems"`
	FundingGap         funding.Reconciliation         `json:"fundingGap"`
	Blocked            bool                           `json:"blocked"`
	IncomeStatement    preview.IncomeStatementPreview `json:"incomeStatement"`
	CashFlow           preview.CashFlowPreview        `json:"cashFlow"`
	Year0              *baseline.Snapshot             `json:"year0,omitempty"`
	BalanceYear0       *preview.BalanceSheetPreview   `json:"balanceYear0,omitempty"`
	GrowthForecast     growth.Forecast                `json:"growthForecast"`
	Projection         []preview.Period               `json:"projection"`
	LoanSchedule       []loans.YearSummary            `json:"loanSchedule,omitempty"`
	Display            Display                        `json:"display"`
	Warnings           []string                       `json:"warnings,omitempty"`
}

// Compute derives every figure of the plan in a single pass. It holds no
// state between calls, so concurrent calls are independent.
func Compute(logger *zap.Logger, plan config.Plan) Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := NewSession(logger).Recompute(plan).Result

	logger.Debug("computed plan",
		zap.String("op", "forecast.Compute"),
		zap.String("plan", plan.Name),
		zap.Float64("revenueBase", result.Totals.RevenueBase),
		zap.Float64("netProfit", result.Totals.NetProfit),
		zap.Float64("gap", result.FundingGap.Gap),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result
}

func (s *Session) assemble(plan config.Plan, items []costs.Item) Result {
	register := s.register.output
	breakdown := s.costs.output

	reconciled, changed := costs.Reconcile(items, breakdown)
	if changed {
		s.logger.Debug("cost items updated",
			zap.String("op", "forecast.assemble"),
			zap.Int("items", len(reconciled)),
		)
	}

	r := Result{
		Name: plan.Name,
		Totals: Totals{
			MaterialTotal:           register.MaterialTotal,
			ImmaterialTotal:         register.ImmaterialTotal,
			FixedInvestmentTotal:    register.FixedInvestmentTotal,
			TotalAnnualAmortization: register.TotalAnnualAmortization,
			RevenueBase:             breakdown.RevenueBase,
			SubtotalExcludingTax:    breakdown.SubtotalExcludingTax,
			TaxableIncome:           breakdown.TaxableIncome,
			Tax:                     breakdown.Tax,
			TotalOperatingCost:      breakdown.TotalOperatingCost,
			NetProfit:               breakdown.NetProfit,
			NetProfitMargin:         breakdown.NetProfitMargin,
		},
		Register:           register,
		Revenue:            s.revenue.output,
		Costs:              breakdown,
		OperatingCostItems: reconciled,
		FundingGap:         s.funding.output,
		Blocked:            s.funding.output.Blocked(),
		IncomeStatement:    s.preview.output.IncomeStatement,
		CashFlow:           s.preview.output.CashFlow,
		Year0:              s.baseline.output,
		BalanceYear0:       s.preview.output.Balance,
		GrowthForecast:     s.growth.output,
		Projection:         s.preview.output.Projection,
		LoanSchedule:       s.loan.output.Years,
		Warnings:           plan.Validate(),
	}
	r.Display = NewDisplay(r)

	for _, warning := range r.Warnings {
		s.logger.Debug("plan warning: "+warning,
			zap.String("op", "forecast.assemble"),
		)
	}
	return r
}
