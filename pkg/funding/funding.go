// Package funding reconciles the required investment against the committed
// financing sources.
package funding

import (
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Sources are the financing step's raw amounts. BankLoanRate (annual percent)
// and BankLoanTermMonths are optional and only drive the loan schedule.
type Sources struct {
	Equity             format.Raw `json:"yourOwnEquity" yaml:"yourOwnEquity" mapstructure:"yourOwnEquity"`
	BankLoan           format.Raw `json:"bankingSystem" yaml:"bankingSystem" mapstructure:"bankingSystem"`
	OtherInvestors     format.Raw `json:"otherInvestors" yaml:"otherInvestors" mapstructure:"otherInvestors"`
	BankLoanRate       format.Raw `json:"bankLoanRate,omitempty" yaml:"bankLoanRate,omitempty" mapstructure:"bankLoanRate"`
	BankLoanTermMonths int        `json:"bankLoanTermMonths,omitempty" yaml:"bankLoanTermMonths,omitempty" mapstructure:"bankLoanTermMonths" validate:"gte=0"`
}

// HasLoanSchedule reports whether enough is known to amortize the bank loan.
func (s Sources) HasLoanSchedule() bool {
	return s.BankLoan.Amount() > 0 && !s.BankLoanRate.IsBlank() && s.BankLoanTermMonths > 0
}

// Share is one source's amount and its percentage of total sources.
type Share struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percentOfTotal"`
}

// Reconciliation compares uses and sources of funds. Gap is signed:
// positive is a shortfall, negative a surplus.
type Reconciliation struct {
	FixedInvestmentTotal float64 `json:"fixedInvestmentTotal"`
	AdHocTotal           float64 `json:"adHocTotal"`
	RequiredInvestment   float64 `json:"requiredInvestment"`
	Equity               Share   `json:"equity"`
	BankLoan             Share   `json:"bankLoan"`
	OtherInvestors       Share   `json:"otherInvestors"`
	TotalSources         float64 `json:"totalSources"`
	Gap                  float64 `json:"gap"`
	Shortfall            float64 `json:"shortfall"`
	Surplus              float64 `json:"surplus"`
}

// Blocked reports whether a shortfall of at least one cent remains. A surplus
// never blocks.
func (r Reconciliation) Blocked() bool {
	return mathutil.Round(r.Gap) > 0
}

// Reconcile computes the funding gap for a fixed investment total, the ad hoc
// items and the financing sources.
func Reconcile(fixedInvestmentTotal float64, items []assets.Item, sources Sources) Reconciliation {
	fixed := decimal.NewFromFloat(mathutil.Finite(fixedInvestmentTotal))
	adHoc := decimal.NewFromFloat(assets.SumItems(items))
	required := fixed.Add(adHoc)

	equity := decimal.NewFromFloat(sources.Equity.Amount())
	bank := decimal.NewFromFloat(sources.BankLoan.Amount())
	others := decimal.NewFromFloat(sources.OtherInvestors.Amount())
	total := equity.Add(bank).Add(others)
	gap := required.Sub(total)

	r := Reconciliation{
		FixedInvestmentTotal: fixed.InexactFloat64(),
		AdHocTotal:           adHoc.InexactFloat64(),
		RequiredInvestment:   required.InexactFloat64(),
		TotalSources:         total.InexactFloat64(),
		Gap:                  gap.InexactFloat64(),
	}
	r.Equity = share(equity, r.TotalSources)
	r.BankLoan = share(bank, r.TotalSources)
	r.OtherInvestors = share(others, r.TotalSources)

	if gap.IsPositive() {
		r.Shortfall = r.Gap
	} else {
		r.Surplus = gap.Neg().InexactFloat64()
	}
	return r
}

func share(amount decimal.Decimal, total float64) Share {
	v := amount.InexactFloat64()
	return Share{Amount: v, Percent: mathutil.CalculatePercentage(v, total)}
}
