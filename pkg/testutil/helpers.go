// Package testutil provides common fixtures and helpers for testing.
package testutil

import (
	"strings"

	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/preview"
	"github.com/iwvelando/proforma/pkg/revenue"
)

// ScenarioPlan returns a complete plan whose figures are known: IT equipment
// of 10.000 amortized at 20%, 70.000 of ad hoc investment, 100.000 of
// revenue with 30% and 20% cost lines, and 60.000 of sources. It yields a net
// profit of 36.480 and a funding gap of 20.000.
func ScenarioPlan() config.Plan {
	return config.Plan{
		Name: "Scenario",
		Investment: config.Investment{
			FixedInvestments: []assets.Entry{{CategoryKey: "it_elettronica", Amount: "10.000"}},
			InvestmentItems:  []assets.Item{{ID: "avviamento", Description: "Avviamento", Amount: "70.000"}},
		},
		Revenue: config.Revenue{
			RevenueStreams: []revenue.Stream{{ID: "vendite", Name: "Vendite", Amount: "100.000"}},
			GrowthPercent:  "10",
			Collection:     preview.Collection{ImmediatePercent: "60", Days60Percent: "20", Days90Percent: "20"},
		},
		OperatingCosts: config.OperatingCosts{OperatingCostItems: []costs.Item{
			{ID: "cogs", Name: "Costo del venduto", Percentage: "30"},
			{ID: "salaries", Name: "Personale", Percentage: "20"},
			{ID: "amortization", Name: "Ammortamenti"},
			{ID: "tax", Name: "Imposte"},
		}},
		Financing: funding.Sources{Equity: "20.000", BankLoan: "30.000", OtherInvestors: "10.000"},
	}
}

// FindWarning reports whether any warning contains fragment.
func FindWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

// FindPeriod finds a period by label in the series.
// Returns a pointer to the period if found, nil otherwise.
func FindPeriod(periods []preview.Period, label string) *preview.Period {
	for i := range periods {
		if periods[i].Label == label {
			return &periods[i]
		}
	}
	return nil
}
