package preview

import (
	"math"
	"testing"

	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/funding"
)

func scenarioItems() []costs.Item {
	return []costs.Item{
		{ID: "cogs", Percentage: "30"},
		{ID: "salaries", Percentage: "20"},
		{ID: constants.CostItemFinancialCharges, Percentage: "0"},
		{ID: constants.CostItemAmortization},
		{ID: constants.CostItemTax},
	}
}

func TestIncomeStatement(t *testing.T) {
	is := IncomeStatement(costs.Compute(scenarioItems(), 100000, 2000, costs.Overrides{}))

	expected := IncomeStatementPreview{
		Ricavi:         100000,
		CostiOperativi: 50000,
		Ammortamenti:   2000,
		Imposte:        11520,
		Utile:          36480,
	}
	if is != expected {
		t.Errorf("got %+v, expected %+v", is, expected)
	}

	if lines := is.Ricavi - is.CostiOperativi - is.Ammortamenti - is.OneriFinanziari - is.Imposte; math.Abs(lines-is.Utile) > 1e-6 {
		t.Errorf("statement does not reconcile: %v vs %v", lines, is.Utile)
	}
}

func TestCashFlow(t *testing.T) {
	b := costs.Compute(scenarioItems(), 100000, 2000, costs.Overrides{})
	r := funding.Reconciliation{RequiredInvestment: 80000, TotalSources: 60000}

	tests := []struct {
		name       string
		collection Collection
		ar         float64
		operating  float64
		delta      float64
		percentSum float64
	}{
		{"Balanced buckets", Collection{ImmediatePercent: "60", Days60Percent: "20", Days90Percent: "20"}, 20000, 18480, -1520, 100},
		{"All immediate", Collection{ImmediatePercent: "100"}, 0, 38480, 18480, 100},
		{"Over 100 is clamped for receivables only", Collection{ImmediatePercent: "50", Days90Percent: "150"}, 100000, -61520, -81520, 200},
		{"Under 100 is surfaced", Collection{ImmediatePercent: "40", Days60Percent: "10", Days90Percent: "10"}, 10000, 28480, 8480, 60},
		{"Blank", Collection{}, 0, 38480, 18480, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := CashFlow(b, r, tt.collection)
			if cf.ARIncrease != tt.ar {
				t.Errorf("arIncrease = %v, expected %v", cf.ARIncrease, tt.ar)
			}
			if cf.Operating != tt.operating {
				t.Errorf("operating = %v, expected %v", cf.Operating, tt.operating)
			}
			if cf.Investing != -80000 || cf.Financing != 60000 {
				t.Errorf("investing/financing = %v/%v", cf.Investing, cf.Financing)
			}
			if cf.Delta != tt.delta {
				t.Errorf("delta = %v, expected %v", cf.Delta, tt.delta)
			}
			if cf.PercentSum != tt.percentSum {
				t.Errorf("percentSum = %v, expected %v", cf.PercentSum, tt.percentSum)
			}
		})
	}
}

func TestBalanceYear0(t *testing.T) {
	if BalanceYear0(nil) != nil {
		t.Error("nil snapshot should have no balance")
	}
	if BalanceYear0(&baseline.Snapshot{Income: &baseline.Income{}}) != nil {
		t.Error("income-only snapshot should have no balance")
	}

	snap := baseline.Parse([]baseline.Record{{FinancialData: map[string]any{"totaleAttivita": 500000.0}}})
	bs := BalanceYear0(snap)
	if bs == nil {
		t.Fatal("expected a balance sheet")
	}
	if !bs.TotaleAttivita.Present || bs.TotaleAttivita.Value != 500000 || bs.PatrimonioNetto.Present {
		t.Errorf("unexpected balance: %+v", bs)
	}
}

func TestSeries(t *testing.T) {
	years := []IncomeStatementPreview{{Ricavi: 100000, Utile: 36480}, {Ricavi: 110000, Utile: 42000}}

	t.Run("Without Year 0", func(t *testing.T) {
		periods := Series(nil, years)
		if len(periods) != 2 {
			t.Fatalf("expected 2 periods, got %d", len(periods))
		}
		if periods[0].Label != "Anno 1" || periods[0].Year != 1 || periods[0].Historical {
			t.Errorf("unexpected first period: %+v", periods[0])
		}
	})

	t.Run("With Year 0", func(t *testing.T) {
		year0 := &baseline.Income{
			Revenue:           baseline.Field{Value: 90000, Present: true},
			OperatingExpenses: baseline.Field{Value: 30000, Present: true},
		}
		periods := Series(year0, years)
		if len(periods) != 3 {
			t.Fatalf("expected 3 periods, got %d", len(periods))
		}
		first := periods[0]
		if first.Label != "Anno 0" || !first.Historical || first.Year != 0 {
			t.Errorf("unexpected Year 0 period: %+v", first)
		}
		if first.Ricavi.Value != 90000 || first.CostiOperativi.Value != 30000 {
			t.Errorf("unexpected Year 0 values: %+v", first)
		}
		if first.Utile.Present || first.Imposte.Present {
			t.Error("absent historical values must stay absent")
		}
		if periods[1].Ricavi.Value != 100000 {
			t.Errorf("Year 1 must not be blended with Year 0, got %v", periods[1].Ricavi.Value)
		}
	})
}

func TestProjectYears(t *testing.T) {
	revenues := []float64{100000, 110000, 121000}
	items := scenarioItems()

	t.Run("Percentage lines scale", func(t *testing.T) {
		statements, breakdowns := ProjectYears(items, revenues, 2000, nil)
		if len(statements) != 3 || len(breakdowns) != 3 {
			t.Fatalf("expected 3 years, got %d", len(statements))
		}
		if statements[0] != IncomeStatement(costs.Compute(items, 100000, 2000, costs.Overrides{})) {
			t.Error("first projected year should equal the Year-1 statement")
		}
		if statements[1].CostiOperativi != 55000 {
			t.Errorf("year 2 operating costs = %v, expected 55000", statements[1].CostiOperativi)
		}
		for i, s := range statements {
			if s.Ammortamenti != 2000 {
				t.Errorf("year %d amortization = %v, expected 2000", i+1, s.Ammortamenti)
			}
		}
	})

	t.Run("Financial charges follow the loan", func(t *testing.T) {
		statements, _ := ProjectYears(items, revenues, 2000, []float64{1500, 800})
		expected := []float64{1500, 800, 0}
		for i, s := range statements {
			if s.OneriFinanziari != expected[i] {
				t.Errorf("year %d financial charges = %v, expected %v", i+1, s.OneriFinanziari, expected[i])
			}
		}
	})
}
