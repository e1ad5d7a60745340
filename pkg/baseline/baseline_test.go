package baseline

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		records       []Record
		expectNil     bool
		expectIncome  bool
		expectBalance bool
	}{
		{"No records", nil, true, false, false},
		{"No financial data", []Record{{}}, true, false, false},
		{"Nothing numeric", []Record{{FinancialData: map[string]any{"revenue": "n/a", "notes": "bilancio 2023"}}}, true, false, false},
		{"Income only", []Record{{FinancialData: map[string]any{"revenue": 120000.0}}}, false, true, false},
		{"Balance only", []Record{{FinancialData: map[string]any{"patrimonioNetto": 50000}}}, false, false, true},
		{"Both", []Record{{FinancialData: map[string]any{"net_income": -1500.0, "totaleAttivita": json.Number("200000")}}}, false, true, true},
		{"Keys lowercased by a loader", []Record{{FinancialData: map[string]any{"totaleattivita": 1.0}}}, false, false, true},
		{"Only first record counts", []Record{{}, {FinancialData: map[string]any{"revenue": 1.0}}}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Parse(tt.records)
			if tt.expectNil {
				if snap != nil {
					t.Fatalf("expected no snapshot, got %+v", snap)
				}
				return
			}
			if snap == nil {
				t.Fatal("expected a snapshot")
			}
			if (snap.Income != nil) != tt.expectIncome {
				t.Errorf("income present = %v, expected %v", snap.Income != nil, tt.expectIncome)
			}
			if (snap.Balance != nil) != tt.expectBalance {
				t.Errorf("balance present = %v, expected %v", snap.Balance != nil, tt.expectBalance)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	snap := Parse([]Record{{FinancialData: map[string]any{
		"revenue":            250000.0,
		"cogs":               "100000",
		"operating_expenses": 80000,
		"amortization":       12000.0,
		"net_income":         nil,
	}}})
	if snap == nil || snap.Income == nil {
		t.Fatal("expected income")
	}

	in := snap.Income
	if !in.Revenue.Present || in.Revenue.Value != 250000 {
		t.Errorf("revenue = %+v", in.Revenue)
	}
	if in.COGS.Present {
		t.Error("a string is not numeric and must be absent")
	}
	if in.OperatingExpenses.Value != 80000 {
		t.Errorf("operating expenses = %+v", in.OperatingExpenses)
	}
	if in.Amortization.Value != 12000 {
		t.Errorf("amortization fallback = %+v", in.Amortization)
	}
	if in.NetIncome.Present {
		t.Error("null net income must be absent")
	}
}

func TestParseAmortizationPreference(t *testing.T) {
	tests := []struct {
		name     string
		bag      map[string]any
		expected float64
	}{
		{"Depreciation wins", map[string]any{"depreciation_amortization": 5000.0, "amortization": 7000.0}, 5000},
		{"Non-numeric depreciation falls through", map[string]any{"depreciation_amortization": "?", "amortization": 7000.0}, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Parse([]Record{{FinancialData: tt.bag}})
			if snap == nil || snap.Income == nil {
				t.Fatal("expected income")
			}
			if got := snap.Income.Amortization.Or(-1); got != tt.expected {
				t.Errorf("amortization = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFieldJSON(t *testing.T) {
	data, err := json.Marshal(Income{Revenue: Field{Value: 1500.5, Present: true}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	expected := `{"revenue":1500.5,"cogs":null,"operatingExpenses":null,"amortization":null,"netIncome":null}`
	if string(data) != expected {
		t.Errorf("got %s, expected %s", data, expected)
	}

	var back Income
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Revenue.Present || back.Revenue.Value != 1500.5 || back.COGS.Present {
		t.Errorf("unexpected decode: %+v", back)
	}
}
