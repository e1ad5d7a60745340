// Package baseline reads the optional Year-0 figures out of the documents the
// extraction service produced. Every field is either present and numeric or
// absent; nothing here ever fails on an odd shape.
package baseline

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is one extraction result. FinancialData is whatever bag of values
// the extraction produced.
type Record struct {
	FinancialData map[string]any `json:"financial_data" yaml:"financial_data" mapstructure:"financial_data"`
}

// Field is a value that was either found as a number or is absent.
type Field struct {
	Value   float64
	Present bool
}

// Or returns the value when present and def otherwise.
func (f Field) Or(def float64) float64 {
	if f.Present {
		return f.Value
	}
	return def
}

// MarshalJSON renders an absent field as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (f *Field) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = Field{}
		return nil
	}
	*f = Field{Value: *v, Present: true}
	return nil
}

// Income is the historical income statement.
type Income struct {
	Revenue           Field `json:"revenue"`
	COGS              Field `json:"cogs"`
	OperatingExpenses Field `json:"operatingExpenses"`
	Amortization      Field `json:"amortization"`
	NetIncome         Field `json:"netIncome"`
}

// Balance is the historical balance sheet.
type Balance struct {
	TotalAssets      Field `json:"totaleAttivita"`
	TotalLiabilities Field `json:"totalePassivita"`
	Equity           Field `json:"patrimonioNetto"`
}

// Snapshot is the Year-0 baseline. Income or Balance is nil when none of its
// fields resolved.
type Snapshot struct {
	Income  *Income  `json:"income,omitempty"`
	Balance *Balance `json:"balance,omitempty"`
}

// Parse reads the first record's financial data. It returns nil when there
// is no record or nothing numeric was found, since a zero-filled Year 0 would
// misrepresent the business.
func Parse(records []Record) *Snapshot {
	if len(records) == 0 || records[0].FinancialData == nil {
		return nil
	}
	bag := records[0].FinancialData

	income := Income{
		Revenue:           read(bag, "revenue"),
		COGS:              read(bag, "cogs"),
		OperatingExpenses: read(bag, "operating_expenses"),
		Amortization:      read(bag, "depreciation_amortization", "amortization"),
		NetIncome:         read(bag, "net_income"),
	}
	balance := Balance{
		TotalAssets:      read(bag, "totaleAttivita"),
		TotalLiabilities: read(bag, "totalePassivita"),
		Equity:           read(bag, "patrimonioNetto"),
	}

	snap := &Snapshot{}
	if anyPresent(income.Revenue, income.COGS, income.OperatingExpenses, income.Amortization, income.NetIncome) {
		snap.Income = &income
	}
	if anyPresent(balance.TotalAssets, balance.TotalLiabilities, balance.Equity) {
		snap.Balance = &balance
	}
	if snap.Income == nil && snap.Balance == nil {
		return nil
	}
	return snap
}

// read returns the first key holding a number. A key that is present but not
// numeric does not stop the search. Keys match exactly first and then
// ignoring case, since config loaders and extraction models disagree on case.
func read(bag map[string]any, keys ...string) Field {
	for _, key := range keys {
		if v, ok := numeric(bag[key]); ok {
			return Field{Value: v, Present: true}
		}
		if v, ok := numeric(lookupFold(bag, key)); ok {
			return Field{Value: v, Present: true}
		}
	}
	return Field{}
}

func lookupFold(bag map[string]any, key string) any {
	names := make([]string, 0, len(bag))
	for name := range bag {
		if strings.EqualFold(name, key) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return bag[names[0]]
}

func numeric(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func anyPresent(fields ...Field) bool {
	for _, f := range fields {
		if f.Present {
			return true
		}
	}
	return false
}
