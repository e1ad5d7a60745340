package forecast

import (
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/format"
)

// Display carries the result's figures pre-formatted in the Italian style,
// e.g. "1.234,56 €" and "36,48%".
type Display struct {
	FixedInvestmentTotal    string          `json:"fixedInvestmentTotal"`
	TotalAnnualAmortization string          `json:"totalAnnualAmortization"`
	RequiredInvestment      string          `json:"requiredInvestment"`
	TotalSources            string          `json:"totalSources"`
	Gap                     string          `json:"gap"`
	RevenueBase             string          `json:"revenueBase"`
	TotalOperatingCost      string          `json:"totalOperatingCost"`
	Tax                     string          `json:"tax"`
	NetProfit               string          `json:"netProfit"`
	NetProfitMargin         string          `json:"netProfitMargin"`
	IncomeStatement         DisplayIncome   `json:"incomeStatement"`
	CashFlow                DisplayCashFlow `json:"cashFlow"`
	GrowthForecast          []string        `json:"growthForecast"`
	Projection              []DisplayPeriod `json:"projection"`
	CollectionPercentSum    string          `json:"collectionPercentSum"`
}

// DisplayIncome is the formatted income statement.
type DisplayIncome struct {
	Ricavi          string `json:"ricavi"`
	CostiOperativi  string `json:"costiOperativi"`
	Ammortamenti    string `json:"ammortamenti"`
	OneriFinanziari string `json:"oneriFinanziari"`
	Imposte         string `json:"imposte"`
	Utile           string `json:"utile"`
}

// DisplayCashFlow is the formatted cash flow.
type DisplayCashFlow struct {
	Operating  string `json:"operating"`
	Investing  string `json:"investing"`
	Financing  string `json:"financing"`
	ARIncrease string `json:"arIncrease"`
	Delta      string `json:"delta"`
}

// DisplayPeriod is one formatted column of the income statement series.
// Absent historical values are empty strings.
type DisplayPeriod struct {
	Label string        `json:"label"`
	Lines DisplayIncome `json:"lines"`
}

// NewDisplay formats r.
func NewDisplay(r Result) Display {
	d := Display{
		FixedInvestmentTotal:    format.Currency(r.Totals.FixedInvestmentTotal),
		TotalAnnualAmortization: format.Currency(r.Totals.TotalAnnualAmortization),
		RequiredInvestment:      format.Currency(r.FundingGap.RequiredInvestment),
		TotalSources:            format.Currency(r.FundingGap.TotalSources),
		Gap:                     format.Currency(r.FundingGap.Gap),
		RevenueBase:             format.Currency(r.Totals.RevenueBase),
		TotalOperatingCost:      format.Currency(r.Totals.TotalOperatingCost),
		Tax:                     format.Currency(r.Totals.Tax),
		NetProfit:               format.Currency(r.Totals.NetProfit),
		NetProfitMargin:         format.Percent(r.Totals.NetProfitMargin),
		IncomeStatement: DisplayIncome{
			Ricavi:          format.Currency(r.IncomeStatement.Ricavi),
			CostiOperativi:  format.Currency(r.IncomeStatement.CostiOperativi),
			Ammortamenti:    format.Currency(r.IncomeStatement.Ammortamenti),
			OneriFinanziari: format.Currency(r.IncomeStatement.OneriFinanziari),
			Imposte:         format.Currency(r.IncomeStatement.Imposte),
			Utile:           format.Currency(r.IncomeStatement.Utile),
		},
		CashFlow: DisplayCashFlow{
			Operating:  format.Currency(r.CashFlow.Operating),
			Investing:  format.Currency(r.CashFlow.Investing),
			Financing:  format.Currency(r.CashFlow.Financing),
			ARIncrease: format.Currency(r.CashFlow.ARIncrease),
			Delta:      format.Currency(r.CashFlow.Delta),
		},
		GrowthForecast:       make([]string, 0, len(r.GrowthForecast.Years)),
		Projection:           make([]DisplayPeriod, 0, len(r.Projection)),
		CollectionPercentSum: format.Percent(r.CashFlow.PercentSum),
	}
	for _, y := range r.GrowthForecast.Years {
		d.GrowthForecast = append(d.GrowthForecast, format.Currency(y))
	}
	for _, p := range r.Projection {
		d.Projection = append(d.Projection, DisplayPeriod{
			Label: p.Label,
			Lines: DisplayIncome{
				Ricavi:          field(p.Ricavi),
				CostiOperativi:  field(p.CostiOperativi),
				Ammortamenti:    field(p.Ammortamenti),
				OneriFinanziari: field(p.OneriFinanziari),
				Imposte:         field(p.Imposte),
				Utile:           field(p.Utile),
			},
		})
	}
	return d
}

func field(f baseline.Field) string {
	if !f.Present {
		return ""
	}
	return format.Currency(f.Value)
}
