// Package output provides utilities for formatting and displaying computed plans.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/format"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	labelStyle = lipgloss.NewStyle().Width(34)

	valueStyle = lipgloss.NewStyle().Width(20).Align(lipgloss.Right)

	blockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

// row is a labelled, pre-formatted figure.
type row struct {
	label string
	value string
}

// section groups rows under a heading.
type section struct {
	title string
	rows  []row
}

// Write renders r in the named output format.
func Write(w io.Writer, outputFormat string, r forecast.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		PrettyFormat(w, r)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	case constants.OutputFormatMarkdown:
		MarkdownFormat(w, r)
		return nil
	case constants.OutputFormatXLSX:
		return XlsxFormat(w, r)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, r forecast.Result) {
	name := r.Name
	if name == "" {
		name = "Business plan"
	}
	fmt.Fprintln(w, titleStyle.Render("--- Pro-forma for "+name+" ---"))

	for _, s := range sections(r) {
		fmt.Fprintln(w, sectionStyle.Render(s.title))
		for _, rw := range s.rows {
			fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(rw.label), valueStyle.Render(rw.value)))
		}
		fmt.Fprintln(w)
	}

	if len(r.Projection) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Conto economico"))
		for _, line := range periodTable(r) {
			cells := make([]string, 0, len(line))
			for i, cell := range line {
				if i == 0 {
					cells = append(cells, labelStyle.Render(cell))
					continue
				}
				cells = append(cells, valueStyle.Render(cell))
			}
			fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
		fmt.Fprintln(w)
	}

	if r.Blocked {
		fmt.Fprintln(w, blockedStyle.Render("Fabbisogno non coperto: "+r.Display.Gap))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintln(w, warningStyle.Render("! "+warning))
	}
}

// CsvFormat outputs in comma-separated value format: one section, label and
// value per record, followed by the income statement series.
func CsvFormat(w io.Writer, r forecast.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "item", "value"}); err != nil {
		return err
	}
	for _, s := range sections(r) {
		for _, rw := range s.rows {
			if err := cw.Write([]string{s.title, rw.label, rw.value}); err != nil {
				return err
			}
		}
	}
	if len(r.Projection) > 0 {
		if err := cw.Write(nil); err != nil {
			return err
		}
		if err := cw.WriteAll(periodTable(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the full result as indented JSON.
func JSONFormat(w io.Writer, r forecast.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func sections(r forecast.Result) []section {
	d := r.Display

	investment := section{title: "Investimenti", rows: []row{
		{"Investimenti materiali", format.Currency(r.Totals.MaterialTotal)},
		{"Investimenti immateriali", format.Currency(r.Totals.ImmaterialTotal)},
		{"Totale investimenti fissi", d.FixedInvestmentTotal},
		{"Ammortamento annuo", d.TotalAnnualAmortization},
	}}

	funding := section{title: "Fonti di finanziamento", rows: []row{
		{"Fabbisogno totale", d.RequiredInvestment},
		{"Mezzi propri", format.Currency(r.FundingGap.Equity.Amount)},
		{"Finanziamento bancario", format.Currency(r.FundingGap.BankLoan.Amount)},
		{"Altri investitori", format.Currency(r.FundingGap.OtherInvestors.Amount)},
		{"Totale fonti", d.TotalSources},
		{"Differenza", d.Gap},
	}}

	costs := section{title: "Costi operativi (Anno 1)"}
	for _, line := range r.Costs.Lines {
		costs.rows = append(costs.rows, row{line.Name, format.Currency(line.Cost)})
	}
	costs.rows = append(costs.rows,
		row{"Ricavi", d.RevenueBase},
		row{"Totale costi", d.TotalOperatingCost},
		row{"Utile netto", d.NetProfit},
		row{"Margine netto", d.NetProfitMargin},
	)

	cash := section{title: "Flussi di cassa (Anno 1)", rows: []row{
		{"Flusso operativo", d.CashFlow.Operating},
		{"Incremento crediti", d.CashFlow.ARIncrease},
		{"Flusso da investimenti", d.CashFlow.Investing},
		{"Flusso da finanziamenti", d.CashFlow.Financing},
		{"Variazione di cassa", d.CashFlow.Delta},
		{"Incassi ripartiti", d.CollectionPercentSum},
	}}

	growth := section{title: "Previsione ricavi"}
	for i, v := range d.GrowthForecast {
		growth.rows = append(growth.rows, row{fmt.Sprintf("Anno %d", i+1), v})
	}

	out := []section{investment, funding, costs, cash, growth}
	if b := r.BalanceYear0; b != nil {
		out = append(out, section{title: "Stato patrimoniale (Anno 0)", rows: []row{
			{"Totale attività", fieldString(b.TotaleAttivita.Present, b.TotaleAttivita.Value)},
			{"Totale passività", fieldString(b.TotalePassivita.Present, b.TotalePassivita.Value)},
			{"Patrimonio netto", fieldString(b.PatrimonioNetto.Present, b.PatrimonioNetto.Value)},
		}})
	}
	if len(r.LoanSchedule) > 0 {
		loan := section{title: "Piano di ammortamento del mutuo"}
		for _, y := range r.LoanSchedule {
			loan.rows = append(loan.rows, row{
				fmt.Sprintf("Anno %d interessi / debito residuo", y.Year),
				format.Currency(y.Interest) + " / " + format.Currency(y.ClosingBalance),
			})
		}
		out = append(out, loan)
	}
	return out
}

// periodTable lays the income statement series out with a header row of
// period labels and one row per statement line.
func periodTable(r forecast.Result) [][]string {
	header := []string{"Voce"}
	lines := [][]string{{"Ricavi"}, {"Costi operativi"}, {"Ammortamenti"}, {"Oneri finanziari"}, {"Imposte"}, {"Utile"}}
	for _, p := range r.Display.Projection {
		header = append(header, p.Label)
		values := []string{p.Lines.Ricavi, p.Lines.CostiOperativi, p.Lines.Ammortamenti, p.Lines.OneriFinanziari, p.Lines.Imposte, p.Lines.Utile}
		for i, v := range values {
			if v == "" {
				v = "-"
			}
			lines[i] = append(lines[i], v)
		}
	}
	return append([][]string{header}, lines...)
}

func fieldString(present bool, v float64) string {
	if !present {
		return "-"
	}
	return format.Currency(v)
}

