package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Riepilogo"
	costsSheet   = "Costi"
	incomeSheet  = "Conto economico"
)

// XlsxFormat writes the report as a workbook.
func XlsxFormat(w io.Writer, r forecast.Result) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Workbook builds a workbook with a summary sheet, the cost lines, and the
// income statement series. Amounts on the last two sheets are numeric cells;
// absent historical values are left empty.
func Workbook(r forecast.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	rowNum := 1
	for _, s := range sections(r) {
		if err := setRow(f, summarySheet, rowNum, []interface{}{s.title}); err != nil {
			return nil, err
		}
		if err := styleRow(f, summarySheet, rowNum, 1, bold); err != nil {
			return nil, err
		}
		rowNum++
		for _, rw := range s.rows {
			if err := setRow(f, summarySheet, rowNum, []interface{}{rw.label, rw.value}); err != nil {
				return nil, err
			}
			rowNum++
		}
		rowNum++
	}
	for _, warning := range r.Warnings {
		if err := setRow(f, summarySheet, rowNum, []interface{}{"Avviso", warning}); err != nil {
			return nil, err
		}
		rowNum++
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 24); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(costsSheet); err != nil {
		return nil, err
	}
	if err := setRow(f, costsSheet, 1, []interface{}{"ID", "Voce", "Percentuale", "Importo"}); err != nil {
		return nil, err
	}
	if err := styleRow(f, costsSheet, 1, 4, bold); err != nil {
		return nil, err
	}
	for i, line := range r.Costs.Lines {
		if err := setRow(f, costsSheet, i+2, []interface{}{line.ID, line.Name, line.Percentage, line.Cost}); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(incomeSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Voce"}
	for _, p := range r.Projection {
		header = append(header, p.Label)
	}
	if err := setRow(f, incomeSheet, 1, header); err != nil {
		return nil, err
	}
	if err := styleRow(f, incomeSheet, 1, len(header), bold); err != nil {
		return nil, err
	}
	lines := []struct {
		label string
		value func(i int) baseline.Field
	}{
		{"Ricavi", func(i int) baseline.Field { return r.Projection[i].Ricavi }},
		{"Costi operativi", func(i int) baseline.Field { return r.Projection[i].CostiOperativi }},
		{"Ammortamenti", func(i int) baseline.Field { return r.Projection[i].Ammortamenti }},
		{"Oneri finanziari", func(i int) baseline.Field { return r.Projection[i].OneriFinanziari }},
		{"Imposte", func(i int) baseline.Field { return r.Projection[i].Imposte }},
		{"Utile", func(i int) baseline.Field { return r.Projection[i].Utile }},
	}
	for n, line := range lines {
		values := []interface{}{line.label}
		for i := range r.Projection {
			if v := line.value(i); v.Present {
				values = append(values, v.Value)
			} else {
				values = append(values, nil)
			}
		}
		if err := setRow(f, incomeSheet, n+2, values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
