// Package growth projects Year-1 revenue over the forecast horizon with flat
// compounding.
package growth

import (
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/estimate"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/mathutil"
)

// Source identifies where the growth percentage came from.
type Source string

const (
	SourceField    Source = "field"
	SourceEstimate Source = "estimate"
	SourceNone     Source = "none"
)

// Forecast is the revenue projection, Years[0] being Year 1.
type Forecast struct {
	GrowthPercent float64   `json:"growthPercent"`
	Source        Source    `json:"source"`
	Years         []float64 `json:"years"`
}

// Project compounds base by percent for constants.ProjectionYears years.
// Percentages are not clamped; negative growth shrinks the series.
func Project(base, percent float64) Forecast {
	base = mathutil.Finite(base)
	percent = mathutil.Finite(percent)

	years := make([]float64, constants.ProjectionYears)
	factor := 1 + percent/constants.PercentageMultiplier
	for i := range years {
		if i == 0 {
			years[i] = base
			continue
		}
		years[i] = years[i-1] * factor
	}
	return Forecast{GrowthPercent: percent, Years: years}
}

// ResolvePercent reads the structured growth field first and falls back to
// the legacy free-text projection. A leading minus on the field is kept so
// that a shrinking business can be modelled.
func ResolvePercent(field format.Raw, legacyText string) (float64, Source) {
	if !field.IsBlank() {
		v := field.Amount()
		if strings.HasPrefix(strings.TrimSpace(string(field)), "-") {
			v = -v
		}
		return v, SourceField
	}
	if v, method := estimate.GrowthPercentDetail(legacyText); method != estimate.MethodNone {
		return v, SourceEstimate
	}
	return 0, SourceNone
}
