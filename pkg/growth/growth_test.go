package growth

import (
	"math"
	"testing"

	"github.com/iwvelando/proforma/pkg/format"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		base     float64
		percent  float64
		expected []float64
	}{
		{"Ten percent", 100000, 10, []float64{100000, 110000, 121000, 133100, 146410}},
		{"Zero growth", 80000, 0, []float64{80000, 80000, 80000, 80000, 80000}},
		{"Negative growth", 1000, -50, []float64{1000, 500, 250, 125, 62.5}},
		{"Zero base", 0, 25, []float64{0, 0, 0, 0, 0}},
		{"NaN base", math.NaN(), 10, []float64{0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Project(tt.base, tt.percent)
			if len(f.Years) != len(tt.expected) {
				t.Fatalf("got %d years, expected %d", len(f.Years), len(tt.expected))
			}
			for i, want := range tt.expected {
				if math.Abs(f.Years[i]-want) > 1e-6 {
					t.Errorf("year %d = %v, expected %v", i+1, f.Years[i], want)
				}
			}
		})
	}
}

func TestProjectFirstYearIsBase(t *testing.T) {
	for _, base := range []float64{0, 1, 12345.67, 1e9} {
		for _, pct := range []float64{-20, 0, 3.5, 150} {
			if f := Project(base, pct); f.Years[0] != base {
				t.Errorf("Project(%v, %v) year 1 = %v", base, pct, f.Years[0])
			}
		}
	}
}

func TestResolvePercent(t *testing.T) {
	tests := []struct {
		name     string
		field    format.Raw
		text     string
		expected float64
		source   Source
	}{
		{"Field wins", "8", "crescita del 20%", 8, SourceField},
		{"European decimal field", "7,5", "", 7.5, SourceField},
		{"Negative field", "-3", "", -3, SourceField},
		{"Legacy range", "", "Crescita del 10-15% annuo", 12.5, SourceEstimate},
		{"Legacy percent", "", "circa 20% all'anno", 20, SourceEstimate},
		{"Nothing", "", "", 0, SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := ResolvePercent(tt.field, tt.text)
			if got != tt.expected || source != tt.source {
				t.Errorf("ResolvePercent() = %v, %s; expected %v, %s", got, source, tt.expected, tt.source)
			}
		})
	}
}
