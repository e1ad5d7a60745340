package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/internal/forecast"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/testutil"
	"go.uber.org/zap"
)

// TestPerformance checks that a full computation stays interactive.
func TestPerformance(t *testing.T) {
	start := time.Now()
	conf, err := config.LoadConfiguration(planPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	for i := 0; i < 100; i++ {
		forecast.Compute(zap.NewNop(), conf.Plan)
	}
	computeTime := time.Since(start) / 100

	t.Logf("Performance metrics:")
	t.Logf("  Load plan: %v", loadTime)
	t.Logf("  Compute (average): %v", computeTime)

	if computeTime > 100*time.Millisecond {
		t.Errorf("average compute time %v exceeds 100ms", computeTime)
	}
}

func BenchmarkCompute(b *testing.B) {
	plan := testutil.ScenarioPlan()
	logger := zap.NewNop()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		forecast.Compute(logger, plan)
	}
}

func BenchmarkSessionSingleEdit(b *testing.B) {
	plan := testutil.ScenarioPlan()
	session := forecast.NewSession(nil)
	session.Recompute(plan)
	growth := []format.Raw{"10", "11"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		plan.Revenue.GrowthPercent = growth[i%2]
		session.Recompute(plan)
	}
}
