package forecast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/testutil"
	"go.uber.org/zap"
)

func TestSessionFirstRecomputeRunsEverything(t *testing.T) {
	s := NewSession(zap.NewNop())
	u := s.Recompute(testutil.ScenarioPlan())

	if diff := cmp.Diff(Nodes, u.Recomputed); diff != "" {
		t.Errorf("recomputed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Nodes, u.Changed); diff != "" {
		t.Errorf("changed (-want +got):\n%s", diff)
	}
}

func TestSessionConvergesOnReconciledPlan(t *testing.T) {
	s := NewSession(nil)
	plan := testutil.ScenarioPlan()
	first := s.Recompute(plan)

	plan.OperatingCosts.OperatingCostItems = first.Result.OperatingCostItems
	second := s.Recompute(plan)

	if len(second.Recomputed) != 0 || len(second.Changed) != 0 {
		t.Errorf("feeding back the reconciled plan recomputed %v, changed %v", second.Recomputed, second.Changed)
	}
	if diff := cmp.Diff(first.Result, second.Result); diff != "" {
		t.Errorf("result changed (-first +second):\n%s", diff)
	}

	third := s.Recompute(plan)
	if len(third.Recomputed) != 0 {
		t.Errorf("third pass recomputed %v", third.Recomputed)
	}
}

func TestSessionRecomputesDownstreamOnly(t *testing.T) {
	tests := []struct {
		name       string
		edit       func(p *config.Plan)
		recomputed []Node
		changed    []Node
	}{
		{
			name:       "Cost percentage",
			edit:       func(p *config.Plan) { p.OperatingCosts.OperatingCostItems[0].Percentage = "40" },
			recomputed: []Node{NodeCosts, NodePreview},
			changed:    []Node{NodeCosts, NodePreview},
		},
		{
			name:       "Investment description only",
			edit:       func(p *config.Plan) { p.Investment.InvestmentItems[0].Description = "Avviamento commerciale" },
			recomputed: []Node{NodeFunding},
		},
		{
			name:       "Equity",
			edit:       func(p *config.Plan) { p.Financing.Equity = "40.000" },
			recomputed: []Node{NodeFunding, NodePreview},
			changed:    []Node{NodeFunding, NodePreview},
		},
		{
			name:       "Growth",
			edit:       func(p *config.Plan) { p.Revenue.GrowthPercent = "5" },
			recomputed: []Node{NodeGrowth, NodePreview},
			changed:    []Node{NodeGrowth, NodePreview},
		},
		{
			name:       "Fixed investment",
			edit:       func(p *config.Plan) { p.Investment.FixedInvestments[0].Amount = "20.000" },
			recomputed: []Node{NodeAmortization, NodeCosts, NodeFunding, NodePreview},
			changed:    []Node{NodeAmortization, NodeCosts, NodeFunding, NodePreview},
		},
		{
			name: "Documents",
			edit: func(p *config.Plan) {
				p.Documents = []baseline.Record{{FinancialData: map[string]any{"revenue": 50000.0}}}
			},
			recomputed: []Node{NodeBaseline, NodePreview},
			changed:    []Node{NodeBaseline, NodePreview},
		},
		{
			name: "Bank loan schedule",
			edit: func(p *config.Plan) {
				p.Financing.BankLoanRate = "5"
				p.Financing.BankLoanTermMonths = 36
			},
			recomputed: []Node{NodeLoan, NodeCosts, NodeFunding, NodePreview},
			changed:    []Node{NodeLoan, NodeCosts, NodePreview},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(nil)
			plan := testutil.ScenarioPlan()
			s.Recompute(plan)

			tt.edit(&plan)
			u := s.Recompute(plan)

			if diff := cmp.Diff(tt.recomputed, u.Recomputed); diff != "" {
				t.Errorf("recomputed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.changed, u.Changed); diff != "" {
				t.Errorf("changed (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(Compute(nil, plan), u.Result); diff != "" {
				t.Errorf("incremental result differs from a full compute (-full +incremental):\n%s", diff)
			}
		})
	}
}

func TestSessionIgnoresInPlaceEdits(t *testing.T) {
	s := NewSession(nil)
	plan := testutil.ScenarioPlan()
	s.Recompute(plan)

	plan.Revenue.RevenueStreams[0].Amount = "200.000"
	u := s.Recompute(plan)

	if u.Result.Totals.RevenueBase != 200000 {
		t.Errorf("revenue = %v, an in-place edit must be picked up", u.Result.Totals.RevenueBase)
	}
}
