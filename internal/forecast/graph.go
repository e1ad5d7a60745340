package forecast

import (
	"maps"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/iwvelando/proforma/internal/config"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/growth"
	"github.com/iwvelando/proforma/pkg/loans"
	"github.com/iwvelando/proforma/pkg/preview"
	"github.com/iwvelando/proforma/pkg/revenue"
	"go.uber.org/zap"
)

// Node names a derived group in the dependency graph.
type Node string

const (
	NodeAmortization Node = "amortization"
	NodeRevenue      Node = "revenue"
	NodeLoan         Node = "loan"
	NodeBaseline     Node = "baseline"
	NodeCosts        Node = "costs"
	NodeFunding      Node = "funding"
	NodeGrowth       Node = "growth"
	NodePreview      Node = "preview"
)

// Nodes lists the graph in evaluation order; every node comes after the
// nodes it reads.
var Nodes = []Node{
	NodeAmortization, NodeRevenue, NodeLoan, NodeBaseline,
	NodeCosts, NodeFunding, NodeGrowth, NodePreview,
}

var equalOpts = []cmp.Option{cmpopts.EquateNaNs(), cmpopts.EquateEmpty()}

// memo holds a node's last input and output.
type memo[I, O any] struct {
	input  I
	output O
	valid  bool
}

// step reports whether a node's compute ran and whether its output changed.
type step struct {
	recomputed bool
	changed    bool
}

// update recomputes when the input differs from the last one and replaces the
// stored output only when the new one differs.
func (m *memo[I, O]) update(in I, compute func(I) O) step {
	if m.valid && cmp.Equal(m.input, in, equalOpts...) {
		return step{}
	}
	out := compute(in)
	m.input = in
	if m.valid && cmp.Equal(m.output, out, equalOpts...) {
		return step{recomputed: true}
	}
	m.output = out
	m.valid = true
	return step{recomputed: true, changed: true}
}

type revenueInput struct {
	Streams         []revenue.Stream
	ExpectedRevenue string
}

type loanInput struct {
	Principal  float64
	Rate       float64
	TermMonths int
	Scheduled  bool
}

type loanOutput struct {
	Years   []loans.YearSummary
	Charges []float64
}

type costInput struct {
	Items        []costs.Item
	RevenueBase  float64
	Amortization float64
	Charges      []float64
}

type fundingInput struct {
	FixedInvestmentTotal float64
	Items                []assets.Item
	Sources              funding.Sources
}

type growthInput struct {
	RevenueBase float64
	Percent     format.Raw
	Projection  string
}

type previewInput struct {
	Items        []costs.Item
	Breakdown    costs.Breakdown
	Funding      funding.Reconciliation
	Collection   preview.Collection
	Forecast     growth.Forecast
	Snapshot     *baseline.Snapshot
	Amortization float64
	Charges      []float64
}

type previewOutput struct {
	IncomeStatement preview.IncomeStatementPreview
	CashFlow        preview.CashFlowPreview
	Balance         *preview.BalanceSheetPreview
	Projection      []preview.Period
}

// Session keeps the last inputs and outputs of every node so that a changed
// plan recomputes only the nodes downstream of the change, and a node whose
// output did not change stops the propagation. A Session is owned by a single
// host and is not safe for concurrent use.
type Session struct {
	logger *zap.Logger

	register memo[[]assets.Entry, assets.Register]
	revenue  memo[revenueInput, revenue.Summary]
	loan     memo[loanInput, loanOutput]
	baseline memo[[]baseline.Record, *baseline.Snapshot]
	costs    memo[costInput, costs.Breakdown]
	funding  memo[fundingInput, funding.Reconciliation]
	growth   memo[growthInput, growth.Forecast]
	preview  memo[previewInput, previewOutput]
}

// Update is the outcome of a Recompute.
type Update struct {
	Result Result
	// Recomputed lists the nodes whose inputs changed.
	Recomputed []Node
	// Changed lists the nodes whose outputs changed.
	Changed []Node
}

// NewSession creates an empty session.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// Recompute evaluates the graph for plan. Inputs are copied, so the host may
// keep editing its plan after the call. Feeding back a plan whose cost
// items were replaced by Result.OperatingCostItems recomputes nothing, since
// the engine-written costs are not inputs.
func (s *Session) Recompute(plan config.Plan) Update {
	var u Update
	track := func(node Node, st step) {
		if st.recomputed {
			u.Recomputed = append(u.Recomputed, node)
		}
		if st.changed {
			u.Changed = append(u.Changed, node)
		}
	}

	loanIn := loanInputFor(plan.Financing)
	items := costs.Normalize(plan.OperatingCosts.OperatingCostItems)
	if loanIn.Scheduled {
		items = costs.WithFinancialCharges(items)
	}

	track(NodeAmortization, s.register.update(slices.Clone(plan.Investment.FixedInvestments), assets.Compute))

	track(NodeRevenue, s.revenue.update(
		revenueInput{Streams: slices.Clone(plan.Revenue.RevenueStreams), ExpectedRevenue: plan.Revenue.ExpectedRevenue},
		func(in revenueInput) revenue.Summary { return revenue.Aggregate(in.Streams, in.ExpectedRevenue) },
	))

	track(NodeLoan, s.loan.update(loanIn, s.computeLoan))

	track(NodeBaseline, s.baseline.update(cloneRecords(plan.Documents), baseline.Parse))

	track(NodeCosts, s.costs.update(
		costInput{
			Items:        stripComputed(items),
			RevenueBase:  s.revenue.output.Base,
			Amortization: s.register.output.TotalAnnualAmortization,
			Charges:      s.loan.output.Charges,
		},
		func(in costInput) costs.Breakdown {
			return costs.Compute(in.Items, in.RevenueBase, in.Amortization, overridesFor(in.Charges))
		},
	))

	track(NodeFunding, s.funding.update(
		fundingInput{
			FixedInvestmentTotal: s.register.output.FixedInvestmentTotal,
			Items:                slices.Clone(plan.Investment.InvestmentItems),
			Sources:              plan.Financing,
		},
		func(in fundingInput) funding.Reconciliation {
			return funding.Reconcile(in.FixedInvestmentTotal, in.Items, in.Sources)
		},
	))

	track(NodeGrowth, s.growth.update(
		growthInput{RevenueBase: s.revenue.output.Base, Percent: plan.Revenue.GrowthPercent, Projection: plan.Revenue.GrowthProjection},
		func(in growthInput) growth.Forecast {
			pct, source := growth.ResolvePercent(in.Percent, in.Projection)
			f := growth.Project(in.RevenueBase, pct)
			f.Source = source
			return f
		},
	))

	track(NodePreview, s.preview.update(
		previewInput{
			Items:        stripComputed(items),
			Breakdown:    s.costs.output,
			Funding:      s.funding.output,
			Collection:   plan.Revenue.Collection,
			Forecast:     s.growth.output,
			Snapshot:     s.baseline.output,
			Amortization: s.register.output.TotalAnnualAmortization,
			Charges:      s.loan.output.Charges,
		},
		computePreview,
	))

	if len(u.Recomputed) > 0 {
		s.logger.Debug("recomputed plan graph",
			zap.String("op", "forecast.Recompute"),
			zap.Any("recomputed", u.Recomputed),
			zap.Any("changed", u.Changed),
		)
	}

	u.Result = s.assemble(plan, items)
	return u
}

func (s *Session) computeLoan(in loanInput) loanOutput {
	if !in.Scheduled {
		return loanOutput{}
	}
	schedule := loans.NewScheduleGenerator(s.logger).Generate(loans.Loan{
		Name:       "bank loan",
		Principal:  in.Principal,
		AnnualRate: in.Rate,
		TermMonths: in.TermMonths,
	})
	out := loanOutput{
		Years:   make([]loans.YearSummary, 0, constants.ProjectionYears),
		Charges: make([]float64, 0, constants.ProjectionYears),
	}
	for year := 1; year <= constants.ProjectionYears; year++ {
		summary := loans.YearTotals(schedule, year)
		out.Years = append(out.Years, summary)
		out.Charges = append(out.Charges, summary.Interest)
	}
	return out
}

func computePreview(in previewInput) previewOutput {
	out := previewOutput{
		IncomeStatement: preview.IncomeStatement(in.Breakdown),
		CashFlow:        preview.CashFlow(in.Breakdown, in.Funding, in.Collection),
		Balance:         preview.BalanceYear0(in.Snapshot),
	}
	statements, _ := preview.ProjectYears(in.Items, in.Forecast.Years, in.Amortization, in.Charges)
	var year0 *baseline.Income
	if in.Snapshot != nil {
		year0 = in.Snapshot.Income
	}
	out.Projection = preview.Series(year0, statements)
	return out
}

func loanInputFor(s funding.Sources) loanInput {
	if !s.HasLoanSchedule() {
		return loanInput{}
	}
	return loanInput{
		Principal:  s.BankLoan.Amount(),
		Rate:       s.BankLoanRate.Amount(),
		TermMonths: s.BankLoanTermMonths,
		Scheduled:  true,
	}
}

func overridesFor(charges []float64) costs.Overrides {
	if len(charges) == 0 {
		return costs.Overrides{}
	}
	first := charges[0]
	return costs.Overrides{FinancialCharges: &first}
}

// cloneRecords copies the records and their top-level bags so that a host
// editing its plan in place cannot alter a stored input.
func cloneRecords(records []baseline.Record) []baseline.Record {
	if records == nil {
		return nil
	}
	out := make([]baseline.Record, len(records))
	for i, r := range records {
		out[i] = baseline.Record{FinancialData: maps.Clone(r.FinancialData)}
	}
	return out
}

// stripComputed drops the engine-written costs, which are outputs of the
// cost node and must not count as inputs to it.
func stripComputed(items []costs.Item) []costs.Item {
	out := make([]costs.Item, len(items))
	copy(out, items)
	for i := range out {
		out[i].ComputedTotalCost = 0
	}
	return out
}
