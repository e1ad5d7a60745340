package config

import (
	"github.com/google/uuid"
	"github.com/iwvelando/proforma/pkg/assets"
	"github.com/iwvelando/proforma/pkg/baseline"
	"github.com/iwvelando/proforma/pkg/costs"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/funding"
	"github.com/iwvelando/proforma/pkg/preview"
	"github.com/iwvelando/proforma/pkg/revenue"
	"github.com/iwvelando/proforma/pkg/validation"
)

// Plan is the snapshot of every wizard step the engine reads.
type Plan struct {
	Name           string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Investment     Investment        `json:"investment" yaml:"investment" mapstructure:"investment"`
	Revenue        Revenue           `json:"revenue" yaml:"revenue" mapstructure:"revenue"`
	OperatingCosts OperatingCosts    `json:"operatingCosts" yaml:"operatingCosts" mapstructure:"operatingCosts"`
	Financing      funding.Sources   `json:"financing" yaml:"financing" mapstructure:"financing"`
	Documents      []baseline.Record `json:"documents,omitempty" yaml:"documents,omitempty" mapstructure:"documents"`
}

// Investment is the investment step.
type Investment struct {
	FixedInvestments []assets.Entry `json:"fixedInvestments" yaml:"fixedInvestments" mapstructure:"fixedInvestments"`
	InvestmentItems  []assets.Item  `json:"investmentItems" yaml:"investmentItems" mapstructure:"investmentItems"`
}

// Revenue is the revenue step. ExpectedRevenue and GrowthProjection are the
// legacy free-text fields read when the structured ones are empty.
type Revenue struct {
	RevenueStreams   []revenue.Stream `json:"revenueStreams" yaml:"revenueStreams" mapstructure:"revenueStreams"`
	GrowthPercent    format.Raw       `json:"growthPercent" yaml:"growthPercent" mapstructure:"growthPercent"`
	ExpectedRevenue  string           `json:"expectedRevenue,omitempty" yaml:"expectedRevenue,omitempty" mapstructure:"expectedRevenue"`
	GrowthProjection string           `json:"growthProjection,omitempty" yaml:"growthProjection,omitempty" mapstructure:"growthProjection"`

	preview.Collection `mapstructure:",squash" yaml:",inline"`
}

// OperatingCosts is the operating cost step.
type OperatingCosts struct {
	OperatingCostItems []costs.Item `json:"operatingCostItems" yaml:"operatingCostItems" mapstructure:"operatingCostItems"`
}

// DefaultPlan returns an empty plan with the standard rows.
func DefaultPlan() Plan {
	return Plan{
		Investment:     Investment{FixedInvestments: assets.DefaultEntries()},
		OperatingCosts: OperatingCosts{OperatingCostItems: costs.DefaultItems()},
	}
}

// AssignIDs gives every row lacking an id a random one and reports how many
// were assigned.
func (p *Plan) AssignIDs() int {
	assigned := 0
	for i := range p.Investment.InvestmentItems {
		if p.Investment.InvestmentItems[i].ID == "" {
			p.Investment.InvestmentItems[i].ID = uuid.NewString()
			assigned++
		}
	}
	for i := range p.Revenue.RevenueStreams {
		if p.Revenue.RevenueStreams[i].ID == "" {
			p.Revenue.RevenueStreams[i].ID = uuid.NewString()
			assigned++
		}
	}
	for i := range p.OperatingCosts.OperatingCostItems {
		if p.OperatingCosts.OperatingCostItems[i].ID == "" {
			p.OperatingCosts.OperatingCostItems[i].ID = uuid.NewString()
			assigned++
		}
	}
	return assigned
}

// Validate returns warnings about the plan's inputs.
func (p *Plan) Validate() []string {
	pv := validation.PlanValidator{
		FixedInvestments: p.Investment.FixedInvestments,
		InvestmentItems:  p.Investment.InvestmentItems,
		RevenueStreams:   p.Revenue.RevenueStreams,
		CostItems:        p.OperatingCosts.OperatingCostItems,
		Collection:       p.Revenue.Collection,
		Funding:          p.Financing,
		GrowthPercent:    p.Revenue.GrowthPercent,
	}
	return pv.ValidateAll()
}
